package model

// All lists every persistent model, in migration order.
func All() []any {
	return []any{
		&Operator{},
		&Vehicle{},
		&LegacyVehicle{},
		&BadgeVehicle{},
		&Driver{},
		&Location{},
		&Route{},
		&User{},
		&DispatchRecord{},
		&PushSubscription{},
	}
}
