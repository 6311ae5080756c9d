package model

import "time"

// Vehicle is a registered coach operated by a transport company.
type Vehicle struct {
	ID          string  `gorm:"primaryKey;size:64" json:"id"`
	PlateNumber string  `gorm:"index;size:32;not null" json:"plateNumber"`
	OperatorID  *string `gorm:"index;size:64" json:"operatorId"`
	// DriverID is the driver usually assigned to this vehicle, if any.
	DriverID  *string   `gorm:"size:64" json:"driverId"`
	SeatCount int       `json:"seatCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	Operator *Operator `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
}

// LegacyVehicle comes from the historical dataset imported from the old
// station system. Only a free-text owner name is known.
type LegacyVehicle struct {
	Key         string    `gorm:"primaryKey;column:legacy_key;size:64" json:"key"`
	PlateNumber string    `gorm:"size:32;not null" json:"plateNumber"`
	OwnerName   string    `gorm:"size:256" json:"ownerName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BadgeVehicle is a vehicle known only through its route badge (permit).
type BadgeVehicle struct {
	Key         string     `gorm:"primaryKey;column:badge_key;size:64" json:"key"`
	PlateNumber string     `gorm:"size:32;not null" json:"plateNumber"`
	BadgeNumber string     `gorm:"size:64" json:"badgeNumber"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
