// Package denorm keeps the display fields cached on dispatch records
// (plate number, operator, driver and route names) in step with the
// entities they were copied from.
package denorm

import (
	"context"

	"busstation-backend/internal/model"
	"busstation-backend/internal/store"
)

// Source reads the entities whose fields are cached on dispatch records.
type Source interface {
	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)
	GetLegacyVehicle(ctx context.Context, key string) (*model.LegacyVehicle, error)
	GetBadgeVehicle(ctx context.Context, key string) (*model.BadgeVehicle, error)
	GetDriver(ctx context.Context, id string) (*model.Driver, error)
	GetRoute(ctx context.Context, id string) (*model.Route, error)
	GetOperator(ctx context.Context, id string) (*model.Operator, error)
	GetLocation(ctx context.Context, id string) (*model.Location, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListVehiclesByOperator(ctx context.Context, operatorID string) ([]model.Vehicle, error)
	ListRoutesByDestination(ctx context.Context, locationID string) ([]model.Route, error)
}

// DispatchWriter finds and patches the dispatch records holding cached fields.
type DispatchWriter interface {
	ListDispatch(ctx context.Context, filter store.DispatchFilter) ([]model.DispatchRecord, error)
	PatchDispatch(ctx context.Context, id string, fields map[string]any) error
}

// VehicleInfo is the uniform view of a vehicle regardless of its dataset.
type VehicleInfo struct {
	Ref          VehicleRef
	PlateNumber  string
	OperatorID   *string
	OperatorName string
	OperatorCode string
	// DriverID is the vehicle's usual driver; only registered vehicles have one.
	DriverID *string
}

// Fields returns the dispatch record columns this info fills.
func (v VehicleInfo) Fields() map[string]any {
	return map[string]any{
		"vehicle_plate_number":  v.PlateNumber,
		"vehicle_operator_id":   v.OperatorID,
		"vehicle_operator_name": v.OperatorName,
		"vehicle_operator_code": v.OperatorCode,
	}
}

// RouteInfo is a route with its destination already resolved.
type RouteInfo struct {
	ID              string
	Name            string
	Type            string
	DestinationID   *string
	DestinationName string
	DestinationCode string
}

// Fields returns the dispatch record columns this info fills.
func (r RouteInfo) Fields() map[string]any {
	return map[string]any{
		"route_name":             r.Name,
		"route_type":             r.Type,
		"route_destination_id":   r.DestinationID,
		"route_destination_name": r.DestinationName,
		"route_destination_code": r.DestinationCode,
	}
}

// Snapshot is everything copied onto a dispatch record when it is created.
type Snapshot struct {
	Vehicle        VehicleInfo
	DriverID       *string
	DriverFullName string
	Route          RouteInfo
	EntryByName    string
}

// ApplyTo copies the snapshot into rec.
func (s *Snapshot) ApplyTo(rec *model.DispatchRecord) {
	rec.VehiclePlateNumber = s.Vehicle.PlateNumber
	rec.VehicleOperatorID = s.Vehicle.OperatorID
	rec.VehicleOperatorName = s.Vehicle.OperatorName
	rec.VehicleOperatorCode = s.Vehicle.OperatorCode
	rec.DriverID = s.DriverID
	rec.DriverFullName = s.DriverFullName
	rec.RouteName = s.Route.Name
	rec.RouteType = s.Route.Type
	rec.RouteDestinationID = s.Route.DestinationID
	rec.RouteDestinationName = s.Route.DestinationName
	rec.RouteDestinationCode = s.Route.DestinationCode
	rec.EntryByName = s.EntryByName
}
