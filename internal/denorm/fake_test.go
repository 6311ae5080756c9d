package denorm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"busstation-backend/internal/model"
	"busstation-backend/internal/store"
)

var errStoreDown = errors.New("store unreachable")

// fakeStore is an in-memory Source and DispatchWriter.
type fakeStore struct {
	mu        sync.Mutex
	vehicles  map[string]model.Vehicle
	legacy    map[string]model.LegacyVehicle
	badges    map[string]model.BadgeVehicle
	drivers   map[string]model.Driver
	routes    map[string]model.Route
	operators map[string]model.Operator
	locations map[string]model.Location
	users     map[string]model.User
	records   map[string]*model.DispatchRecord

	failPatch  map[string]bool
	failDriver bool
	failList   bool
	failListOf map[string]bool // vehicle or route id whose records cannot be listed
	calls      map[string]int
	patches    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles:   map[string]model.Vehicle{},
		legacy:     map[string]model.LegacyVehicle{},
		badges:     map[string]model.BadgeVehicle{},
		drivers:    map[string]model.Driver{},
		routes:     map[string]model.Route{},
		operators:  map[string]model.Operator{},
		locations:  map[string]model.Location{},
		users:      map[string]model.User{},
		records:    map[string]*model.DispatchRecord{},
		failPatch:  map[string]bool{},
		failListOf: map[string]bool{},
		calls:      map[string]int{},
	}
}

func (f *fakeStore) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func lookup[T any](f *fakeStore, m map[string]T, key string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := m[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func (f *fakeStore) GetVehicle(_ context.Context, id string) (*model.Vehicle, error) {
	f.hit("GetVehicle")
	v, err := lookup(f, f.vehicles, id)
	if err != nil {
		return nil, err
	}
	if v.OperatorID != nil {
		if op, err := lookup(f, f.operators, *v.OperatorID); err == nil {
			v.Operator = op
		}
	}
	return v, nil
}

func (f *fakeStore) GetLegacyVehicle(_ context.Context, key string) (*model.LegacyVehicle, error) {
	return lookup(f, f.legacy, key)
}

func (f *fakeStore) GetBadgeVehicle(_ context.Context, key string) (*model.BadgeVehicle, error) {
	return lookup(f, f.badges, key)
}

func (f *fakeStore) GetDriver(_ context.Context, id string) (*model.Driver, error) {
	f.hit("GetDriver")
	if f.failDriver {
		return nil, errStoreDown
	}
	return lookup(f, f.drivers, id)
}

func (f *fakeStore) GetRoute(_ context.Context, id string) (*model.Route, error) {
	f.hit("GetRoute")
	return lookup(f, f.routes, id)
}

func (f *fakeStore) GetOperator(_ context.Context, id string) (*model.Operator, error) {
	f.hit("GetOperator")
	return lookup(f, f.operators, id)
}

func (f *fakeStore) GetLocation(_ context.Context, id string) (*model.Location, error) {
	f.hit("GetLocation")
	return lookup(f, f.locations, id)
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*model.User, error) {
	return lookup(f, f.users, id)
}

func (f *fakeStore) ListVehiclesByOperator(_ context.Context, operatorID string) ([]model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Vehicle
	for _, v := range f.vehicles {
		if v.OperatorID != nil && *v.OperatorID == operatorID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRoutesByDestination(_ context.Context, locationID string) ([]model.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Route
	for _, r := range f.routes {
		if r.DestinationID != nil && *r.DestinationID == locationID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDispatch(_ context.Context, filter store.DispatchFilter) ([]model.DispatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList || f.failListOf[filter.VehicleID] || f.failListOf[filter.RouteID] {
		return nil, errStoreDown
	}
	var out []model.DispatchRecord
	for _, r := range f.records {
		if filter.VehicleID != "" && r.VehicleID != filter.VehicleID {
			continue
		}
		if filter.DriverID != "" && (r.DriverID == nil || *r.DriverID != filter.DriverID) {
			continue
		}
		if filter.RouteID != "" && (r.RouteID == nil || *r.RouteID != filter.RouteID) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) PatchDispatch(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPatch[id] {
		return errStoreDown
	}
	rec, ok := f.records[id]
	if !ok {
		return store.ErrNotFound
	}
	f.patches++
	for col, v := range fields {
		switch col {
		case "vehicle_plate_number":
			rec.VehiclePlateNumber = v.(string)
		case "vehicle_operator_id":
			rec.VehicleOperatorID = nullable(v)
		case "vehicle_operator_name":
			rec.VehicleOperatorName = v.(string)
		case "vehicle_operator_code":
			rec.VehicleOperatorCode = v.(string)
		case "driver_full_name":
			rec.DriverFullName = v.(string)
		case "route_name":
			rec.RouteName = v.(string)
		case "route_type":
			rec.RouteType = v.(string)
		case "route_destination_id":
			rec.RouteDestinationID = nullable(v)
		case "route_destination_name":
			rec.RouteDestinationName = v.(string)
		case "route_destination_code":
			rec.RouteDestinationCode = v.(string)
		default:
			return fmt.Errorf("unexpected column %q", col)
		}
	}
	return nil
}

func (f *fakeStore) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patches
}

func (f *fakeStore) record(id string) model.DispatchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.records[id]
}

func (f *fakeStore) addRecord(rec model.DispatchRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = &rec
}

func nullable(v any) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func ptr(s string) *string { return &s }
