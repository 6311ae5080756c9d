package denorm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"busstation-backend/internal/cache"
	"busstation-backend/internal/model"
	"busstation-backend/internal/store"
)

// SyncResult counts dispatch records touched by one sync call. Records that
// already held the new values are counted in neither field.
type SyncResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// OperatorSyncResult reports an operator cascade through its vehicles.
type OperatorSyncResult struct {
	VehiclesUpdated int `json:"vehiclesUpdated"`
	DispatchUpdated int `json:"dispatchUpdated"`
	Failed          int `json:"failed"`
}

// DestinationSyncResult reports a location cascade through its routes.
type DestinationSyncResult struct {
	RoutesUpdated   int `json:"routesUpdated"`
	DispatchUpdated int `json:"dispatchUpdated"`
	Failed          int `json:"failed"`
}

// VehicleChanges lists edited vehicle fields. Nil means unchanged.
// An empty OperatorID detaches the vehicle from its operator.
type VehicleChanges struct {
	PlateNumber  *string
	OperatorID   *string
	OperatorName *string
	OperatorCode *string
}

// RouteChanges lists edited route fields. Nil means unchanged.
// An empty DestinationID clears the destination.
type RouteChanges struct {
	Name            *string
	Type            *string
	DestinationID   *string
	DestinationName *string
	DestinationCode *string
}

// OperatorChanges lists edited operator fields. Nil means unchanged.
type OperatorChanges struct {
	Name *string
	Code *string
}

// LocationChanges lists edited location fields. Nil means unchanged.
type LocationChanges struct {
	Name *string
	Code *string
}

// Syncer pushes source entity edits out to the dispatch records caching them.
// Every call is idempotent and best effort: failures on single records are
// counted and logged, never returned.
type Syncer struct {
	src         Source
	dispatch    DispatchWriter
	fetcher     *Fetcher
	cache       cache.Cache
	concurrency int
	log         logrus.FieldLogger
}

// NewSyncer creates a syncer fanning out at most concurrency patches at a time.
func NewSyncer(src Source, dispatch DispatchWriter, fetcher *Fetcher, c cache.Cache, concurrency int, log logrus.FieldLogger) *Syncer {
	if c == nil {
		c = cache.Nop{}
	}
	return &Syncer{
		src:         src,
		dispatch:    dispatch,
		fetcher:     fetcher,
		cache:       c,
		concurrency: concurrency,
		log:         log.WithField("module", "denorm"),
	}
}

// SyncVehicleChanges refreshes plate and operator fields on every dispatch
// record of the vehicle. vehicleID is the id as stored on dispatch records,
// prefix included.
func (s *Syncer) SyncVehicleChanges(ctx context.Context, vehicleID string, changes VehicleChanges) (SyncResult, error) {
	s.cache.InvalidateTag(cache.VehicleTag(vehicleID))

	if changes.OperatorID != nil {
		if *changes.OperatorID == "" {
			empty := ""
			changes.OperatorName, changes.OperatorCode = &empty, &empty
		} else if changes.OperatorName == nil || changes.OperatorCode == nil {
			name, code, err := s.fetcher.operator(ctx, *changes.OperatorID)
			if err != nil {
				return SyncResult{}, err
			}
			if changes.OperatorName == nil {
				changes.OperatorName = &name
			}
			if changes.OperatorCode == nil {
				changes.OperatorCode = &code
			}
		}
	}

	result, err := s.patchAll(ctx, store.DispatchFilter{VehicleID: vehicleID}, func(rec *model.DispatchRecord) map[string]any {
		p := patch{}
		p.str("vehicle_plate_number", rec.VehiclePlateNumber, changes.PlateNumber)
		p.ref("vehicle_operator_id", rec.VehicleOperatorID, changes.OperatorID)
		p.str("vehicle_operator_name", rec.VehicleOperatorName, changes.OperatorName)
		p.str("vehicle_operator_code", rec.VehicleOperatorCode, changes.OperatorCode)
		return p
	})
	s.logSummary("vehicle", vehicleID, result, err)
	return result, err
}

// ForgetVehicle drops cached lookups of a vehicle whose edit touches no
// dispatch record field, such as its primary driver.
func (s *Syncer) ForgetVehicle(vehicleID string) {
	s.cache.InvalidateTag(cache.VehicleTag(vehicleID))
}

// SyncDriverChanges refreshes the driver name on every dispatch record of the driver.
func (s *Syncer) SyncDriverChanges(ctx context.Context, driverID string, fullName string) (SyncResult, error) {
	s.cache.InvalidateTag(cache.DriverTag(driverID))

	result, err := s.patchAll(ctx, store.DispatchFilter{DriverID: driverID}, func(rec *model.DispatchRecord) map[string]any {
		p := patch{}
		p.str("driver_full_name", rec.DriverFullName, &fullName)
		return p
	})
	s.logSummary("driver", driverID, result, err)
	return result, err
}

// SyncRouteChanges refreshes route and destination fields on every dispatch
// record of the route.
func (s *Syncer) SyncRouteChanges(ctx context.Context, routeID string, changes RouteChanges) (SyncResult, error) {
	s.cache.InvalidateTag(cache.RouteTag(routeID))

	if changes.DestinationID != nil {
		if *changes.DestinationID == "" {
			empty := ""
			changes.DestinationName, changes.DestinationCode = &empty, &empty
		} else if changes.DestinationName == nil || changes.DestinationCode == nil {
			name, code, err := s.fetcher.location(ctx, *changes.DestinationID)
			if err != nil {
				return SyncResult{}, err
			}
			if changes.DestinationName == nil {
				changes.DestinationName = &name
			}
			if changes.DestinationCode == nil {
				changes.DestinationCode = &code
			}
		}
	}

	result, err := s.patchAll(ctx, store.DispatchFilter{RouteID: routeID}, func(rec *model.DispatchRecord) map[string]any {
		p := patch{}
		p.str("route_name", rec.RouteName, changes.Name)
		p.str("route_type", rec.RouteType, changes.Type)
		p.ref("route_destination_id", rec.RouteDestinationID, changes.DestinationID)
		p.str("route_destination_name", rec.RouteDestinationName, changes.DestinationName)
		p.str("route_destination_code", rec.RouteDestinationCode, changes.DestinationCode)
		return p
	})
	s.logSummary("route", routeID, result, err)
	return result, err
}

// SyncOperatorChanges cascades an operator edit through each of its vehicles.
func (s *Syncer) SyncOperatorChanges(ctx context.Context, operatorID string, changes OperatorChanges) (OperatorSyncResult, error) {
	s.cache.InvalidateTag(cache.OperatorTag(operatorID))

	vehicles, err := s.src.ListVehiclesByOperator(ctx, operatorID)
	if err != nil {
		s.logSummary("operator", operatorID, SyncResult{}, err)
		return OperatorSyncResult{}, err
	}
	if len(vehicles) == 0 {
		return OperatorSyncResult{}, nil
	}

	outcomes := Apply(ctx, s.concurrency, vehicles, func(ctx context.Context, v model.Vehicle) (SyncResult, error) {
		return s.SyncVehicleChanges(ctx, v.ID, VehicleChanges{
			OperatorName: changes.Name,
			OperatorCode: changes.Code,
		})
	})

	var result OperatorSyncResult
	for _, o := range outcomes {
		result.DispatchUpdated += o.Value.Updated
		result.Failed += o.Value.Failed
	}
	var failedVehicles int
	result.VehiclesUpdated, failedVehicles = CountOutcomes(outcomes, nil)
	result.Failed += failedVehicles

	s.log.WithFields(logrus.Fields{
		"entity":          "operator",
		"id":              operatorID,
		"vehiclesUpdated": result.VehiclesUpdated,
		"dispatchUpdated": result.DispatchUpdated,
		"failed":          result.Failed,
	}).Info("denormalized fields synced")
	return result, nil
}

// SyncDestinationChanges cascades a location edit through each route ending there.
func (s *Syncer) SyncDestinationChanges(ctx context.Context, locationID string, changes LocationChanges) (DestinationSyncResult, error) {
	s.cache.InvalidateTag(cache.LocationTag(locationID))

	routes, err := s.src.ListRoutesByDestination(ctx, locationID)
	if err != nil {
		s.logSummary("location", locationID, SyncResult{}, err)
		return DestinationSyncResult{}, err
	}
	if len(routes) == 0 {
		return DestinationSyncResult{}, nil
	}

	outcomes := Apply(ctx, s.concurrency, routes, func(ctx context.Context, r model.Route) (SyncResult, error) {
		return s.SyncRouteChanges(ctx, r.ID, RouteChanges{
			DestinationName: changes.Name,
			DestinationCode: changes.Code,
		})
	})

	var result DestinationSyncResult
	for _, o := range outcomes {
		result.DispatchUpdated += o.Value.Updated
		result.Failed += o.Value.Failed
	}
	var failedRoutes int
	result.RoutesUpdated, failedRoutes = CountOutcomes(outcomes, nil)
	result.Failed += failedRoutes

	s.log.WithFields(logrus.Fields{
		"entity":          "location",
		"id":              locationID,
		"routesUpdated":   result.RoutesUpdated,
		"dispatchUpdated": result.DispatchUpdated,
		"failed":          result.Failed,
	}).Info("denormalized fields synced")
	return result, nil
}

// patchAll patches every record matching filter with the columns build
// reports as changed. Records with nothing to change are skipped.
func (s *Syncer) patchAll(ctx context.Context, filter store.DispatchFilter, build func(*model.DispatchRecord) map[string]any) (SyncResult, error) {
	records, err := s.dispatch.ListDispatch(ctx, filter)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list dependent dispatch records: %w", err)
	}
	if len(records) == 0 {
		return SyncResult{}, nil
	}

	outcomes := Apply(ctx, s.concurrency, records, func(ctx context.Context, rec model.DispatchRecord) (bool, error) {
		fields := build(&rec)
		if len(fields) == 0 {
			return false, nil
		}
		if err := s.dispatch.PatchDispatch(ctx, rec.ID, fields); err != nil {
			s.log.WithError(err).WithField("dispatchId", rec.ID).Warn("failed to patch denormalized fields")
			return false, err
		}
		return true, nil
	})

	var result SyncResult
	result.Updated, result.Failed = CountOutcomes(outcomes, func(changed bool) bool { return changed })
	return result, nil
}

func (s *Syncer) logSummary(entity, id string, result SyncResult, err error) {
	entry := s.log.WithFields(logrus.Fields{
		"entity":  entity,
		"id":      id,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
	if err != nil {
		entry.WithError(err).Error("denormalized field sync aborted")
		return
	}
	if result.Failed > 0 {
		entry.Warn("denormalized fields partially synced")
		return
	}
	entry.Debug("denormalized fields synced")
}

// patch collects the columns whose cached value differs from the wanted one.
type patch map[string]any

func (p patch) str(col, current string, want *string) {
	if want != nil && *want != current {
		p[col] = *want
	}
}

// ref handles nullable id columns; an empty wanted id means NULL.
func (p patch) ref(col string, current *string, want *string) {
	if want == nil {
		return
	}
	if *want == "" {
		if current != nil {
			p[col] = nil
		}
		return
	}
	if current == nil || *current != *want {
		p[col] = *want
	}
}
