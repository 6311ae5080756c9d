package denorm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"busstation-backend/internal/cache"
	"busstation-backend/internal/store"
)

// FetchInput names the entities a new dispatch record points at.
// Only VehicleID is required.
type FetchInput struct {
	VehicleID string
	DriverID  string
	RouteID   string
	UserID    string
}

// Fetcher assembles denormalized snapshots from the current source entities.
type Fetcher struct {
	src   Source
	cache cache.Cache
	log   logrus.FieldLogger
}

// NewFetcher creates a fetcher. A nil cache disables caching.
func NewFetcher(src Source, c cache.Cache, log logrus.FieldLogger) *Fetcher {
	if c == nil {
		c = cache.Nop{}
	}
	return &Fetcher{src: src, cache: c, log: log.WithField("module", "denorm")}
}

// Fetch resolves the vehicle, then the driver, route and user concurrently.
// Only a missing vehicle or a store failure is an error; every other miss
// leaves the matching fields empty.
func (f *Fetcher) Fetch(ctx context.Context, in FetchInput) (*Snapshot, error) {
	ref, err := ParseVehicleRef(in.VehicleID)
	if err != nil {
		return nil, err
	}

	vehicle, err := f.ResolveVehicle(ctx, ref)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Vehicle: *vehicle}

	driverID := in.DriverID
	if driverID == "" && vehicle.DriverID != nil {
		driverID = *vehicle.DriverID
	}
	if driverID == "" {
		f.log.WithFields(logrus.Fields{
			"vehicleId": ref.String(),
			"source":    ref.Kind.String(),
		}).Warn("no driver linked to vehicle, continuing without driver")
	}

	g, gctx := errgroup.WithContext(ctx)
	if driverID != "" {
		g.Go(func() error {
			name, found, err := f.driverName(gctx, driverID)
			if err != nil {
				return err
			}
			if found {
				snap.DriverID = &driverID
				snap.DriverFullName = name
			} else {
				f.log.WithField("driverId", driverID).Warn("driver not found, continuing without driver")
			}
			return nil
		})
	}
	if in.RouteID != "" {
		g.Go(func() error {
			route, err := f.ResolveRoute(gctx, in.RouteID)
			if store.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			snap.Route = *route
			return nil
		})
	}
	if in.UserID != "" {
		g.Go(func() error {
			user, err := f.src.GetUser(gctx, in.UserID)
			if store.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("lookup user %s: %w", in.UserID, err)
			}
			snap.EntryByName = user.FullName
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// ResolveVehicle looks the vehicle up in the dataset its ref points at.
// It returns store.ErrNotFound when the vehicle does not exist.
func (f *Fetcher) ResolveVehicle(ctx context.Context, ref VehicleRef) (*VehicleInfo, error) {
	key := "vehicle-ref:" + ref.String()
	if cached, ok := f.cache.Get(key); ok {
		info := cached.(VehicleInfo)
		return &info, nil
	}

	info := VehicleInfo{Ref: ref}
	tags := []string{cache.VehicleTag(ref.String())}

	switch ref.Kind {
	case RefLegacy:
		v, err := f.src.GetLegacyVehicle(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("lookup legacy vehicle %s: %w", ref.Key, err)
		}
		info.PlateNumber = v.PlateNumber
		info.OperatorName = v.OwnerName
	case RefBadge:
		v, err := f.src.GetBadgeVehicle(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("lookup badge vehicle %s: %w", ref.Key, err)
		}
		info.PlateNumber = v.PlateNumber
	default:
		v, err := f.src.GetVehicle(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("lookup vehicle %s: %w", ref.Key, err)
		}
		info.PlateNumber = v.PlateNumber
		info.DriverID = v.DriverID
		if v.OperatorID != nil {
			info.OperatorID = v.OperatorID
			tags = append(tags, cache.OperatorTag(*v.OperatorID))
			if v.Operator != nil {
				info.OperatorName = v.Operator.Name
				info.OperatorCode = v.Operator.Code
			}
		}
	}

	f.cache.Set(key, info, tags...)
	return &info, nil
}

// ResolveRoute loads a route and, when it has one, its destination.
// A missing destination leaves the destination fields empty.
func (f *Fetcher) ResolveRoute(ctx context.Context, routeID string) (*RouteInfo, error) {
	key := "route:" + routeID
	if cached, ok := f.cache.Get(key); ok {
		info := cached.(RouteInfo)
		return &info, nil
	}

	route, err := f.src.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("lookup route %s: %w", routeID, err)
	}

	info := RouteInfo{ID: route.ID, Name: route.Name, Type: route.Type}
	tags := []string{cache.RouteTag(routeID)}

	if route.DestinationID != nil && *route.DestinationID != "" {
		destID := *route.DestinationID
		info.DestinationID = &destID
		tags = append(tags, cache.LocationTag(destID))

		loc, err := f.src.GetLocation(ctx, destID)
		switch {
		case store.IsNotFound(err):
			f.log.WithFields(logrus.Fields{"routeId": routeID, "locationId": destID}).Warn("route destination not found")
		case err != nil:
			return nil, fmt.Errorf("lookup location %s: %w", destID, err)
		default:
			info.DestinationName = loc.Name
			info.DestinationCode = loc.Code
		}
	}

	f.cache.Set(key, info, tags...)
	return &info, nil
}

func (f *Fetcher) driverName(ctx context.Context, driverID string) (string, bool, error) {
	key := "driver:" + driverID
	if cached, ok := f.cache.Get(key); ok {
		return cached.(string), true, nil
	}
	d, err := f.src.GetDriver(ctx, driverID)
	if store.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup driver %s: %w", driverID, err)
	}
	f.cache.Set(key, d.FullName, cache.DriverTag(driverID))
	return d.FullName, true, nil
}

// operator returns the name and code of an operator, empty when it is missing.
func (f *Fetcher) operator(ctx context.Context, operatorID string) (name, code string, err error) {
	op, err := f.src.GetOperator(ctx, operatorID)
	if store.IsNotFound(err) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("lookup operator %s: %w", operatorID, err)
	}
	return op.Name, op.Code, nil
}

// location returns the name and code of a location, empty when it is missing.
func (f *Fetcher) location(ctx context.Context, locationID string) (name, code string, err error) {
	loc, err := f.src.GetLocation(ctx, locationID)
	if store.IsNotFound(err) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("lookup location %s: %w", locationID, err)
	}
	return loc.Name, loc.Code, nil
}
