package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"busstation-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
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

	UpdateVehicle(ctx context.Context, id string, fields map[string]any) (*model.Vehicle, error)
	UpdateDriver(ctx context.Context, id string, fields map[string]any) (*model.Driver, error)
	UpdateRoute(ctx context.Context, id string, fields map[string]any) (*model.Route, error)
	UpdateOperator(ctx context.Context, id string, fields map[string]any) (*model.Operator, error)
	UpdateLocation(ctx context.Context, id string, fields map[string]any) (*model.Location, error)
	UpsertBadgeVehicles(ctx context.Context, badges []model.BadgeVehicle) ([]model.BadgeVehicle, error)

	CreateDispatch(ctx context.Context, rec *model.DispatchRecord) error
	GetDispatch(ctx context.Context, id string) (*model.DispatchRecord, error)
	ListDispatch(ctx context.Context, filter DispatchFilter) ([]model.DispatchRecord, error)
	TransitionDispatch(ctx context.Context, id string, version int64, fields map[string]any) error
	PatchDispatch(ctx context.Context, id string, fields map[string]any) error

	PutSubscription(ctx context.Context, sub model.PushSubscription, operatorIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsForOperator(ctx context.Context, operatorID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// first loads a single row by primary key, mapping a miss to ErrNotFound.
func first[T any](ctx context.Context, db *gorm.DB, key string, value string) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where(key+" = ?", value).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
