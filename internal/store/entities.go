package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"busstation-backend/internal/model"
)

// GetVehicle loads a registered vehicle together with its operator.
func (s *gormStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.db.WithContext(ctx).Preload("Operator").Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *gormStore) GetLegacyVehicle(ctx context.Context, key string) (*model.LegacyVehicle, error) {
	return first[model.LegacyVehicle](ctx, s.db, "legacy_key", key)
}

func (s *gormStore) GetBadgeVehicle(ctx context.Context, key string) (*model.BadgeVehicle, error) {
	return first[model.BadgeVehicle](ctx, s.db, "badge_key", key)
}

func (s *gormStore) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	return first[model.Driver](ctx, s.db, "id", id)
}

func (s *gormStore) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	return first[model.Route](ctx, s.db, "id", id)
}

func (s *gormStore) GetOperator(ctx context.Context, id string) (*model.Operator, error) {
	return first[model.Operator](ctx, s.db, "id", id)
}

func (s *gormStore) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return first[model.Location](ctx, s.db, "id", id)
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return first[model.User](ctx, s.db, "id", id)
}

func (s *gormStore) ListVehiclesByOperator(ctx context.Context, operatorID string) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	if err := s.db.WithContext(ctx).Where("operator_id = ?", operatorID).Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("list vehicles of operator %s: %w", operatorID, err)
	}
	return vehicles, nil
}

func (s *gormStore) ListRoutesByDestination(ctx context.Context, locationID string) ([]model.Route, error) {
	var routes []model.Route
	if err := s.db.WithContext(ctx).Where("destination_id = ?", locationID).Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("list routes to location %s: %w", locationID, err)
	}
	return routes, nil
}

func (s *gormStore) UpdateVehicle(ctx context.Context, id string, fields map[string]any) (*model.Vehicle, error) {
	if err := update[model.Vehicle](ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.GetVehicle(ctx, id)
}

func (s *gormStore) UpdateDriver(ctx context.Context, id string, fields map[string]any) (*model.Driver, error) {
	if err := update[model.Driver](ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.GetDriver(ctx, id)
}

func (s *gormStore) UpdateRoute(ctx context.Context, id string, fields map[string]any) (*model.Route, error) {
	if err := update[model.Route](ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.GetRoute(ctx, id)
}

func (s *gormStore) UpdateOperator(ctx context.Context, id string, fields map[string]any) (*model.Operator, error) {
	if err := update[model.Operator](ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.GetOperator(ctx, id)
}

func (s *gormStore) UpdateLocation(ctx context.Context, id string, fields map[string]any) (*model.Location, error) {
	if err := update[model.Location](ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.GetLocation(ctx, id)
}

// update applies a partial update to the row with the given id.
func update[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	var zero T
	if len(fields) == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return nil
	}
	res := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update %T %s: %w", zero, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertBadgeVehicles inserts or refreshes badge vehicles and returns the
// previously known ones whose plate number changed.
func (s *gormStore) UpsertBadgeVehicles(ctx context.Context, badges []model.BadgeVehicle) ([]model.BadgeVehicle, error) {
	if len(badges) == 0 {
		return nil, nil
	}

	keys := make([]string, len(badges))
	for i, b := range badges {
		keys[i] = b.Key
	}

	var existing []model.BadgeVehicle
	if err := s.db.WithContext(ctx).Where("badge_key IN ?", keys).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to pre-fetch badge vehicles: %w", err)
	}
	known := make(map[string]model.BadgeVehicle, len(existing))
	for _, b := range existing {
		known[b.Key] = b
	}

	var changed []model.BadgeVehicle
	for _, b := range badges {
		if old, ok := known[b.Key]; ok && old.PlateNumber != b.PlateNumber {
			changed = append(changed, b)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "badge_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"plate_number", "badge_number", "expires_at", "updated_at"}),
		}).Create(&badges).Error
	})
	if err != nil {
		return nil, fmt.Errorf("batch upsert badge vehicles failed: %w", err)
	}
	return changed, nil
}
