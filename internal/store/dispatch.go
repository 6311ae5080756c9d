package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"busstation-backend/internal/model"
)

func (s *gormStore) CreateDispatch(ctx context.Context, rec *model.DispatchRecord) error {
	if rec.Version == 0 {
		rec.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create dispatch record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *gormStore) GetDispatch(ctx context.Context, id string) (*model.DispatchRecord, error) {
	return first[model.DispatchRecord](ctx, s.db, "id", id)
}

// ListDispatch returns dispatch records matching the filter, newest entry
// first. A zero limit returns every match; the sync engine relies on that.
func (s *gormStore) ListDispatch(ctx context.Context, filter DispatchFilter) ([]model.DispatchRecord, error) {
	q := s.db.WithContext(ctx).Model(&model.DispatchRecord{})
	if filter.VehicleID != "" {
		q = q.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.DriverID != "" {
		q = q.Where("driver_id = ?", filter.DriverID)
	}
	if filter.RouteID != "" {
		q = q.Where("route_id = ?", filter.RouteID)
	}
	if filter.OperatorID != "" {
		q = q.Where("vehicle_operator_id = ?", filter.OperatorID)
	}
	if filter.DestinationID != "" {
		q = q.Where("route_destination_id = ?", filter.DestinationID)
	}
	if filter.Status != "" {
		q = q.Where("current_status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var records []model.DispatchRecord
	if err := q.Order("entry_time DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list dispatch records: %w", err)
	}
	return records, nil
}

// TransitionDispatch writes a workflow step only if the record is still at
// the given version, and bumps the version in the same statement.
func (s *gormStore) TransitionDispatch(ctx context.Context, id string, version int64, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := s.db.WithContext(ctx).
		Model(&model.DispatchRecord{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition dispatch record %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.DispatchRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check dispatch record %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

// PatchDispatch applies a partial update without touching the version.
// Only the denormalized columns are written this way.
func (s *gormStore) PatchDispatch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.DispatchRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to patch dispatch record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means the addressed row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
