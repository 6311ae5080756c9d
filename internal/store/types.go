package store

import (
	"errors"

	"busstation-backend/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a dispatch record changed since it was read.
	ErrVersionConflict = errors.New("dispatch record version conflict")
)

// DispatchFilter narrows dispatch record listings. Empty fields match everything.
// A zero Limit means no limit.
type DispatchFilter struct {
	VehicleID     string
	DriverID      string
	RouteID       string
	OperatorID    string
	DestinationID string
	Status        model.DispatchStatus
	Limit         int
}
