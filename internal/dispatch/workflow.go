package dispatch

import (
	"context"
	"strings"

	"busstation-backend/internal/model"
)

// Workflow adds the confirmation rules the station desk applies on top of
// the field-level checks of Service.
type Workflow struct {
	*Service
}

// NewWorkflow wraps svc.
func NewWorkflow(svc *Service) *Workflow {
	return &Workflow{Service: svc}
}

// ConfirmPassengerDrop requires a route, an arrived passenger count and a
// transport order code before recording the drop.
func (w *Workflow) ConfirmPassengerDrop(ctx context.Context, id, actor string, in PassengerDropInput) (*model.DispatchRecord, error) {
	if strings.TrimSpace(in.RouteID) == "" {
		return nil, &ValidationError{Field: "routeId", Message: "route is required to confirm passenger drop"}
	}
	if in.PassengersArrived == nil {
		return nil, &ValidationError{Field: "passengersArrived", Message: "arrived passenger count is required to confirm passenger drop"}
	}
	if strings.TrimSpace(in.TransportOrderCode) == "" {
		return nil, &ValidationError{Field: "transportOrderCode", Message: "transport order code is required to confirm passenger drop"}
	}
	return w.RecordPassengerDrop(ctx, id, actor, in)
}
