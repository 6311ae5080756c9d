// Package dispatch owns the dispatch record workflow: which status changes
// are legal, what each step must carry, and how it is written.
package dispatch

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/schema"

	"busstation-backend/internal/denorm"
	"busstation-backend/internal/logging"
	"busstation-backend/internal/model"
	"busstation-backend/internal/store"
)

const moduleName = "dispatch"

// Store is the persistence the workflow needs.
type Store interface {
	CreateDispatch(ctx context.Context, rec *model.DispatchRecord) error
	GetDispatch(ctx context.Context, id string) (*model.DispatchRecord, error)
	ListDispatch(ctx context.Context, filter store.DispatchFilter) ([]model.DispatchRecord, error)
	TransitionDispatch(ctx context.Context, id string, version int64, fields map[string]any) error
}

// Notifier is told about records that left the station.
type Notifier interface {
	NotifyDeparture(ctx context.Context, rec *model.DispatchRecord) error
}

// Service applies workflow steps to dispatch records.
type Service struct {
	store    Store
	fetcher  *denorm.Fetcher
	notifier Notifier
	log      logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// NewService creates the workflow service. notifier may be nil.
func NewService(st Store, fetcher *denorm.Fetcher, notifier Notifier, log logrus.FieldLogger) *Service {
	return &Service{
		store:    st,
		fetcher:  fetcher,
		notifier: notifier,
		log:      log.WithField("module", moduleName),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// CreateDispatch opens a record for a vehicle entering the station and
// copies the current vehicle, driver, route and actor names onto it.
func (s *Service) CreateDispatch(ctx context.Context, actor string, in CreateInput) (*model.DispatchRecord, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	ref, err := denorm.ParseVehicleRef(in.VehicleID)
	if err != nil {
		return nil, &ValidationError{Field: "vehicleId", Message: err.Error()}
	}
	entryTime, err := time.Parse(time.RFC3339, in.EntryTime)
	if err != nil {
		return nil, &ValidationError{Field: "entryTime", Message: "must be an ISO-8601 date time"}
	}

	snap, err := s.fetcher.Fetch(ctx, denorm.FetchInput{
		VehicleID: ref.String(),
		DriverID:  strings.TrimSpace(in.DriverID),
		RouteID:   strings.TrimSpace(in.RouteID),
		UserID:    actor,
	})
	if store.IsNotFound(err) {
		return nil, &NotFoundError{Entity: "vehicle", ID: ref.String()}
	}
	if err != nil {
		return nil, err
	}

	rec := &model.DispatchRecord{
		ID:            s.newID(),
		VehicleID:     ref.String(),
		RouteID:       optional(in.RouteID),
		ScheduleID:    optional(in.ScheduleID),
		EntryTime:     entryTime.UTC(),
		EntryBy:       actor,
		EntryShiftID:  optional(in.EntryShiftID),
		Notes:         in.Notes,
		CurrentStatus: model.StatusEntered,
		Metadata: model.DispatchMetadata{
			VehicleKind: in.VehicleKind,
			PaymentType: in.PaymentType,
		},
	}
	snap.ApplyTo(rec)

	if err := s.store.CreateDispatch(ctx, rec); err != nil {
		logging.LogError(s.log, moduleName, "CreateDispatch", "create record", in, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"dispatchId": rec.ID,
		"vehicleId":  rec.VehicleID,
		"actor":      actor,
		"status":     rec.CurrentStatus,
	}).Info("dispatch record created")
	return rec, nil
}

// RecordPassengerDrop moves an entered record to passengers_dropped.
// A route id also refreshes the cached route fields.
func (s *Service) RecordPassengerDrop(ctx context.Context, id, actor string, in PassengerDropInput) (*model.DispatchRecord, error) {
	return s.transition(ctx, id, actor, model.StatusPassengersDropped, in, func(rec *model.DispatchRecord, now time.Time) (map[string]any, error) {
		fields := map[string]any{
			"passenger_drop_time": now,
			"passenger_drop_by":   actor,
		}
		if in.PassengersArrived != nil {
			fields["passengers_arrived"] = int(*in.PassengersArrived)
		}
		if code := strings.TrimSpace(in.TransportOrderCode); code != "" {
			fields["transport_order_code"] = code
		}
		if routeID := strings.TrimSpace(in.RouteID); routeID != "" {
			route, err := s.fetcher.ResolveRoute(ctx, routeID)
			if store.IsNotFound(err) {
				return nil, &NotFoundError{Entity: "route", ID: routeID}
			}
			if err != nil {
				return nil, err
			}
			fields["route_id"] = routeID
			for col, v := range route.Fields() {
				fields[col] = v
			}
		}
		return fields, nil
	})
}

// IssuePermit records the boarding permit decision. Approval moves the
// record to permit_issued, rejection to permit_rejected.
func (s *Service) IssuePermit(ctx context.Context, id, actor string, in PermitInput) (*model.DispatchRecord, error) {
	to := model.StatusPermitIssued
	if in.PermitStatus == model.PermitRejected {
		to = model.StatusPermitRejected
	}

	return s.transition(ctx, id, actor, to, in, func(rec *model.DispatchRecord, now time.Time) (map[string]any, error) {
		fields := map[string]any{
			"permit_status":        in.PermitStatus,
			"boarding_permit_time": now,
			"boarding_permit_by":   actor,
		}
		entry := s.log.WithFields(logrus.Fields{"dispatchId": rec.ID, "permitStatus": in.PermitStatus})

		if in.PermitStatus == model.PermitApproved {
			fields["transport_order_code"] = strings.TrimSpace(in.TransportOrderCode)
			fields["rejection_reason"] = nil
			if in.SeatCount != nil {
				fields["seat_count"] = *in.SeatCount
			} else {
				entry.Warn("permit approved without seat count")
			}
		} else {
			if reason := strings.TrimSpace(in.RejectionReason); reason != "" {
				fields["rejection_reason"] = reason
			} else {
				entry.Warn("permit rejected without a reason")
			}
		}

		if in.PlannedDepartureTime != "" {
			planned, err := time.Parse(time.RFC3339, in.PlannedDepartureTime)
			if err != nil {
				return nil, &ValidationError{Field: "plannedDepartureTime", Message: "must be an ISO-8601 date time"}
			}
			fields["planned_departure_time"] = planned.UTC()
		}

		if replacement := strings.TrimSpace(in.ReplacementVehicleID); replacement != "" {
			ref, err := denorm.ParseVehicleRef(replacement)
			if err != nil {
				return nil, &ValidationError{Field: "replacementVehicleId", Message: err.Error()}
			}
			if ref.String() != rec.VehicleID {
				info, err := s.fetcher.ResolveVehicle(ctx, ref)
				if store.IsNotFound(err) {
					return nil, &NotFoundError{Entity: "vehicle", ID: ref.String()}
				}
				if err != nil {
					return nil, err
				}
				fields["vehicle_id"] = ref.String()
				fields["replaced_vehicle_id"] = rec.VehicleID
				fields["meta_vehicle_kind"] = model.VehicleKindReplacement
				for col, v := range info.Fields() {
					fields[col] = v
				}
			}
		}
		return fields, nil
	})
}

// ProcessPayment records the fee payment. Zero is a valid amount.
func (s *Service) ProcessPayment(ctx context.Context, id, actor string, in PaymentInput) (*model.DispatchRecord, error) {
	return s.transition(ctx, id, actor, model.StatusPaid, in, func(rec *model.DispatchRecord, now time.Time) (map[string]any, error) {
		fields := map[string]any{
			"payment_amount": in.PaymentAmount.Round(2),
			"payment_time":   now,
			"payment_by":     actor,
		}
		if in.PaymentMethod != "" {
			fields["payment_method"] = in.PaymentMethod
		}
		if invoice := strings.TrimSpace(in.InvoiceNumber); invoice != "" {
			fields["invoice_number"] = invoice
		}
		if in.PaymentType != "" {
			fields["meta_payment_type"] = in.PaymentType
		}
		return fields, nil
	})
}

// RecordDepartureOrder authorizes a paid vehicle to leave.
func (s *Service) RecordDepartureOrder(ctx context.Context, id, actor string, in DepartureOrderInput) (*model.DispatchRecord, error) {
	return s.transition(ctx, id, actor, model.StatusDepartureOrdered, in, func(rec *model.DispatchRecord, now time.Time) (map[string]any, error) {
		fields := map[string]any{
			"departure_order_time": now,
			"departure_order_by":   actor,
		}
		if in.PassengersDeparting != nil {
			fields["passengers_departing"] = int(*in.PassengersDeparting)
		}
		if shift := strings.TrimSpace(in.DepartureOrderShiftID); shift != "" {
			fields["departure_order_shift_id"] = shift
		}
		return fields, nil
	})
}

// RecordExit closes the record when the vehicle passes the gate, then
// notifies the operator's subscribers. A failed notification is only logged.
func (s *Service) RecordExit(ctx context.Context, id, actor string, in ExitInput) (*model.DispatchRecord, error) {
	rec, err := s.transition(ctx, id, actor, model.StatusDeparted, in, func(rec *model.DispatchRecord, now time.Time) (map[string]any, error) {
		exitTime := now
		if in.ExitTime != "" {
			parsed, err := time.Parse(time.RFC3339, in.ExitTime)
			if err != nil {
				return nil, &ValidationError{Field: "exitTime", Message: "must be an ISO-8601 date time"}
			}
			exitTime = parsed.UTC()
		}
		fields := map[string]any{
			"exit_time": exitTime,
			"exit_by":   actor,
		}
		if in.PassengersDeparting != nil {
			fields["passengers_departing"] = int(*in.PassengersDeparting)
		}
		if shift := strings.TrimSpace(in.ExitShiftID); shift != "" {
			fields["exit_shift_id"] = shift
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDeparture(ctx, rec); err != nil {
			logging.LogError(s.log, moduleName, "RecordExit", "departure notification", rec.ID, err)
		}
	}
	return rec, nil
}

// Get returns one dispatch record.
func (s *Service) Get(ctx context.Context, id string) (*model.DispatchRecord, error) {
	rec, err := s.store.GetDispatch(ctx, id)
	if store.IsNotFound(err) {
		return nil, &NotFoundError{Entity: "dispatch record", ID: id}
	}
	return rec, err
}

// List returns dispatch records matching filter, newest entry first.
func (s *Service) List(ctx context.Context, filter store.DispatchFilter) ([]model.DispatchRecord, error) {
	return s.store.ListDispatch(ctx, filter)
}

// transition runs one workflow step: validate the input, check the graph
// against the stored status, then write the step's fields, the new status
// and the actor stamp in a single conditional update.
func (s *Service) transition(
	ctx context.Context,
	id, actor string,
	to model.DispatchStatus,
	in any,
	build func(rec *model.DispatchRecord, now time.Time) (map[string]any, error),
) (*model.DispatchRecord, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(rec.CurrentStatus, to); err != nil {
		return nil, err
	}

	now := s.now()
	fields, err := build(rec, now)
	if err != nil {
		return nil, err
	}
	fields["current_status"] = to
	fields["updated_at"] = now

	err = s.store.TransitionDispatch(ctx, id, rec.Version, fields)
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return nil, &ConflictError{ID: id}
	case store.IsNotFound(err):
		return nil, &NotFoundError{Entity: "dispatch record", ID: id}
	case err != nil:
		logging.LogError(s.log, moduleName, "transition", string(rec.CurrentStatus)+" -> "+string(to), id, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"dispatchId": id,
		"from":       rec.CurrentStatus,
		"to":         to,
		"actor":      actor,
	}).Info("dispatch record transitioned")

	updated, err := s.Get(ctx, id)
	if err != nil {
		// The step is committed; answer with what was written rather than
		// an error the caller could only retry into a TransitionError.
		logging.LogError(s.log, moduleName, "transition", "reload record", id, err)
		fields["version"] = rec.Version + 1
		return s.withFields(ctx, rec, fields), nil
	}
	return updated, nil
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *schema.Schema
	recordSchemaErr  error
)

// withFields returns a copy of rec with the written columns applied.
func (s *Service) withFields(ctx context.Context, rec *model.DispatchRecord, fields map[string]any) *model.DispatchRecord {
	recordSchemaOnce.Do(func() {
		recordSchema, recordSchemaErr = schema.Parse(&model.DispatchRecord{}, &sync.Map{}, schema.NamingStrategy{})
	})
	out := *rec
	if recordSchemaErr != nil {
		s.log.WithError(recordSchemaErr).Warn("cannot map dispatch columns")
		return &out
	}
	target := reflect.ValueOf(&out).Elem()
	for col, v := range fields {
		field := recordSchema.LookUpField(col)
		if field == nil {
			continue
		}
		if err := field.Set(ctx, target, v); err != nil {
			s.log.WithError(err).WithField("column", col).Warn("cannot apply written column")
		}
	}
	return &out
}

func checkActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return &ValidationError{Field: "actor", Message: "authenticated actor is required"}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
