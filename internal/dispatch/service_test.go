package dispatch

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busstation-backend/internal/denorm"
	"busstation-backend/internal/logging"
	"busstation-backend/internal/model"
	"busstation-backend/internal/store"
	"busstation-backend/internal/storetest"
)

const actor = "u1"

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *fakeNotifier) NotifyDeparture(_ context.Context, rec *model.DispatchRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, rec.ID)
	return n.err
}

type fixture struct {
	st       store.Store
	svc      *Service
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB := storetest.NewDB(t)

	opID, destID, driverID := "op1", "loc1", "d1"
	require.NoError(t, gormDB.Create(&model.Operator{ID: opID, Name: "Phuong Trang", Code: "PT"}).Error)
	require.NoError(t, gormDB.Create(&model.Location{ID: destID, Name: "Da Lat", Code: "DL"}).Error)
	require.NoError(t, gormDB.Create(&model.Driver{ID: driverID, FullName: "Nguyen Van A"}).Error)
	require.NoError(t, gormDB.Create(&model.Vehicle{ID: "v1", PlateNumber: "51B-123.45", OperatorID: &opID}).Error)
	require.NoError(t, gormDB.Create(&model.Vehicle{ID: "v2", PlateNumber: "51B-999.99", OperatorID: &opID, DriverID: &driverID}).Error)
	require.NoError(t, gormDB.Create(&model.Route{ID: "route1", Name: "Saigon - Da Lat", Type: "intercity", DestinationID: &destID}).Error)
	require.NoError(t, gormDB.Create(&model.LegacyVehicle{Key: "k9", PlateNumber: "49B-000.01", OwnerName: "Ong Ba"}).Error)
	require.NoError(t, gormDB.Create(&model.User{ID: actor, FullName: "Desk Clerk"}).Error)

	st := store.NewGormStore(gormDB)
	log := logging.Discard()
	notifier := &fakeNotifier{}
	svc := NewService(st, denorm.NewFetcher(st, nil, log), notifier, log)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return &fixture{st: st, svc: svc, notifier: notifier}
}

func (f *fixture) create(t *testing.T, vehicleID string) *model.DispatchRecord {
	t.Helper()
	rec, err := f.svc.CreateDispatch(context.Background(), actor, CreateInput{VehicleID: vehicleID, EntryTime: "2024-01-01T08:00:00Z"})
	require.NoError(t, err)
	return rec
}

func num(v float64) *float64 { return &v }

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int { return &v }

func TestService_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.create(t, "v1")
	assert.Equal(t, model.StatusEntered, rec.CurrentStatus)
	assert.Nil(t, rec.DriverID)
	assert.Equal(t, "51B-123.45", rec.VehiclePlateNumber)
	assert.Equal(t, "Phuong Trang", rec.VehicleOperatorName)
	assert.Equal(t, "Desk Clerk", rec.EntryByName)
	assert.Equal(t, int64(1), rec.Version)

	rec, err := f.svc.RecordPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{PassengersArrived: num(30), RouteID: "route1"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassengersDropped, rec.CurrentStatus)
	require.NotNil(t, rec.PassengersArrived)
	assert.Equal(t, 30, *rec.PassengersArrived)
	assert.Equal(t, "Saigon - Da Lat", rec.RouteName)
	assert.Equal(t, "Da Lat", rec.RouteDestinationName)
	require.NotNil(t, rec.PassengerDropBy)
	assert.Equal(t, actor, *rec.PassengerDropBy)

	rec, err = f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO-1", SeatCount: intPtr(45)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPermitIssued, rec.CurrentStatus)
	require.NotNil(t, rec.TransportOrderCode)
	assert.Equal(t, "TO-1", *rec.TransportOrderCode)
	assert.Equal(t, 45, *rec.SeatCount)

	rec, err = f.svc.ProcessPayment(ctx, rec.ID, actor, PaymentInput{PaymentAmount: amount("0"), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, rec.CurrentStatus)
	require.True(t, rec.PaymentAmount.Valid)
	assert.True(t, rec.PaymentAmount.Decimal.IsZero())

	rec, err = f.svc.RecordDepartureOrder(ctx, rec.ID, actor, DepartureOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDepartureOrdered, rec.CurrentStatus)

	rec, err = f.svc.RecordExit(ctx, rec.ID, actor, ExitInput{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeparted, rec.CurrentStatus)
	assert.Equal(t, int64(6), rec.Version)
	assert.Equal(t, []string{rec.ID}, f.notifier.sent)

	var terr *TransitionError
	_, err = f.svc.RecordExit(ctx, rec.ID, actor, ExitInput{})
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, model.StatusDeparted, terr.From)

	_, err = f.svc.ProcessPayment(ctx, rec.ID, actor, PaymentInput{PaymentAmount: amount("10")})
	assert.ErrorAs(t, err, &terr)
}

func TestService_IllegalJumpsLeaveRecordUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.create(t, "v1")

	steps := map[string]func() error{
		"entered to paid": func() error {
			_, err := f.svc.ProcessPayment(ctx, rec.ID, actor, PaymentInput{PaymentAmount: amount("5")})
			return err
		},
		"entered to permit": func() error {
			_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO"})
			return err
		},
		"entered to departure order": func() error {
			_, err := f.svc.RecordDepartureOrder(ctx, rec.ID, actor, DepartureOrderInput{})
			return err
		},
		"entered to departed": func() error {
			_, err := f.svc.RecordExit(ctx, rec.ID, actor, ExitInput{})
			return err
		},
	}
	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			var terr *TransitionError
			assert.ErrorAs(t, step(), &terr)
		})
	}

	got, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEntered, got.CurrentStatus)
	assert.Equal(t, int64(1), got.Version)
}

func TestService_IssuePermit_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dropped := func() *model.DispatchRecord {
		rec := f.create(t, "v1")
		rec, err := f.svc.RecordPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{})
		require.NoError(t, err)
		return rec
	}

	t.Run("approved without transport order code", func(t *testing.T) {
		rec := dropped()
		_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "transportOrderCode", verr.Field)
		assert.Equal(t, "transport order code required for approved permit", verr.Message)
	})

	t.Run("pending is not a target", func(t *testing.T) {
		rec := dropped()
		_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitPending})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("rejected needs no transport order code", func(t *testing.T) {
		rec := dropped()
		got, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitRejected, RejectionReason: "expired badge"})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPermitRejected, got.CurrentStatus)
		require.NotNil(t, got.RejectionReason)
		assert.Equal(t, "expired badge", *got.RejectionReason)

		paid, err := f.svc.ProcessPayment(ctx, got.ID, actor, PaymentInput{PaymentAmount: amount("0"), PaymentType: model.PaymentTypeMonthly})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, paid.CurrentStatus)
		assert.Equal(t, model.PaymentTypeMonthly, paid.Metadata.PaymentType)
	})

	t.Run("rejection can be re-decided", func(t *testing.T) {
		rec := dropped()
		_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitRejected})
		require.NoError(t, err)
		got, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO-2"})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPermitIssued, got.CurrentStatus)
		assert.Nil(t, got.RejectionReason)
	})

	t.Run("bad planned departure time", func(t *testing.T) {
		rec := dropped()
		_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO", PlannedDepartureTime: "tomorrow"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "plannedDepartureTime", verr.Field)
	})

	t.Run("replacement vehicle", func(t *testing.T) {
		rec := dropped()
		got, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO-3", ReplacementVehicleID: "v2"})
		require.NoError(t, err)
		assert.Equal(t, "v2", got.VehicleID)
		require.NotNil(t, got.ReplacedVehicleID)
		assert.Equal(t, "v1", *got.ReplacedVehicleID)
		assert.Equal(t, "51B-999.99", got.VehiclePlateNumber)
		assert.Equal(t, model.VehicleKindReplacement, got.Metadata.VehicleKind)
	})

	t.Run("unknown replacement vehicle", func(t *testing.T) {
		rec := dropped()
		_, err := f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO", ReplacementVehicleID: "nope"})
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "vehicle", nerr.Entity)
	})
}

func TestService_ProcessPayment_Amounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued := func() string {
		rec := f.create(t, "v1")
		_, err := f.svc.RecordPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{})
		require.NoError(t, err)
		_, err = f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO"})
		require.NoError(t, err)
		return rec.ID
	}

	testCases := []struct {
		name    string
		input   PaymentInput
		field   string
		wantErr bool
	}{
		{name: "zero", input: PaymentInput{PaymentAmount: amount("0")}},
		{name: "positive with method", input: PaymentInput{PaymentAmount: amount("150000.50"), PaymentMethod: model.PaymentBankTransfer, InvoiceNumber: "INV-9"}},
		{name: "negative", input: PaymentInput{PaymentAmount: amount("-1")}, field: "paymentAmount", wantErr: true},
		{name: "missing", input: PaymentInput{}, field: "paymentAmount", wantErr: true},
		{name: "unknown method", input: PaymentInput{PaymentAmount: amount("1"), PaymentMethod: "cheque"}, field: "paymentMethod", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := issued()
			got, err := f.svc.ProcessPayment(ctx, id, actor, tc.input)
			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.field, verr.Field)
				rec, err := f.svc.Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, model.StatusPermitIssued, rec.CurrentStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.StatusPaid, got.CurrentStatus)
			assert.True(t, got.PaymentAmount.Decimal.Equal(*tc.input.PaymentAmount))
		})
	}
}

func TestService_PassengerCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		count   *float64
		wantErr bool
	}{
		{name: "zero", count: num(0)},
		{name: "positive", count: num(12)},
		{name: "negative", count: num(-1), wantErr: true},
		{name: "fraction", count: num(2.5), wantErr: true},
		{name: "largest", count: num(math.MaxInt32)},
		{name: "overflowing", count: num(1e19), wantErr: true},
		{name: "infinite", count: num(math.Inf(1)), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run("drop "+tc.name, func(t *testing.T) {
			rec := f.create(t, "v1")
			_, err := f.svc.RecordPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{PassengersArrived: tc.count})
			assertCountResult(t, err, tc.wantErr, "passengersArrived")
		})
		t.Run("departure order "+tc.name, func(t *testing.T) {
			id := paidRecord(t, f)
			_, err := f.svc.RecordDepartureOrder(ctx, id, actor, DepartureOrderInput{PassengersDeparting: tc.count})
			assertCountResult(t, err, tc.wantErr, "passengersDeparting")
		})
		t.Run("exit "+tc.name, func(t *testing.T) {
			id := paidRecord(t, f)
			_, err := f.svc.RecordDepartureOrder(ctx, id, actor, DepartureOrderInput{})
			require.NoError(t, err)
			_, err = f.svc.RecordExit(ctx, id, actor, ExitInput{PassengersDeparting: tc.count})
			assertCountResult(t, err, tc.wantErr, "passengersDeparting")
		})
	}
}

func assertCountResult(t *testing.T, err error, wantErr bool, field string) {
	t.Helper()
	if !wantErr {
		assert.NoError(t, err)
		return
	}
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func paidRecord(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	rec := f.create(t, "v1")
	_, err := f.svc.RecordPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{})
	require.NoError(t, err)
	_, err = f.svc.IssuePermit(ctx, rec.ID, actor, PermitInput{PermitStatus: model.PermitApproved, TransportOrderCode: "TO"})
	require.NoError(t, err)
	_, err = f.svc.ProcessPayment(ctx, rec.ID, actor, PaymentInput{PaymentAmount: amount("0")})
	require.NoError(t, err)
	return rec.ID
}

func TestService_CreateDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("legacy vehicle without driver", func(t *testing.T) {
		rec, err := f.svc.CreateDispatch(ctx, actor, CreateInput{VehicleID: "legacy_k9", EntryTime: "2024-01-01T08:00:00Z"})
		require.NoError(t, err)
		assert.Equal(t, "legacy_k9", rec.VehicleID)
		assert.Nil(t, rec.VehicleOperatorID)
		assert.Equal(t, "Ong Ba", rec.VehicleOperatorName)
		assert.Equal(t, "49B-000.01", rec.VehiclePlateNumber)
		assert.Nil(t, rec.DriverID)
	})

	t.Run("driver discovered from vehicle", func(t *testing.T) {
		rec := f.create(t, "v2")
		require.NotNil(t, rec.DriverID)
		assert.Equal(t, "d1", *rec.DriverID)
		assert.Equal(t, "Nguyen Van A", rec.DriverFullName)
	})

	t.Run("metadata flags", func(t *testing.T) {
		rec, err := f.svc.CreateDispatch(ctx, actor, CreateInput{VehicleID: "v1", EntryTime: "2024-01-01T08:00:00+07:00", VehicleKind: model.VehicleKindAugmented})
		require.NoError(t, err)
		assert.Equal(t, model.VehicleKindAugmented, rec.Metadata.VehicleKind)
		assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), rec.EntryTime)
	})

	testCases := []struct {
		name  string
		actor string
		input CreateInput
		field string
	}{
		{name: "missing vehicle", actor: actor, input: CreateInput{EntryTime: "2024-01-01T08:00:00Z"}, field: "vehicleId"},
		{name: "missing entry time", actor: actor, input: CreateInput{VehicleID: "v1"}, field: "entryTime"},
		{name: "bad entry time", actor: actor, input: CreateInput{VehicleID: "v1", EntryTime: "01/01/2024"}, field: "entryTime"},
		{name: "empty prefixed key", actor: actor, input: CreateInput{VehicleID: "badge_", EntryTime: "2024-01-01T08:00:00Z"}, field: "vehicleId"},
		{name: "unknown kind", actor: actor, input: CreateInput{VehicleID: "v1", EntryTime: "2024-01-01T08:00:00Z", VehicleKind: "charter"}, field: "vehicleKind"},
		{name: "no actor", input: CreateInput{VehicleID: "v1", EntryTime: "2024-01-01T08:00:00Z"}, field: "actor"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateDispatch(ctx, tc.actor, tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := f.svc.CreateDispatch(ctx, actor, CreateInput{VehicleID: "ghost", EntryTime: "2024-01-01T08:00:00Z"})
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "ghost", nerr.ID)
	})
}

func TestService_PassengerDrop_UnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, "v1")

	_, err := f.svc.RecordPassengerDrop(context.Background(), rec.ID, actor, PassengerDropInput{RouteID: "nowhere"})
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "route", nerr.Entity)
}

func TestService_UnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordPassengerDrop(context.Background(), "missing", actor, PassengerDropInput{})
	var nerr *NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

type staleStore struct {
	Store
}

func (s staleStore) TransitionDispatch(context.Context, string, int64, map[string]any) error {
	return store.ErrVersionConflict
}

func TestService_VersionConflict(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, "v1")

	f.svc.store = staleStore{Store: f.st}
	_, err := f.svc.RecordPassengerDrop(context.Background(), rec.ID, actor, PassengerDropInput{})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, rec.ID, cerr.ID)
}

// blindStore commits transitions but cannot read records back afterwards.
type blindStore struct {
	Store
	written bool
}

func (s *blindStore) TransitionDispatch(ctx context.Context, id string, version int64, fields map[string]any) error {
	if err := s.Store.TransitionDispatch(ctx, id, version, fields); err != nil {
		return err
	}
	s.written = true
	return nil
}

func (s *blindStore) GetDispatch(ctx context.Context, id string) (*model.DispatchRecord, error) {
	if s.written {
		return nil, errors.New("connection reset")
	}
	return s.Store.GetDispatch(ctx, id)
}

func TestService_ReloadFailureAfterCommit(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, "v1")

	f.svc.store = &blindStore{Store: f.st}
	got, err := f.svc.RecordPassengerDrop(context.Background(), rec.ID, actor, PassengerDropInput{PassengersArrived: num(18), TransportOrderCode: "LT-7"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassengersDropped, got.CurrentStatus)
	assert.Equal(t, rec.Version+1, got.Version)
	require.NotNil(t, got.PassengersArrived)
	assert.Equal(t, 18, *got.PassengersArrived)
	require.NotNil(t, got.PassengerDropBy)
	assert.Equal(t, actor, *got.PassengerDropBy)
	assert.Equal(t, rec.VehiclePlateNumber, got.VehiclePlateNumber)

	f.svc.store = f.st
	stored, err := f.svc.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got.CurrentStatus, stored.CurrentStatus)
	assert.Equal(t, got.Version, stored.Version)
}

func TestService_ConcurrentTransitionsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	rec := f.create(t, "v1")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RecordPassengerDrop(context.Background(), rec.ID, actor, PassengerDropInput{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var cerr *ConflictError
		var terr *TransitionError
		assert.True(t, errors.As(err, &cerr) || errors.As(err, &terr), "unexpected error %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestService_NotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("queue full")
	ctx := context.Background()

	id := paidRecord(t, f)
	_, err := f.svc.RecordDepartureOrder(ctx, id, actor, DepartureOrderInput{})
	require.NoError(t, err)

	rec, err := f.svc.RecordExit(ctx, id, actor, ExitInput{ExitTime: "2024-01-01T10:30:00Z", ExitShiftID: "night"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeparted, rec.CurrentStatus)
	require.NotNil(t, rec.ExitTime)
	assert.True(t, rec.ExitTime.Equal(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)))
}

func TestWorkflow_ConfirmPassengerDrop(t *testing.T) {
	f := newFixture(t)
	wf := NewWorkflow(f.svc)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input PassengerDropInput
		field string
	}{
		{name: "no route", input: PassengerDropInput{PassengersArrived: num(3), TransportOrderCode: "TO"}, field: "routeId"},
		{name: "no count", input: PassengerDropInput{RouteID: "route1", TransportOrderCode: "TO"}, field: "passengersArrived"},
		{name: "blank order code", input: PassengerDropInput{RouteID: "route1", PassengersArrived: num(3), TransportOrderCode: "  "}, field: "transportOrderCode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.create(t, "v1")
			_, err := wf.ConfirmPassengerDrop(ctx, rec.ID, actor, tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	rec := f.create(t, "v1")
	got, err := wf.ConfirmPassengerDrop(ctx, rec.ID, actor, PassengerDropInput{RouteID: "route1", PassengersArrived: num(0), TransportOrderCode: "TO-7"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassengersDropped, got.CurrentStatus)
	assert.Equal(t, "TO-7", *got.TransportOrderCode)
}
