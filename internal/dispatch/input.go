package dispatch

import (
	"github.com/shopspring/decimal"

	"busstation-backend/internal/model"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// CreateInput starts a dispatch record when a vehicle enters the station.
type CreateInput struct {
	VehicleID    string            `json:"vehicleId" validate:"required"`
	EntryTime    string            `json:"entryTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DriverID     string            `json:"driverId"`
	RouteID      string            `json:"routeId"`
	ScheduleID   string            `json:"scheduleId"`
	EntryShiftID string            `json:"entryShiftId"`
	Notes        string            `json:"notes" validate:"max=2000"`
	VehicleKind  model.VehicleKind `json:"vehicleKind" validate:"omitempty,oneof=irregular augmented replacement"`
	PaymentType  string            `json:"paymentType" validate:"omitempty,oneof=monthly"`
}

// PassengerDropInput records passengers leaving an arriving vehicle.
type PassengerDropInput struct {
	PassengersArrived  *float64 `json:"passengersArrived" validate:"omitempty,gte=0,wholenum"`
	RouteID            string   `json:"routeId"`
	TransportOrderCode string   `json:"transportOrderCode" validate:"max=64"`
}

// PermitInput is the boarding permit decision.
type PermitInput struct {
	PermitStatus         model.PermitStatus `json:"permitStatus" validate:"required,oneof=approved rejected"`
	TransportOrderCode   string             `json:"transportOrderCode" validate:"required_if=PermitStatus approved,max=64"`
	SeatCount            *int               `json:"seatCount" validate:"omitempty,gte=0"`
	RejectionReason      string             `json:"rejectionReason"`
	ReplacementVehicleID string             `json:"replacementVehicleId"`
	PlannedDepartureTime string             `json:"plannedDepartureTime" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// PaymentInput settles the station fees for a vehicle.
type PaymentInput struct {
	PaymentAmount *decimal.Decimal    `json:"paymentAmount" validate:"required,gte=0"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash transfer bank_transfer card"`
	InvoiceNumber string              `json:"invoiceNumber" validate:"max=64"`
	PaymentType   string              `json:"paymentType" validate:"omitempty,oneof=monthly"`
}

// DepartureOrderInput authorizes a paid vehicle to leave.
type DepartureOrderInput struct {
	PassengersDeparting   *float64 `json:"passengersDeparting" validate:"omitempty,gte=0,wholenum"`
	DepartureOrderShiftID string   `json:"departureOrderShiftId"`
}

// ExitInput records the vehicle passing the exit gate.
type ExitInput struct {
	ExitTime            string   `json:"exitTime" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PassengersDeparting *float64 `json:"passengersDeparting" validate:"omitempty,gte=0,wholenum"`
	ExitShiftID         string   `json:"exitShiftId"`
}
