package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DispatchStatus is the workflow position of a dispatch record.
type DispatchStatus string

const (
	StatusEntered           DispatchStatus = "entered"
	StatusPassengersDropped DispatchStatus = "passengers_dropped"
	StatusPermitIssued      DispatchStatus = "permit_issued"
	StatusPermitRejected    DispatchStatus = "permit_rejected"
	StatusPaid              DispatchStatus = "paid"
	StatusDepartureOrdered  DispatchStatus = "departure_ordered"
	StatusDeparted          DispatchStatus = "departed"
)

// PermitStatus is the outcome of the boarding permit decision.
type PermitStatus string

const (
	PermitPending  PermitStatus = "pending"
	PermitApproved PermitStatus = "approved"
	PermitRejected PermitStatus = "rejected"
)

// PaymentMethod enumerates accepted ways of paying station fees.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentTransfer     PaymentMethod = "transfer"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

// VehicleKind flags vehicles that are not on their regular schedule.
type VehicleKind string

const (
	VehicleKindIrregular   VehicleKind = "irregular"
	VehicleKindAugmented   VehicleKind = "augmented"
	VehicleKindReplacement VehicleKind = "replacement"
)

// PaymentTypeMonthly marks vehicles settled by a monthly contract.
const PaymentTypeMonthly = "monthly"

// DispatchMetadata holds the auxiliary flags read by the station screens.
type DispatchMetadata struct {
	VehicleKind VehicleKind `gorm:"size:32" json:"type,omitempty"`
	PaymentType string      `gorm:"size:32" json:"paymentType,omitempty"`
}

// DispatchRecord is one vehicle visit to the station, from entry to exit.
//
// The Vehicle*, Driver*, Route* and EntryByName columns are a cache of the
// referenced entities and are only written by the denorm package.
type DispatchRecord struct {
	ID                string  `gorm:"primaryKey;size:64" json:"id"`
	VehicleID         string  `gorm:"index;size:128;not null" json:"vehicleId"`
	DriverID          *string `gorm:"index;size:64" json:"driverId"`
	RouteID           *string `gorm:"index;size:64" json:"routeId"`
	ScheduleID        *string `gorm:"size:64" json:"scheduleId"`
	ReplacedVehicleID *string `gorm:"size:128" json:"replacedVehicleId,omitempty"`

	VehiclePlateNumber   string  `gorm:"size:32" json:"vehiclePlateNumber"`
	VehicleOperatorID    *string `gorm:"index;size:64" json:"vehicleOperatorId"`
	VehicleOperatorName  string  `gorm:"size:256" json:"vehicleOperatorName"`
	VehicleOperatorCode  string  `gorm:"size:64" json:"vehicleOperatorCode"`
	DriverFullName       string  `gorm:"size:256" json:"driverFullName"`
	RouteName            string  `gorm:"size:256" json:"routeName"`
	RouteType            string  `gorm:"size:64" json:"routeType"`
	RouteDestinationID   *string `gorm:"index;size:64" json:"routeDestinationId"`
	RouteDestinationName string  `gorm:"size:256" json:"routeDestinationName"`
	RouteDestinationCode string  `gorm:"size:64" json:"routeDestinationCode"`
	EntryByName          string  `gorm:"size:256" json:"entryByName"`

	EntryTime    time.Time `gorm:"not null" json:"entryTime"`
	EntryBy      string    `gorm:"size:64" json:"entryBy"`
	EntryShiftID *string   `gorm:"size:64" json:"entryShiftId"`
	Notes        string    `json:"notes"`

	PassengerDropTime *time.Time `json:"passengerDropTime"`
	PassengersArrived *int       `json:"passengersArrived"`
	PassengerDropBy   *string    `gorm:"size:64" json:"passengerDropBy"`

	BoardingPermitTime   *time.Time    `json:"boardingPermitTime"`
	PlannedDepartureTime *time.Time    `json:"plannedDepartureTime"`
	TransportOrderCode   *string       `gorm:"size:64" json:"transportOrderCode"`
	SeatCount            *int          `json:"seatCount"`
	PermitStatus         *PermitStatus `gorm:"size:16" json:"permitStatus"`
	RejectionReason      *string       `json:"rejectionReason"`
	BoardingPermitBy     *string       `gorm:"size:64" json:"boardingPermitBy"`

	PaymentTime   *time.Time          `json:"paymentTime"`
	PaymentAmount decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"paymentAmount"`
	PaymentMethod *PaymentMethod      `gorm:"size:16" json:"paymentMethod"`
	InvoiceNumber *string             `gorm:"size:64" json:"invoiceNumber"`
	PaymentBy     *string             `gorm:"size:64" json:"paymentBy"`

	DepartureOrderTime    *time.Time `json:"departureOrderTime"`
	PassengersDeparting   *int       `json:"passengersDeparting"`
	DepartureOrderBy      *string    `gorm:"size:64" json:"departureOrderBy"`
	DepartureOrderShiftID *string    `gorm:"size:64" json:"departureOrderShiftId"`

	ExitTime    *time.Time `json:"exitTime"`
	ExitBy      *string    `gorm:"size:64" json:"exitBy"`
	ExitShiftID *string    `gorm:"size:64" json:"exitShiftId"`

	CurrentStatus DispatchStatus   `gorm:"index;size:32;not null" json:"currentStatus"`
	Metadata      DispatchMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	Version       int64            `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
