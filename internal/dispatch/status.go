package dispatch

import "busstation-backend/internal/model"

// transitions is the workflow graph. There are no back-edges; the only
// branch is the permit rejection, which may still be re-decided or paid.
var transitions = map[model.DispatchStatus][]model.DispatchStatus{
	model.StatusEntered:           {model.StatusPassengersDropped},
	model.StatusPassengersDropped: {model.StatusPermitIssued, model.StatusPermitRejected},
	model.StatusPermitRejected:    {model.StatusPermitIssued, model.StatusPaid},
	model.StatusPermitIssued:      {model.StatusPaid},
	model.StatusPaid:              {model.StatusDepartureOrdered},
	model.StatusDepartureOrdered:  {model.StatusDeparted},
}

// CanTransition reports whether a record may move from one status to another.
func CanTransition(from, to model.DispatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a TransitionError when the move is illegal.
func CheckTransition(from, to model.DispatchStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
