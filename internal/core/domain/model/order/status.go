package order

import (
	"fmt"

	"optideliver/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions relevant to slot accounting:
//
//	Pending ──> Confirmed ──> InTransit ──> Delivered
//	   │            │
//	   └────────────┴──> Cancelled
//
// Only Pending and Confirmed orders may hold or change a slot binding.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Pending
	Confirmed
	InTransit
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Confirmed: "confirmed",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// Validate accepts every status except Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Delivered || s == Cancelled
}

// ValidateBind checks that an order in this status may take or give up a slot.
func (s Status) ValidateBind() error {
	if s != Pending && s != Confirmed {
		return fmt.Errorf("%w: status %s", ErrOrderNotBindable, s)
	}
	return nil
}

// Cancel transitions Pending or Confirmed to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Confirmed {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s.String()),
		)
	}
	return Cancelled, nil
}
