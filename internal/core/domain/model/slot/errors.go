package slot

import (
	"errors"
	"fmt"
)

// Admission outcomes. All of them are expected results that callers map to
// client responses, not faults.
var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotInactive = errors.New("slot is inactive")
	ErrSlotFull     = errors.New("slot is no longer available")

	// ErrCarrierLimitReached is a specialisation of ErrSlotFull: the slot still
	// has room but its carrier already holds maxBookingsPerCarrier bookings.
	ErrCarrierLimitReached = fmt.Errorf("%w: carrier booking limit reached", ErrSlotFull)

	ErrInvalidCapacity = errors.New("capacity is invalid")
	ErrInvalidWindow   = errors.New("slot window is invalid")
	ErrSlotHasBookings = errors.New("slot has bound orders")

	ErrSlotIsNotConstructed   = errors.New("Slot must be created via NewSlot or RestoreSlot constructor")
	ErrWindowIsNotConstructed = errors.New("Window must be created via NewWindow constructor")
)
