package slot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/errs"
)

const (
	// DefaultCapacity is the capacity of a slot created without an explicit one.
	DefaultCapacity = 50

	// DefaultMaxBookingsPerCarrier caps the bookings a single carrier may hold in one slot.
	DefaultMaxBookingsPerCarrier = 20
)

// Slot is a bookable delivery window for an area. It is the aggregate root
// guarding the capacity counter.
//
// Slot follows these invariants:
//   - start < end
//   - 0 <= available <= capacity
//   - an inactive slot rejects Reserve but accepts Release
//   - with a carrier assigned, capacity-available never exceeds maxBookingsPerCarrier
//     as a result of Reserve
//
// The in-memory transitions (Reserve, Release, AdjustCapacity) define the
// semantics that the persistence layer reproduces with single conditional
// statements. Code that mutates a persisted slot must go through the
// admission controller rather than load, mutate and save the aggregate.
type Slot struct {
	id                    kernel.UUID
	area                  string
	window                Window
	capacity              int
	available             int
	carrierID             *kernel.UUID
	isActive              bool
	maxBookingsPerCarrier int
	priority              Priority
	createdAt             time.Time
	updatedAt             time.Time

	isConstructed bool
}

// NewSlot creates an active slot with available == capacity, medium priority
// and no carrier.
//
// Example:
//
//	w, _ := slot.NewWindow(start, start.Add(2*time.Hour))
//	s, err := slot.NewSlot(kernel.NewUUID(), "north", w, 2)
//	if err != nil {
//	    return err
//	}
//	_ = s.Reserve() // available is now 1
func NewSlot(id kernel.UUID, area string, window Window, capacity int) (*Slot, error) {
	s := &Slot{
		isActive:              true,
		maxBookingsPerCarrier: DefaultMaxBookingsPerCarrier,
		priority:              DefaultPriority,
		isConstructed:         true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setArea(area),
		s.setWindow(window),
		s.setCapacity(capacity),
	); err != nil {
		return nil, err
	}

	s.available = s.capacity
	return s, nil
}

// RestoreParams carries a persisted slot back into the domain.
type RestoreParams struct {
	ID                    kernel.UUID
	Area                  string
	Start                 time.Time
	End                   time.Time
	Capacity              int
	Available             int
	CarrierID             *kernel.UUID
	IsActive              bool
	MaxBookingsPerCarrier int
	Priority              Priority
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RestoreSlot rebuilds a slot from storage. Unlike NewSlot it rejects an
// out-of-range available value instead of clamping it, since that would
// indicate a corrupted row.
func RestoreSlot(p RestoreParams) (*Slot, error) {
	window, err := NewWindow(p.Start, p.End)
	if err != nil {
		return nil, err
	}

	s := &Slot{
		isActive:      p.IsActive,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
		isConstructed: true,
	}

	if err = errors.Join(
		s.setID(p.ID),
		s.setArea(p.Area),
		s.setWindow(window),
		s.setCapacity(p.Capacity),
		s.setMaxBookingsPerCarrier(p.MaxBookingsPerCarrier),
		s.setPriority(p.Priority),
		s.setCarrier(p.CarrierID),
	); err != nil {
		return nil, err
	}

	if p.Available < 0 || p.Available > s.capacity {
		return nil, errs.NewValueIsOutOfRangeError("available", p.Available, 0, s.capacity)
	}
	s.available = p.Available

	return s, nil
}

func (s *Slot) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSlotIsNotConstructed
	}
	return nil
}

func (s *Slot) ID() kernel.UUID {
	return s.id
}

func (s *Slot) Area() string {
	return s.area
}

func (s *Slot) Window() Window {
	return s.window
}

func (s *Slot) Capacity() int {
	return s.capacity
}

func (s *Slot) Available() int {
	return s.available
}

// Booked is the number of units currently reserved.
func (s *Slot) Booked() int {
	return s.capacity - s.available
}

// Carrier returns the assigned carrier or nil.
func (s *Slot) Carrier() *kernel.UUID {
	return s.carrierID
}

func (s *Slot) IsActive() bool {
	return s.isActive
}

func (s *Slot) MaxBookingsPerCarrier() int {
	return s.maxBookingsPerCarrier
}

func (s *Slot) Priority() Priority {
	return s.priority
}

func (s *Slot) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Slot) UpdatedAt() time.Time {
	return s.updatedAt
}

// CanReserve reports why Reserve would fail, or nil if it would succeed.
// The checks run in the order callers see them: inactive, full, carrier cap.
func (s *Slot) CanReserve() error {
	if !s.isActive {
		return ErrSlotInactive
	}
	if s.available <= 0 {
		return ErrSlotFull
	}
	if s.carrierID != nil && s.Booked() >= s.maxBookingsPerCarrier {
		return ErrCarrierLimitReached
	}
	return nil
}

// Reserve takes one unit of capacity.
func (s *Slot) Reserve() error {
	if err := s.CanReserve(); err != nil {
		return err
	}

	s.available--
	return nil
}

// Release returns one unit of capacity, clamped to capacity. Releasing a slot
// that is already at capacity is a no-op.
func (s *Slot) Release() {
	s.available = min(s.available+1, s.capacity)
}

// AdjustCapacity sets a new ceiling and clamps available to it. Raising the
// ceiling does not create availability; existing bookings keep their units.
func (s *Slot) AdjustCapacity(capacity int) error {
	if err := s.setCapacity(capacity); err != nil {
		return err
	}

	s.available = min(s.available, s.capacity)
	return nil
}

// OverrideAvailable sets the remaining capacity explicitly, clamped to [0, capacity].
func (s *Slot) OverrideAvailable(available int) error {
	if available < 0 {
		return errs.NewValueIsOutOfRangeError("available", available, 0, s.capacity)
	}

	s.available = min(available, s.capacity)
	return nil
}

// ExpectedAvailable is the availability implied by the number of orders
// bound to this slot.
func (s *Slot) ExpectedAvailable(boundOrders int) int {
	return max(0, min(s.capacity-boundOrders, s.capacity))
}

// Overbooked returns how many bound orders exceed the current capacity.
func (s *Slot) Overbooked(boundOrders int) int {
	return max(0, boundOrders-s.capacity)
}

// Reschedule moves the slot to a new window.
func (s *Slot) Reschedule(window Window) error {
	return s.setWindow(window)
}

func (s *Slot) MoveToArea(area string) error {
	return s.setArea(area)
}

func (s *Slot) AssignCarrier(carrierID kernel.UUID) error {
	if err := carrierID.Validate(); err != nil {
		return err
	}

	s.carrierID = &carrierID
	return nil
}

func (s *Slot) UnassignCarrier() {
	s.carrierID = nil
}

func (s *Slot) SetPriority(p Priority) error {
	return s.setPriority(p)
}

func (s *Slot) SetMaxBookingsPerCarrier(n int) error {
	return s.setMaxBookingsPerCarrier(n)
}

func (s *Slot) Activate() {
	s.isActive = true
}

func (s *Slot) Deactivate() {
	s.isActive = false
}

// HasEnded reports whether the delivery window is over.
func (s *Slot) HasEnded(now time.Time) bool {
	return s.window.HasEnded(now)
}

func (s *Slot) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Slot) setArea(area string) error {
	area = strings.TrimSpace(area)
	if area == "" {
		return errs.NewValueIsRequiredError("area")
	}
	s.area = area
	return nil
}

func (s *Slot) setWindow(window Window) error {
	if err := window.Validate(); err != nil {
		return err
	}
	s.window = window
	return nil
}

func (s *Slot) setCapacity(capacity int) error {
	if capacity < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"capacity",
			fmt.Errorf("%w: %d is negative", ErrInvalidCapacity, capacity),
		)
	}
	s.capacity = capacity
	return nil
}

func (s *Slot) setMaxBookingsPerCarrier(n int) error {
	if n < 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"maxBookingsPerCarrier",
			fmt.Errorf("%d is not greater than 0", n),
		)
	}
	s.maxBookingsPerCarrier = n
	return nil
}

func (s *Slot) setPriority(p Priority) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.priority = p
	return nil
}

func (s *Slot) setCarrier(carrierID *kernel.UUID) error {
	if carrierID == nil {
		s.carrierID = nil
		return nil
	}
	return s.AssignCarrier(*carrierID)
}
