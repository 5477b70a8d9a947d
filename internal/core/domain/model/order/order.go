package order

import (
	"errors"
	"time"

	"optideliver/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyBound  = errors.New("order is already bound to another slot")
	ErrOrderNotBindable   = errors.New("order cannot change its slot binding")
	ErrOrderSlotNotLoaded = errors.New("order slot binding requires a scheduled delivery time")
)

// Order is the shipment aggregate as far as slot accounting is concerned.
//
// Order follows these invariants:
//   - Must have a valid identifier, sender and address
//   - Holds at most one slot binding; the binding and its scheduled delivery
//     time are set and cleared together
//   - Only Pending or Confirmed orders change their binding
//
// The slot's capacity counter is not touched here. Callers pair every
// BindSlot with a reservation and every UnbindSlot with a release.
type Order struct {
	id                  kernel.UUID
	senderID            kernel.UUID
	address             Address
	status              Status
	slotID              *kernel.UUID
	scheduledDeliveryAt *time.Time
	createdAt           time.Time

	isConstructed bool
}

// NewOrder creates a Pending order with no slot binding.
//
// Example:
//
//	addr, _ := order.NewAddress("north", "110001", order.Residential, nil)
//	o, err := order.NewOrder(kernel.NewUUID(), principal.UserID(), addr)
//	if err != nil {
//	    return err
//	}
func NewOrder(id, senderID kernel.UUID, address Address) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setSender(senderID),
		o.setAddress(address),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreParams carries a persisted order back into the domain.
type RestoreParams struct {
	ID                  kernel.UUID
	SenderID            kernel.UUID
	Address             Address
	Status              Status
	SlotID              *kernel.UUID
	ScheduledDeliveryAt *time.Time
	CreatedAt           time.Time
}

// RestoreOrder rebuilds an order from storage, checking that the binding and
// its scheduled time are either both present or both absent.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o := &Order{
		slotID:              p.SlotID,
		scheduledDeliveryAt: p.ScheduledDeliveryAt,
		createdAt:           p.CreatedAt,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setSender(p.SenderID),
		o.setAddress(p.Address),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = p.Status

	if (p.SlotID == nil) != (p.ScheduledDeliveryAt == nil) {
		return nil, ErrOrderSlotNotLoaded
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) SenderID() kernel.UUID {
	return o.senderID
}

func (o *Order) Address() Address {
	return o.address
}

func (o *Order) Status() Status {
	return o.status
}

// SlotID returns the bound slot, or nil.
func (o *Order) SlotID() *kernel.UUID {
	return o.slotID
}

// ScheduledDeliveryAt is the start of the bound slot, or nil.
func (o *Order) ScheduledDeliveryAt() *time.Time {
	return o.scheduledDeliveryAt
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// IsBoundTo reports whether the order currently holds slotID.
func (o *Order) IsBoundTo(slotID kernel.UUID) bool {
	return o.slotID != nil && o.slotID.IsEqual(slotID)
}

// BindSlot records the binding and derives the scheduled delivery time from
// the slot start. Binding to the slot already held is a no-op; binding while
// holding a different slot fails with ErrOrderAlreadyBound.
func (o *Order) BindSlot(slotID kernel.UUID, slotStart time.Time) error {
	if err := slotID.Validate(); err != nil {
		return err
	}
	if o.IsBoundTo(slotID) {
		return nil
	}
	if o.slotID != nil {
		return ErrOrderAlreadyBound
	}
	if err := o.status.ValidateBind(); err != nil {
		return err
	}

	o.slotID = &slotID
	o.scheduledDeliveryAt = &slotStart
	return nil
}

// UnbindSlot clears the binding and returns the slot it held, or nil if
// there was none. Final orders keep no binding to clear, so unbinding them
// is allowed.
func (o *Order) UnbindSlot() *kernel.UUID {
	previous := o.slotID
	o.slotID = nil
	o.scheduledDeliveryAt = nil
	return previous
}

// Cancel moves the order to Cancelled. The slot binding is left for the
// caller to release.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setSender(senderID kernel.UUID) error {
	if err := senderID.Validate(); err != nil {
		return err
	}
	o.senderID = senderID
	return nil
}

func (o *Order) setAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}
