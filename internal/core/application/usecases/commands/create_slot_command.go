package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

var ErrCreateSlotCommandIsNotConstructed = errors.New(
	"CreateSlotCommand must be created via NewCreateSlotCommand constructor",
)

// CreateSlotCommand opens a new bookable window for an area.
//
// Example:
//
//	cmd, err := NewCreateSlotCommand(admin, kernel.NewUUID(), "north",
//	    start, start.Add(2*time.Hour), 10, "high", 0, nil)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type CreateSlotCommand struct {
	principal             identity.Principal
	slotID                kernel.UUID
	area                  string
	window                slot.Window
	capacity              int
	priority              slot.Priority
	maxBookingsPerCarrier int
	available             *int

	guard guard.ConstructorGuard
}

// NewCreateSlotCommand validates the new slot. An empty priority means
// medium and a zero maxBookingsPerCarrier means the default limit. A nil
// available starts the slot at full capacity; a larger override is clamped
// to capacity when the slot is built.
func NewCreateSlotCommand(
	principal identity.Principal,
	slotID kernel.UUID,
	area string,
	start, end time.Time,
	capacity int,
	priority string,
	maxBookingsPerCarrier int,
	available *int,
) (CreateSlotCommand, error) {
	cmd := CreateSlotCommand{
		principal: principal,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSlotID(slotID),
		cmd.setArea(area),
		cmd.setWindow(start, end),
		cmd.setCapacity(capacity),
		cmd.setPriority(priority),
		cmd.setMaxBookingsPerCarrier(maxBookingsPerCarrier),
		cmd.setAvailable(available),
	); err != nil {
		return CreateSlotCommand{}, err
	}

	return cmd, nil
}

func (c CreateSlotCommand) Validate() error {
	return c.guard.Validate(ErrCreateSlotCommandIsNotConstructed)
}

func (c CreateSlotCommand) Principal() identity.Principal {
	return c.principal
}

func (c CreateSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c CreateSlotCommand) Area() string {
	return c.area
}

func (c CreateSlotCommand) Window() slot.Window {
	return c.window
}

func (c CreateSlotCommand) Capacity() int {
	return c.capacity
}

func (c CreateSlotCommand) Priority() slot.Priority {
	return c.priority
}

func (c CreateSlotCommand) MaxBookingsPerCarrier() int {
	return c.maxBookingsPerCarrier
}

// Available returns the requested starting availability, or nil.
func (c CreateSlotCommand) Available() *int {
	return c.available
}

func (c *CreateSlotCommand) setSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.slotID = id
	return nil
}

func (c *CreateSlotCommand) setArea(area string) error {
	area = strings.TrimSpace(area)
	if area == "" {
		return errs.NewValueIsRequiredError("area")
	}
	c.area = area
	return nil
}

func (c *CreateSlotCommand) setWindow(start, end time.Time) error {
	w, err := slot.NewWindow(start, end)
	if err != nil {
		return err
	}
	c.window = w
	return nil
}

func (c *CreateSlotCommand) setCapacity(capacity int) error {
	if capacity < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"capacity",
			fmt.Errorf("%w: %d is negative", slot.ErrInvalidCapacity, capacity),
		)
	}
	c.capacity = capacity
	return nil
}

func (c *CreateSlotCommand) setPriority(priority string) error {
	p, err := slot.ParsePriority(priority)
	if err != nil {
		return err
	}
	c.priority = p
	return nil
}

func (c *CreateSlotCommand) setMaxBookingsPerCarrier(n int) error {
	if n < 0 {
		return errs.NewValueIsOutOfRangeError("maxBookingsPerCarrier", n, 1, nil)
	}
	if n == 0 {
		n = slot.DefaultMaxBookingsPerCarrier
	}
	c.maxBookingsPerCarrier = n
	return nil
}

func (c *CreateSlotCommand) setAvailable(available *int) error {
	if available == nil {
		return nil
	}
	if *available < 0 {
		return errs.NewValueIsOutOfRangeError("available", *available, 0, c.capacity)
	}
	v := *available
	c.available = &v
	return nil
}
