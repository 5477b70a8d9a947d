package commands

import (
	"errors"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

var ErrUpdateSlotCommandIsNotConstructed = errors.New(
	"UpdateSlotCommand must be created via NewUpdateSlotCommand constructor",
)

// SlotChanges lists the metadata to change. Nil fields stay as they are.
// Capacity is changed through AdjustSlotCapacityCommand only.
type SlotChanges struct {
	Area                  *string
	Start                 *time.Time
	End                   *time.Time
	IsActive              *bool
	Priority              *string
	MaxBookingsPerCarrier *int
}

func (c SlotChanges) isEmpty() bool {
	return c.Area == nil && c.Start == nil && c.End == nil &&
		c.IsActive == nil && c.Priority == nil && c.MaxBookingsPerCarrier == nil
}

// UpdateSlotCommand edits slot metadata. Moving the window also moves the
// scheduled delivery time of every order bound to the slot.
type UpdateSlotCommand struct {
	principal identity.Principal
	slotID    kernel.UUID
	changes   SlotChanges
	priority  *slot.Priority

	guard guard.ConstructorGuard
}

func NewUpdateSlotCommand(principal identity.Principal, slotID kernel.UUID, changes SlotChanges) (UpdateSlotCommand, error) {
	cmd := UpdateSlotCommand{
		principal: principal,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSlotID(slotID),
		cmd.setChanges(changes),
	); err != nil {
		return UpdateSlotCommand{}, err
	}

	return cmd, nil
}

func (c UpdateSlotCommand) Validate() error {
	return c.guard.Validate(ErrUpdateSlotCommandIsNotConstructed)
}

func (c UpdateSlotCommand) Principal() identity.Principal {
	return c.principal
}

func (c UpdateSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c UpdateSlotCommand) Changes() SlotChanges {
	return c.changes
}

// Priority is the parsed priority change, or nil.
func (c UpdateSlotCommand) Priority() *slot.Priority {
	return c.priority
}

func (c *UpdateSlotCommand) setSlotID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.slotID = id
	return nil
}

func (c *UpdateSlotCommand) setChanges(changes SlotChanges) error {
	if changes.isEmpty() {
		return errs.NewValueIsRequiredError("changes")
	}
	if changes.Area != nil && strings.TrimSpace(*changes.Area) == "" {
		return errs.NewValueIsRequiredError("area")
	}
	if changes.Priority != nil {
		p, err := slot.ParsePriority(*changes.Priority)
		if err != nil {
			return err
		}
		c.priority = &p
	}
	if changes.MaxBookingsPerCarrier != nil && *changes.MaxBookingsPerCarrier < 1 {
		return errs.NewValueIsOutOfRangeError("maxBookingsPerCarrier", *changes.MaxBookingsPerCarrier, 1, nil)
	}

	c.changes = changes
	return nil
}
