package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrDeleteSlotCommandIsNotConstructed = errors.New(
	"DeleteSlotCommand must be created via NewDeleteSlotCommand constructor",
)

// DeleteSlotCommand removes a slot. Without cascade the slot must have no
// bound orders; with cascade their bindings are dropped in the same
// transaction and the orders return to the unbound state.
type DeleteSlotCommand struct {
	principal identity.Principal
	slotID    kernel.UUID
	cascade   bool

	guard guard.ConstructorGuard
}

func NewDeleteSlotCommand(principal identity.Principal, slotID kernel.UUID, cascade bool) (DeleteSlotCommand, error) {
	if err := slotID.Validate(); err != nil {
		return DeleteSlotCommand{}, err
	}

	return DeleteSlotCommand{
		principal: principal,
		slotID:    slotID,
		cascade:   cascade,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c DeleteSlotCommand) Validate() error {
	return c.guard.Validate(ErrDeleteSlotCommandIsNotConstructed)
}

func (c DeleteSlotCommand) Principal() identity.Principal {
	return c.principal
}

func (c DeleteSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c DeleteSlotCommand) Cascade() bool {
	return c.cascade
}
