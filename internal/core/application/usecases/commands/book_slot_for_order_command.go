package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrBookSlotForOrderCommandIsNotConstructed = errors.New(
	"BookSlotForOrderCommand must be created via NewBookSlotForOrderCommand constructor",
)

// BookSlotForOrderCommand binds an existing order to a slot.
type BookSlotForOrderCommand struct {
	principal identity.Principal
	orderID   kernel.UUID
	slotID    kernel.UUID

	guard guard.ConstructorGuard
}

func NewBookSlotForOrderCommand(
	principal identity.Principal,
	orderID, slotID kernel.UUID,
) (BookSlotForOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), slotID.Validate()); err != nil {
		return BookSlotForOrderCommand{}, err
	}

	return BookSlotForOrderCommand{
		principal: principal,
		orderID:   orderID,
		slotID:    slotID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c BookSlotForOrderCommand) Validate() error {
	return c.guard.Validate(ErrBookSlotForOrderCommandIsNotConstructed)
}

func (c BookSlotForOrderCommand) Principal() identity.Principal {
	return c.principal
}

func (c BookSlotForOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c BookSlotForOrderCommand) SlotID() kernel.UUID {
	return c.slotID
}
