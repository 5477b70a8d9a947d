package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrUnbindSlotForOrderCommandIsNotConstructed = errors.New(
	"UnbindSlotForOrderCommand must be created via NewUnbindSlotForOrderCommand constructor",
)

// UnbindSlotForOrderCommand gives up the slot an order holds.
type UnbindSlotForOrderCommand struct {
	principal identity.Principal
	orderID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewUnbindSlotForOrderCommand(principal identity.Principal, orderID kernel.UUID) (UnbindSlotForOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return UnbindSlotForOrderCommand{}, err
	}

	return UnbindSlotForOrderCommand{
		principal: principal,
		orderID:   orderID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UnbindSlotForOrderCommand) Validate() error {
	return c.guard.Validate(ErrUnbindSlotForOrderCommandIsNotConstructed)
}

func (c UnbindSlotForOrderCommand) Principal() identity.Principal {
	return c.principal
}

func (c UnbindSlotForOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
