package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels a Pending or Confirmed order and gives back
// its slot.
type CancelOrderCommand struct {
	principal identity.Principal
	orderID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(principal identity.Principal, orderID kernel.UUID) (CancelOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CancelOrderCommand{}, err
	}

	return CancelOrderCommand{
		principal: principal,
		orderID:   orderID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Principal() identity.Principal {
	return c.principal
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
