package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand registers an order for the calling sender, optionally
// booking a slot for it in the same step.
//
// Example:
//
//	addr, _ := order.NewAddress("north", "110001", order.Residential, nil)
//	cmd, err := NewCreateOrderCommand(sender, kernel.NewUUID(), addr, &slotID)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	principal identity.Principal
	orderID   kernel.UUID
	address   order.Address
	slotID    *kernel.UUID

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks the identifiers and the address. slotID may
// be nil to create an unbound order.
func NewCreateOrderCommand(
	principal identity.Principal,
	orderID kernel.UUID,
	address order.Address,
	slotID *kernel.UUID,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		principal: principal,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setAddress(address),
		cmd.setSlotID(slotID),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Principal() identity.Principal {
	return c.principal
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Address() order.Address {
	return c.address
}

// SlotID is the slot to book, or nil.
func (c CreateOrderCommand) SlotID() *kernel.UUID {
	return c.slotID
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setAddress(address order.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *CreateOrderCommand) setSlotID(slotID *kernel.UUID) error {
	if slotID == nil {
		return nil
	}
	if err := slotID.Validate(); err != nil {
		return err
	}

	c.slotID = slotID
	return nil
}
