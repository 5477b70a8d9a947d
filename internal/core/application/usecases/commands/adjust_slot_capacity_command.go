package commands

import (
	"errors"
	"fmt"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

var ErrAdjustSlotCapacityCommandIsNotConstructed = errors.New(
	"AdjustSlotCapacityCommand must be created via NewAdjustSlotCapacityCommand constructor",
)

// AdjustSlotCapacityCommand sets a new capacity for a slot.
type AdjustSlotCapacityCommand struct {
	principal identity.Principal
	slotID    kernel.UUID
	capacity  int

	guard guard.ConstructorGuard
}

func NewAdjustSlotCapacityCommand(
	principal identity.Principal,
	slotID kernel.UUID,
	capacity int,
) (AdjustSlotCapacityCommand, error) {
	if err := slotID.Validate(); err != nil {
		return AdjustSlotCapacityCommand{}, err
	}
	if capacity < 0 {
		return AdjustSlotCapacityCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"capacity",
			fmt.Errorf("%w: %d is negative", slot.ErrInvalidCapacity, capacity),
		)
	}

	return AdjustSlotCapacityCommand{
		principal: principal,
		slotID:    slotID,
		capacity:  capacity,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AdjustSlotCapacityCommand) Validate() error {
	return c.guard.Validate(ErrAdjustSlotCapacityCommandIsNotConstructed)
}

func (c AdjustSlotCapacityCommand) Principal() identity.Principal {
	return c.principal
}

func (c AdjustSlotCapacityCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c AdjustSlotCapacityCommand) Capacity() int {
	return c.capacity
}
