package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrAssignCarrierCommandIsNotConstructed = errors.New(
	"AssignCarrierCommand must be created via NewAssignCarrierCommand constructor",
)

// AssignCarrierCommand puts a carrier (postman) in charge of a slot, or
// removes the current one when carrierID is nil. While a carrier is
// assigned, the slot admits at most maxBookingsPerCarrier bookings.
type AssignCarrierCommand struct {
	principal identity.Principal
	slotID    kernel.UUID
	carrierID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignCarrierCommand(
	principal identity.Principal,
	slotID kernel.UUID,
	carrierID *kernel.UUID,
) (AssignCarrierCommand, error) {
	if err := slotID.Validate(); err != nil {
		return AssignCarrierCommand{}, err
	}
	if carrierID != nil {
		if err := carrierID.Validate(); err != nil {
			return AssignCarrierCommand{}, err
		}
	}

	return AssignCarrierCommand{
		principal: principal,
		slotID:    slotID,
		carrierID: carrierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AssignCarrierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCarrierCommandIsNotConstructed)
}

func (c AssignCarrierCommand) Principal() identity.Principal {
	return c.principal
}

func (c AssignCarrierCommand) SlotID() kernel.UUID {
	return c.slotID
}

// CarrierID is nil when the command unassigns.
func (c AssignCarrierCommand) CarrierID() *kernel.UUID {
	return c.carrierID
}
