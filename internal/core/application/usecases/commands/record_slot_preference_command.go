package commands

import (
	"errors"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/pkg/guard"
)

var ErrRecordSlotPreferenceCommandIsNotConstructed = errors.New(
	"RecordSlotPreferenceCommand must be created via NewRecordSlotPreferenceCommand constructor",
)

// RecordSlotPreferenceCommand tells the advisor which slot a recipient chose.
// When orderID is set, the order's address fills the hints the caller left
// empty.
type RecordSlotPreferenceCommand struct {
	principal identity.Principal
	slotID    kernel.UUID
	orderID   *kernel.UUID
	hints     prediction.Context

	guard guard.ConstructorGuard
}

func NewRecordSlotPreferenceCommand(
	principal identity.Principal,
	slotID kernel.UUID,
	orderID *kernel.UUID,
	hints prediction.Context,
) (RecordSlotPreferenceCommand, error) {
	if err := slotID.Validate(); err != nil {
		return RecordSlotPreferenceCommand{}, err
	}
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return RecordSlotPreferenceCommand{}, err
		}
	}
	if hints.Location != nil {
		if err := hints.Location.Validate(); err != nil {
			return RecordSlotPreferenceCommand{}, err
		}
	}

	return RecordSlotPreferenceCommand{
		principal: principal,
		slotID:    slotID,
		orderID:   orderID,
		hints:     hints,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RecordSlotPreferenceCommand) Validate() error {
	return c.guard.Validate(ErrRecordSlotPreferenceCommandIsNotConstructed)
}

func (c RecordSlotPreferenceCommand) Principal() identity.Principal {
	return c.principal
}

func (c RecordSlotPreferenceCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c RecordSlotPreferenceCommand) OrderID() *kernel.UUID {
	return c.orderID
}

func (c RecordSlotPreferenceCommand) Hints() prediction.Context {
	return c.hints
}
