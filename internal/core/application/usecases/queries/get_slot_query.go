package queries

import (
	"errors"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrGetSlotQueryIsNotConstructed = errors.New(
	"GetSlotQuery must be created via NewGetSlotQuery constructor",
)

type GetSlotQuery struct {
	slotID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetSlotQuery(slotID kernel.UUID) (GetSlotQuery, error) {
	if err := slotID.Validate(); err != nil {
		return GetSlotQuery{}, err
	}
	return GetSlotQuery{slotID: slotID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetSlotQuery) Validate() error {
	return q.guard.Validate(ErrGetSlotQueryIsNotConstructed)
}

func (q GetSlotQuery) SlotID() kernel.UUID {
	return q.slotID
}
