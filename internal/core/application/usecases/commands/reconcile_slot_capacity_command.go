package commands

import (
	"errors"

	"optideliver/internal/pkg/guard"
)

var ErrReconcileSlotCapacityCommandIsNotConstructed = errors.New(
	"ReconcileSlotCapacityCommand must be created via NewReconcileSlotCapacityCommand constructor",
)

// ReconcileSlotCapacityCommand runs one reconciliation pass. With apply
// unset, confirmed drift is only reported.
type ReconcileSlotCapacityCommand struct {
	apply bool

	guard guard.ConstructorGuard
}

func NewReconcileSlotCapacityCommand(apply bool) ReconcileSlotCapacityCommand {
	return ReconcileSlotCapacityCommand{
		apply: apply,
		guard: guard.NewConstructorGuard(),
	}
}

func (c ReconcileSlotCapacityCommand) Validate() error {
	return c.guard.Validate(ErrReconcileSlotCapacityCommandIsNotConstructed)
}

func (c ReconcileSlotCapacityCommand) Apply() bool {
	return c.apply
}
