package commands

import (
	"errors"
	"time"

	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

var ErrExpireSlotsCommandIsNotConstructed = errors.New(
	"ExpireSlotsCommand must be created via NewExpireSlotsCommand constructor",
)

// ExpireSlotsCommand deactivates every slot whose window ended before the
// given instant.
type ExpireSlotsCommand struct {
	before time.Time

	guard guard.ConstructorGuard
}

func NewExpireSlotsCommand(before time.Time) (ExpireSlotsCommand, error) {
	if before.IsZero() {
		return ExpireSlotsCommand{}, errs.NewValueIsRequiredError("before")
	}

	return ExpireSlotsCommand{
		before: before,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireSlotsCommand) Validate() error {
	return c.guard.Validate(ErrExpireSlotsCommandIsNotConstructed)
}

func (c ExpireSlotsCommand) Before() time.Time {
	return c.before
}
