package commands

import (
	"context"

	"optideliver/internal/core/domain/model/slot"
)

// CreateSlotCommandHandler persists new slots. Only administrators may
// create slots.
type CreateSlotCommandHandler struct {
	uowFactory UoWFactory
}

func NewCreateSlotCommandHandler(uowFactory UoWFactory) CreateSlotCommandHandler {
	return CreateSlotCommandHandler{uowFactory: uowFactory}
}

// Handle creates an active slot. Availability starts at capacity unless the
// command overrides it.
func (h CreateSlotCommandHandler) Handle(ctx context.Context, cmd CreateSlotCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Principal().RequireAdmin("create"); err != nil {
		return err
	}

	s, err := slot.NewSlot(cmd.SlotID(), cmd.Area(), cmd.Window(), cmd.Capacity())
	if err != nil {
		return err
	}
	if err = s.SetPriority(cmd.Priority()); err != nil {
		return err
	}
	if err = s.SetMaxBookingsPerCarrier(cmd.MaxBookingsPerCarrier()); err != nil {
		return err
	}
	if available := cmd.Available(); available != nil {
		if err = s.OverrideAvailable(*available); err != nil {
			return err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.SlotRepository().Add(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
