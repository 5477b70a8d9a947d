package commands

import (
	"context"
)

type AssignCarrierCommandHandler struct {
	uowFactory UoWFactory
}

func NewAssignCarrierCommandHandler(uowFactory UoWFactory) AssignCarrierCommandHandler {
	return AssignCarrierCommandHandler{uowFactory: uowFactory}
}

func (h AssignCarrierCommandHandler) Handle(ctx context.Context, cmd AssignCarrierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Principal().RequireAdmin("assign a carrier to"); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	slots := uow.SlotRepository()
	s, err := slots.Get(ctx, cmd.SlotID())
	if err != nil {
		return err
	}

	if carrierID := cmd.CarrierID(); carrierID != nil {
		if err = s.AssignCarrier(*carrierID); err != nil {
			return err
		}
	} else {
		s.UnassignCarrier()
	}

	if err = slots.UpdateMetadata(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
