package commands

import (
	"context"

	"optideliver/internal/core/domain/model/slot"

	"go.uber.org/zap"
)

// UpdateSlotCommandHandler applies metadata changes inside one transaction
// so that a moved window and the orders' scheduled times never disagree.
type UpdateSlotCommandHandler struct {
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewUpdateSlotCommandHandler(uowFactory UoWFactory, logger *zap.Logger) UpdateSlotCommandHandler {
	return UpdateSlotCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "update_slot")),
	}
}

func (h UpdateSlotCommandHandler) Handle(ctx context.Context, cmd UpdateSlotCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Principal().RequireAdmin("update"); err != nil {
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

	previousStart := s.Window().Start()
	if err = applyChanges(s, cmd); err != nil {
		return err
	}

	if err = slots.UpdateMetadata(ctx, s); err != nil {
		return err
	}

	if newStart := s.Window().Start(); !newStart.Equal(previousStart) {
		moved, rescheduleErr := uow.OrderRepository().RescheduleBySlot(ctx, s.ID(), newStart)
		if rescheduleErr != nil {
			return rescheduleErr
		}
		h.logger.Info("slot rescheduled",
			zap.Stringer("slot_id", s.ID()),
			zap.Time("start", newStart),
			zap.Int64("orders_moved", moved),
		)
	}

	return uow.Commit(ctx)
}

func applyChanges(s *slot.Slot, cmd UpdateSlotCommand) error {
	changes := cmd.Changes()

	if changes.Area != nil {
		if err := s.MoveToArea(*changes.Area); err != nil {
			return err
		}
	}

	if changes.Start != nil || changes.End != nil {
		start, end := s.Window().Start(), s.Window().End()
		if changes.Start != nil {
			start = *changes.Start
		}
		if changes.End != nil {
			end = *changes.End
		}
		w, err := slot.NewWindow(start, end)
		if err != nil {
			return err
		}
		if err = s.Reschedule(w); err != nil {
			return err
		}
	}

	if changes.IsActive != nil {
		if *changes.IsActive {
			s.Activate()
		} else {
			s.Deactivate()
		}
	}

	if p := cmd.Priority(); p != nil {
		if err := s.SetPriority(*p); err != nil {
			return err
		}
	}

	if changes.MaxBookingsPerCarrier != nil {
		if err := s.SetMaxBookingsPerCarrier(*changes.MaxBookingsPerCarrier); err != nil {
			return err
		}
	}

	return nil
}
