package commands

import (
	"context"
	"fmt"

	"optideliver/internal/core/domain/model/slot"

	"go.uber.org/zap"
)

type DeleteSlotCommandHandler struct {
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewDeleteSlotCommandHandler(uowFactory UoWFactory, logger *zap.Logger) DeleteSlotCommandHandler {
	return DeleteSlotCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "delete_slot")),
	}
}

// Handle returns slot.ErrSlotHasBookings when orders are bound and cascade
// was not requested.
func (h DeleteSlotCommandHandler) Handle(ctx context.Context, cmd DeleteSlotCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Principal().RequireAdmin("delete"); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	slots, orders := uow.SlotRepository(), uow.OrderRepository()
	if _, err := slots.Get(ctx, cmd.SlotID()); err != nil {
		return err
	}

	bound, err := orders.CountBySlot(ctx, cmd.SlotID())
	if err != nil {
		return err
	}

	if bound > 0 {
		if !cmd.Cascade() {
			return fmt.Errorf("%w: %d orders", slot.ErrSlotHasBookings, bound)
		}
		cleared, clearErr := orders.ClearSlot(ctx, cmd.SlotID())
		if clearErr != nil {
			return clearErr
		}
		h.logger.Info("cleared bindings of deleted slot",
			zap.Stringer("slot_id", cmd.SlotID()),
			zap.Int64("orders", cleared),
		)
	}

	if err = slots.Delete(ctx, cmd.SlotID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
