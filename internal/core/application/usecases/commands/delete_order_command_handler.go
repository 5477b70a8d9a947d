package commands

import (
	"context"

	"optideliver/internal/core/domain/model/kernel"

	"go.uber.org/zap"
)

// DeleteOrderCommandHandler removes an order. A bound order gives its unit
// back after the delete is committed, whatever its status.
type DeleteOrderCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewDeleteOrderCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "delete_order")),
	}
}

func (h DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	o, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = cmd.Principal().CanAccessOrder(o.SenderID()); err != nil {
		return err
	}

	var released *kernel.UUID
	if slotID := o.SlotID(); slotID != nil {
		cleared, unbindErr := orders.UnbindSlot(ctx, o.ID(), *slotID)
		if unbindErr != nil {
			return unbindErr
		}
		if cleared {
			released = slotID
		}
	}

	if err = orders.Delete(ctx, o.ID()); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if released == nil {
		return nil
	}
	return releaseUnbound(ctx, h.admission, h.logger, o.ID(), *released)
}
