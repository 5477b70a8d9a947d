package commands

import (
	"context"

	"optideliver/internal/core/domain/model/kernel"

	"go.uber.org/zap"
)

type CancelOrderCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewCancelOrderCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "cancel_order")),
	}
}

// Handle writes the new status and clears the binding in one transaction,
// then releases the slot once the transaction is committed.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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
	if err = o.Cancel(); err != nil {
		return err
	}
	if err = orders.Update(ctx, o); err != nil {
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

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if released == nil {
		return nil
	}
	return releaseUnbound(ctx, h.admission, h.logger, o.ID(), *released)
}
