package commands

import (
	"context"
	"errors"
	"fmt"

	"optideliver/internal/core/domain/model/order"

	"go.uber.org/zap"
)

// CreateOrderCommandHandler creates orders. When a slot is requested the
// unit is reserved before the order is written, and returned if the write
// fails, so a stored binding always has a matching reservation.
type CreateOrderCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewCreateOrderCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "create_order")),
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Principal().CanCreateOrders(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Principal().UserID(), cmd.Address())
	if err != nil {
		return err
	}

	slotID := cmd.SlotID()
	if slotID == nil {
		return h.add(ctx, o)
	}

	reserved, err := h.admission.Reserve(ctx, *slotID)
	if err != nil {
		return err
	}

	if err = o.BindSlot(*slotID, reserved.Window().Start()); err == nil {
		err = h.add(ctx, o)
	}
	if err != nil {
		if _, compErr := h.admission.Compensate(ctx, *slotID); compErr != nil {
			h.logger.Error("failed to compensate reservation of unsaved order",
				zap.Stringer("order_id", o.ID()),
				zap.Stringer("slot_id", *slotID),
				zap.Error(compErr),
			)
			return errors.Join(err, fmt.Errorf("compensate reservation: %w", compErr))
		}
		return err
	}

	return nil
}

func (h CreateOrderCommandHandler) add(ctx context.Context, o *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
