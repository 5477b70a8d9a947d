package commands

import (
	"context"

	"optideliver/internal/core/domain/model/kernel"

	"go.uber.org/zap"
)

// UnbindSlotForOrderCommandHandler clears an order's binding and releases
// the unit it held. The release happens only when this call actually
// cleared the binding, so concurrent unbinds release once.
type UnbindSlotForOrderCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewUnbindSlotForOrderCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) UnbindSlotForOrderCommandHandler {
	return UnbindSlotForOrderCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "unbind_slot")),
	}
}

// Handle returns the slot that was released, or nil when the order held no
// binding.
func (h UnbindSlotForOrderCommandHandler) Handle(
	ctx context.Context,
	cmd UnbindSlotForOrderCommand,
) (*kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	orders := h.uowFactory.Create().OrderRepository()

	o, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = cmd.Principal().CanAccessOrder(o.SenderID()); err != nil {
		return nil, err
	}

	slotID := o.SlotID()
	if slotID == nil {
		return nil, nil
	}
	if err = o.Status().ValidateBind(); err != nil {
		return nil, err
	}

	cleared, err := orders.UnbindSlot(ctx, o.ID(), *slotID)
	if err != nil {
		return nil, err
	}
	if !cleared {
		// someone else unbound it and released the unit
		return nil, nil
	}

	if err = releaseUnbound(ctx, h.admission, h.logger, o.ID(), *slotID); err != nil {
		return nil, err
	}

	return slotID, nil
}

// releaseUnbound returns the unit of a binding that was just cleared. A
// failure leaves availability one short until reconciliation fixes it.
func releaseUnbound(
	ctx context.Context,
	admission SlotAdmission,
	logger *zap.Logger,
	orderID, slotID kernel.UUID,
) error {
	if _, err := admission.Release(ctx, slotID); err != nil {
		logger.Error("failed to release slot after unbinding order",
			zap.Stringer("order_id", orderID),
			zap.Stringer("slot_id", slotID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
