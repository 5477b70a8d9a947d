package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"

	"go.uber.org/zap"
)

// BookSlotForOrderResult describes a successful booking.
type BookSlotForOrderResult struct {
	OrderID             kernel.UUID
	SlotID              kernel.UUID
	ScheduledDeliveryAt time.Time
	// Available is the remaining capacity right after the reservation. It is
	// -1 when the order already held the slot and nothing was reserved.
	Available int
	// AlreadyBound is set when the request repeated an earlier booking.
	AlreadyBound bool
}

// BookSlotForOrderCommandHandler reserves a unit of the slot and then binds
// the order to it. Reserve is the gate: a failed bind gives the unit back
// through compensation. A repeated request for the slot the order already
// holds succeeds without reserving again.
type BookSlotForOrderCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewBookSlotForOrderCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) BookSlotForOrderCommandHandler {
	return BookSlotForOrderCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "book_slot")),
	}
}

// Handle returns order.ErrOrderAlreadyBound when the order holds another
// slot, order.ErrOrderNotBindable for orders past Confirmed, and the
// admission errors of slot.Reserve otherwise.
func (h BookSlotForOrderCommandHandler) Handle(
	ctx context.Context,
	cmd BookSlotForOrderCommand,
) (BookSlotForOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return BookSlotForOrderResult{}, err
	}

	orders := h.uowFactory.Create().OrderRepository()

	o, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return BookSlotForOrderResult{}, err
	}
	if err = cmd.Principal().CanAccessOrder(o.SenderID()); err != nil {
		return BookSlotForOrderResult{}, err
	}
	if o.IsBoundTo(cmd.SlotID()) {
		return alreadyBooked(o), nil
	}
	if o.SlotID() != nil {
		return BookSlotForOrderResult{}, order.ErrOrderAlreadyBound
	}
	if err = o.Status().ValidateBind(); err != nil {
		return BookSlotForOrderResult{}, err
	}

	reserved, err := h.admission.Reserve(ctx, cmd.SlotID())
	if err != nil {
		return BookSlotForOrderResult{}, err
	}

	scheduledAt := reserved.Window().Start()
	bindErr := orders.BindSlot(ctx, cmd.OrderID(), cmd.SlotID(), scheduledAt)
	if bindErr == nil {
		h.logger.Info("slot booked",
			zap.Stringer("order_id", cmd.OrderID()),
			zap.Stringer("slot_id", cmd.SlotID()),
			zap.Int("available", reserved.Available()),
		)
		return BookSlotForOrderResult{
			OrderID:             cmd.OrderID(),
			SlotID:              cmd.SlotID(),
			ScheduledDeliveryAt: scheduledAt,
			Available:           reserved.Available(),
		}, nil
	}

	if _, compErr := h.admission.Compensate(ctx, cmd.SlotID()); compErr != nil {
		h.logger.Error("failed to compensate reservation after bind failure",
			zap.Stringer("order_id", cmd.OrderID()),
			zap.Stringer("slot_id", cmd.SlotID()),
			zap.NamedError("bind_error", bindErr),
			zap.Error(compErr),
		)
		return BookSlotForOrderResult{}, errors.Join(bindErr, fmt.Errorf("compensate reservation: %w", compErr))
	}

	// A concurrent request may have bound the same slot first; that booking
	// holds its own unit, so this one reports it rather than failing.
	if errors.Is(bindErr, order.ErrOrderAlreadyBound) {
		if current, getErr := orders.Get(ctx, cmd.OrderID()); getErr == nil && current.IsBoundTo(cmd.SlotID()) {
			return alreadyBooked(current), nil
		}
	}

	return BookSlotForOrderResult{}, bindErr
}

func alreadyBooked(o *order.Order) BookSlotForOrderResult {
	return BookSlotForOrderResult{
		OrderID:             o.ID(),
		SlotID:              *o.SlotID(),
		ScheduledDeliveryAt: *o.ScheduledDeliveryAt(),
		Available:           -1,
		AlreadyBound:        true,
	}
}
