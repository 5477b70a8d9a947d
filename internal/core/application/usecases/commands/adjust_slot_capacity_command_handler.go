package commands

import (
	"context"

	"optideliver/internal/core/domain/model/slot"

	"go.uber.org/zap"
)

// AdjustSlotCapacityResult reports the adjusted slot and how many bound
// orders no longer fit under the new capacity.
type AdjustSlotCapacityResult struct {
	Slot       *slot.Slot
	BoundCount int
	Overbooked int
}

// AdjustSlotCapacityCommandHandler changes capacity through the admission
// controller. Orders already bound keep their binding even when the new
// capacity is lower than their number; the excess is reported and logged
// for dispatchers to resolve.
type AdjustSlotCapacityCommandHandler struct {
	admission  SlotAdmission
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewAdjustSlotCapacityCommandHandler(
	admission SlotAdmission,
	uowFactory UoWFactory,
	logger *zap.Logger,
) AdjustSlotCapacityCommandHandler {
	return AdjustSlotCapacityCommandHandler{
		admission:  admission,
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "adjust_slot_capacity")),
	}
}

func (h AdjustSlotCapacityCommandHandler) Handle(
	ctx context.Context,
	cmd AdjustSlotCapacityCommand,
) (AdjustSlotCapacityResult, error) {
	if err := cmd.Validate(); err != nil {
		return AdjustSlotCapacityResult{}, err
	}
	if err := cmd.Principal().RequireAdmin("change capacity of"); err != nil {
		return AdjustSlotCapacityResult{}, err
	}

	adjusted, err := h.admission.AdjustCapacity(ctx, cmd.SlotID(), cmd.Capacity())
	if err != nil {
		return AdjustSlotCapacityResult{}, err
	}

	bound, err := h.uowFactory.Create().OrderRepository().CountBySlot(ctx, cmd.SlotID())
	if err != nil {
		// the capacity change is already in place
		h.logger.Error("failed to count bound orders after capacity change",
			zap.Stringer("slot_id", cmd.SlotID()),
			zap.Error(err),
		)
		return AdjustSlotCapacityResult{Slot: adjusted}, nil
	}

	result := AdjustSlotCapacityResult{
		Slot:       adjusted,
		BoundCount: bound,
		Overbooked: adjusted.Overbooked(bound),
	}
	if result.Overbooked > 0 {
		h.logger.Warn("slot is overbooked after capacity change",
			zap.Stringer("slot_id", cmd.SlotID()),
			zap.Int("capacity", adjusted.Capacity()),
			zap.Int("bound_orders", bound),
			zap.Int("overbooked", result.Overbooked),
		)
	}

	return result, nil
}
