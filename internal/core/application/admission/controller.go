// Package admission decides whether a slot can take one more booking.
//
// Every decision is made by the store in a single conditional write, so two
// callers racing for the last unit can never both succeed. The controller
// only classifies failed writes, records metrics and appends audit events.
// It holds no request state: principals are checked by the callers.
package admission

import (
	"context"
	"errors"
	"fmt"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Controller implements Reserve, Release and AdjustCapacity over a
// ports.SlotRepository. It is safe for concurrent use when the repository is.
type Controller struct {
	slots   ports.SlotRepository
	events  ports.SlotEventRecorder
	metrics *metrics.Metrics
	clock   kernel.Clock
	logger  *zap.Logger
}

// NewController wires a controller. events and m may be nil.
func NewController(
	slots ports.SlotRepository,
	events ports.SlotEventRecorder,
	m *metrics.Metrics,
	clock kernel.Clock,
	logger *zap.Logger,
) *Controller {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		slots:   slots,
		events:  events,
		metrics: m,
		clock:   clock,
		logger:  logger.With(zap.String("component", "admission")),
	}
}

// Reserve takes one unit of capacity and returns the slot as it is after
// the decrement.
//
// Errors: slot.ErrSlotNotFound, slot.ErrSlotInactive, slot.ErrSlotFull
// (including slot.ErrCarrierLimitReached).
func (c *Controller) Reserve(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	reserved, ok, err := c.slots.TryReserve(ctx, slotID)
	if err != nil {
		c.metrics.ObserveReservation(metrics.OutcomeError)
		return nil, fmt.Errorf("reserve slot %s: %w", slotID, err)
	}
	if ok {
		c.metrics.ObserveReservation(metrics.OutcomeSuccess)
		c.record(ctx, reserved, ports.SlotEventReserved, "")
		return reserved, nil
	}

	reason := c.classify(ctx, slotID)
	c.metrics.ObserveReservation(outcomeOf(reason))
	c.logger.Debug("reservation denied",
		zap.Stringer("slot_id", slotID),
		zap.Error(reason),
	)
	c.recordDenied(ctx, slotID, reason)

	return nil, reason
}

// Release returns one unit of capacity, never exceeding capacity. Inactive
// slots are released too.
//
// Errors: slot.ErrSlotNotFound.
func (c *Controller) Release(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	return c.release(ctx, slotID, false)
}

// Compensate is Release issued to undo a reservation whose follow-up write
// failed. It is counted separately so leaked-then-repaired units stay visible.
func (c *Controller) Compensate(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	return c.release(ctx, slotID, true)
}

// AdjustCapacity replaces the capacity and clamps availability to it.
// Raising capacity does not add availability.
//
// Errors: slot.ErrSlotNotFound, slot.ErrInvalidCapacity.
func (c *Controller) AdjustCapacity(ctx context.Context, slotID kernel.UUID, capacity int) (*slot.Slot, error) {
	if capacity < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"capacity",
			fmt.Errorf("%w: %d is negative", slot.ErrInvalidCapacity, capacity),
		)
	}

	adjusted, err := c.slots.SetCapacity(ctx, slotID, capacity)
	if err != nil {
		return nil, fmt.Errorf("adjust capacity of slot %s: %w", slotID, err)
	}

	c.metrics.ObserveCapacityAdjustment()
	c.record(ctx, adjusted, ports.SlotEventCapacitySet, "")
	c.logger.Info("slot capacity adjusted",
		zap.Stringer("slot_id", slotID),
		zap.Int("capacity", adjusted.Capacity()),
		zap.Int("available", adjusted.Available()),
	)

	return adjusted, nil
}

func (c *Controller) release(ctx context.Context, slotID kernel.UUID, compensating bool) (*slot.Slot, error) {
	released, err := c.slots.Release(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("release slot %s: %w", slotID, err)
	}

	c.metrics.ObserveRelease(compensating)
	kind := ports.SlotEventReleased
	if compensating {
		kind = ports.SlotEventCompensated
		c.logger.Warn("reservation compensated",
			zap.Stringer("slot_id", slotID),
			zap.Int("available", released.Available()),
		)
	}
	c.record(ctx, released, kind, "")

	return released, nil
}

// classify reads the slot after a rejected reservation. The answer reflects
// the state at read time, which may differ from the state at write time; a
// slot that looks reservable again is still reported as full.
func (c *Controller) classify(ctx context.Context, slotID kernel.UUID) error {
	current, err := c.slots.Get(ctx, slotID)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return slot.ErrSlotNotFound
		}
		return fmt.Errorf("classify rejected reservation of slot %s: %w", slotID, err)
	}

	if reason := current.CanReserve(); reason != nil {
		return reason
	}
	return slot.ErrSlotFull
}

func outcomeOf(reason error) string {
	switch {
	case errors.Is(reason, slot.ErrSlotNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(reason, slot.ErrSlotInactive):
		return metrics.OutcomeInactive
	case errors.Is(reason, slot.ErrCarrierLimitReached):
		return metrics.OutcomeCarrierLimit
	case errors.Is(reason, slot.ErrSlotFull):
		return metrics.OutcomeFull
	default:
		return metrics.OutcomeError
	}
}

func (c *Controller) record(ctx context.Context, s *slot.Slot, kind ports.SlotEventKind, reason string) {
	if c.events == nil {
		return
	}

	event := ports.SlotEvent{
		SlotID:     s.ID(),
		Kind:       kind,
		Capacity:   s.Capacity(),
		Available:  s.Available(),
		Reason:     reason,
		OccurredAt: c.clock.Now(),
	}
	if err := c.events.Record(ctx, event); err != nil {
		c.logger.Warn("failed to record slot event",
			zap.Stringer("slot_id", s.ID()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (c *Controller) recordDenied(ctx context.Context, slotID kernel.UUID, reason error) {
	switch outcomeOf(reason) {
	case metrics.OutcomeNotFound, metrics.OutcomeError:
		return
	}
	if c.events == nil {
		return
	}

	event := ports.SlotEvent{
		SlotID:     slotID,
		Kind:       ports.SlotEventReserveDenied,
		Reason:     reason.Error(),
		OccurredAt: c.clock.Now(),
	}
	if err := c.events.Record(ctx, event); err != nil {
		c.logger.Warn("failed to record slot event",
			zap.Stringer("slot_id", slotID),
			zap.String("kind", string(ports.SlotEventReserveDenied)),
			zap.Error(err),
		)
	}
}
