package commands

import (
	"context"
	"sync"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ReconcileSlotCapacityResult summarises one pass.
type ReconcileSlotCapacityResult struct {
	// Suspected slots drifted for the first time and are held until the next pass.
	Suspected int
	// Confirmed slots drifted in two consecutive passes without being written in between.
	Confirmed int
	// Fixed slots had their availability rewritten.
	Fixed int
}

type driftObservation struct {
	available int
	expected  int
	updatedAt time.Time
}

// ReconcileSlotCapacityCommandHandler compares each quiet slot's availability
// with the one implied by its bound orders. A leaked reservation (a crash
// between reserve and bind, or a failed compensation) shows up as a slot
// with fewer units available than expected.
//
// A mismatch is acted upon only when it is seen in two consecutive passes
// with the same availability and the same updated_at, which filters out
// bookings that were between their reserve and bind steps during the first
// pass. The fix itself is a compare-and-set, so a booking that lands
// between the read and the write wins.
//
// The handler keeps observations between passes and must be reused by the
// scheduler rather than created per run.
type ReconcileSlotCapacityCommandHandler struct {
	uowFactory UoWFactory
	events     ports.SlotEventRecorder
	metrics    *metrics.Metrics
	clock      kernel.Clock
	grace      time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	seen map[kernel.UUID]driftObservation
}

func NewReconcileSlotCapacityCommandHandler(
	uowFactory UoWFactory,
	events ports.SlotEventRecorder,
	m *metrics.Metrics,
	clock kernel.Clock,
	grace time.Duration,
	logger *zap.Logger,
) *ReconcileSlotCapacityCommandHandler {
	return &ReconcileSlotCapacityCommandHandler{
		uowFactory: uowFactory,
		events:     events,
		metrics:    m,
		clock:      clock,
		grace:      grace,
		logger:     logger.With(zap.String("component", "reconciliation")),
		seen:       make(map[kernel.UUID]driftObservation),
	}
}

func (h *ReconcileSlotCapacityCommandHandler) Handle(
	ctx context.Context,
	cmd ReconcileSlotCapacityCommand,
) (ReconcileSlotCapacityResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcileSlotCapacityResult{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	slots := h.uowFactory.Create().SlotRepository()

	now := h.clock.Now()
	drifts, err := slots.ListDrift(ctx, now.Add(-h.grace))
	if err != nil {
		return ReconcileSlotCapacityResult{}, err
	}

	var result ReconcileSlotCapacityResult
	next := make(map[kernel.UUID]driftObservation, len(drifts))

	for _, d := range drifts {
		observed := driftObservation{
			available: d.Available,
			expected:  d.Expected,
			updatedAt: d.UpdatedAt,
		}

		previous, ok := h.seen[d.SlotID]
		if !ok || previous.available != observed.available ||
			previous.expected != observed.expected ||
			!previous.updatedAt.Equal(observed.updatedAt) {
			result.Suspected++
			next[d.SlotID] = observed
			continue
		}

		result.Confirmed++
		h.logger.Warn("slot availability drifted from bound orders",
			zap.Stringer("slot_id", d.SlotID),
			zap.Int("capacity", d.Capacity),
			zap.Int("available", d.Available),
			zap.Int("expected", d.Expected),
			zap.Int("bound_orders", d.Bound),
			zap.Int("difference", d.Difference()),
			zap.Bool("apply", cmd.Apply()),
		)

		if !cmd.Apply() {
			next[d.SlotID] = observed
			continue
		}

		written, casErr := slots.CompareAndSetAvailable(ctx, d.SlotID, d.Available, d.Expected, d.UpdatedAt)
		if casErr != nil {
			h.logger.Error("failed to correct slot availability",
				zap.Stringer("slot_id", d.SlotID),
				zap.Error(casErr),
			)
			next[d.SlotID] = observed
			continue
		}
		if !written {
			h.logger.Info("slot changed before correction, skipping",
				zap.Stringer("slot_id", d.SlotID),
			)
			continue
		}

		result.Fixed++
		h.metrics.ObserveReconciliationFix()
		h.recordFix(ctx, d, now)
	}

	h.seen = next
	h.metrics.SetReconciliationDrift(result.Confirmed - result.Fixed)

	if result.Confirmed > 0 || result.Suspected > 0 {
		h.logger.Info("reconciliation pass finished",
			zap.Int("suspected", result.Suspected),
			zap.Int("confirmed", result.Confirmed),
			zap.Int("fixed", result.Fixed),
		)
	}

	return result, nil
}

func (h *ReconcileSlotCapacityCommandHandler) recordFix(ctx context.Context, d ports.SlotDrift, at time.Time) {
	if h.events == nil {
		return
	}

	event := ports.SlotEvent{
		SlotID:     d.SlotID,
		Kind:       ports.SlotEventReconciled,
		Capacity:   d.Capacity,
		Available:  d.Expected,
		Reason:     "availability rebuilt from bound orders",
		OccurredAt: at,
	}
	if err := h.events.Record(ctx, event); err != nil {
		h.logger.Warn("failed to record slot event",
			zap.Stringer("slot_id", d.SlotID),
			zap.Error(err),
		)
	}
}
