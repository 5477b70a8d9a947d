package commands

import (
	"context"

	"optideliver/internal/pkg/metrics"

	"go.uber.org/zap"
)

type ExpireSlotsCommandHandler struct {
	uowFactory UoWFactory
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewExpireSlotsCommandHandler(uowFactory UoWFactory, m *metrics.Metrics, logger *zap.Logger) ExpireSlotsCommandHandler {
	return ExpireSlotsCommandHandler{
		uowFactory: uowFactory,
		metrics:    m,
		logger:     logger.With(zap.String("component", "slot_expiry")),
	}
}

// Handle returns the number of slots deactivated. Bindings of expired slots
// are kept: their orders are already scheduled.
func (h ExpireSlotsCommandHandler) Handle(ctx context.Context, cmd ExpireSlotsCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	n, err := h.uowFactory.Create().SlotRepository().DeactivateEndedBefore(ctx, cmd.Before())
	if err != nil {
		return 0, err
	}

	h.metrics.ObserveExpiredSlots(n)
	if n > 0 {
		h.logger.Info("expired slots deactivated", zap.Int64("count", n))
	}

	return n, nil
}
