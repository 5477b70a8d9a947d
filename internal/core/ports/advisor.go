package ports

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"
)

// SlotAdvisor ranks candidate slots for a recipient. Implementations must
// always return a ranking; upstream trouble is absorbed by falling back to a
// local heuristic. Advice never gates admission.
type SlotAdvisor interface {
	Rank(ctx context.Context, candidates []prediction.Candidate, pctx prediction.Context) []prediction.Prediction

	// RecordPreference reports a chosen slot back to the prediction service.
	RecordPreference(ctx context.Context, feedback prediction.Feedback) error
}

// RankingCache stores rankings keyed by the inputs that produced them.
// A miss is reported with ok == false and a nil error.
type RankingCache interface {
	Get(ctx context.Context, key string) ([]prediction.Prediction, bool, error)
	Set(ctx context.Context, key string, predictions []prediction.Prediction, ttl time.Duration) error
}

// SlotEventKind names a capacity change recorded in the audit trail.
type SlotEventKind string

const (
	SlotEventReserved      SlotEventKind = "reserved"
	SlotEventReleased      SlotEventKind = "released"
	SlotEventCompensated   SlotEventKind = "compensated"
	SlotEventCapacitySet   SlotEventKind = "capacity_set"
	SlotEventReconciled    SlotEventKind = "reconciled"
	SlotEventReserveDenied SlotEventKind = "reserve_denied"
)

// SlotEvent is one entry of the capacity audit trail.
type SlotEvent struct {
	SlotID     kernel.UUID
	Kind       SlotEventKind
	Capacity   int
	Available  int
	Reason     string
	OccurredAt time.Time
}

// SlotEventRecorder appends capacity events to an audit trail. Recording is
// best effort: callers log failures and carry on.
type SlotEventRecorder interface {
	Record(ctx context.Context, event SlotEvent) error
}
