package queries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/domain/services"
	"optideliver/internal/core/ports"

	"go.uber.org/zap"
)

type availableSlotsFinder interface {
	Handle(ctx context.Context, query FindAvailableSlotsQuery) ([]SlotView, error)
}

// RankSlotsQueryHandler ranks the available slots through the advisor and
// caches the result. The cache is optional and its failures never fail the
// query.
type RankSlotsQueryHandler struct {
	finder    availableSlotsFinder
	advisor   ports.SlotAdvisor
	heuristic services.HeuristicSlotRanker
	cache     ports.RankingCache
	ttl       time.Duration
	clock     kernel.Clock
	logger    *zap.Logger
}

// NewRankSlotsQueryHandler accepts a nil cache or a non-positive ttl to
// disable caching. Slots the advisor leaves unscored are scored by the
// heuristic in loc.
func NewRankSlotsQueryHandler(
	finder availableSlotsFinder,
	advisor ports.SlotAdvisor,
	cache ports.RankingCache,
	ttl time.Duration,
	clock kernel.Clock,
	loc *time.Location,
	logger *zap.Logger,
) RankSlotsQueryHandler {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return RankSlotsQueryHandler{
		finder:    finder,
		advisor:   advisor,
		heuristic: services.NewHeuristicSlotRanker(loc),
		cache:     cache,
		ttl:       ttl,
		clock:     clock,
		logger:    logger.With(zap.String("component", "rank_slots")),
	}
}

func (h RankSlotsQueryHandler) Handle(ctx context.Context, query RankSlotsQuery) ([]RankedSlot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	slots, err := h.finder.Handle(ctx, NewFindAvailableSlotsQuery(query.Area(), query.Day()))
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []RankedSlot{}, nil
	}

	candidates := make([]prediction.Candidate, 0, len(slots))
	for _, s := range slots {
		candidates = append(candidates, prediction.Candidate{SlotID: s.ID, Start: s.StartTime, End: s.EndTime})
	}

	hints := query.Hints()
	if hints.Now.IsZero() {
		hints.Now = h.clock.Now()
	}

	key := rankingKey(query.Area(), candidates, hints)
	predictions, ok := h.cached(ctx, key)
	if !ok {
		predictions = h.advisor.Rank(ctx, candidates, hints)
		h.store(ctx, key, predictions)
	}

	return h.merge(slots, candidates, predictions, hints), nil
}

func (h RankSlotsQueryHandler) cached(ctx context.Context, key string) ([]prediction.Prediction, bool) {
	if h.cache == nil || h.ttl <= 0 {
		return nil, false
	}

	predictions, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("ranking cache read failed", zap.Error(err))
		return nil, false
	}
	return predictions, ok
}

func (h RankSlotsQueryHandler) store(ctx context.Context, key string, predictions []prediction.Prediction) {
	if h.cache == nil || h.ttl <= 0 {
		return
	}
	if err := h.cache.Set(ctx, key, predictions, h.ttl); err != nil {
		h.logger.Warn("ranking cache write failed", zap.Error(err))
	}
}

// merge attaches predictions to slots. Slots the advisor scored come first
// by its confidence; the rest follow, scored and ordered by the heuristic.
func (h RankSlotsQueryHandler) merge(
	slots []SlotView,
	candidates []prediction.Candidate,
	predictions []prediction.Prediction,
	hints prediction.Context,
) []RankedSlot {
	byID := make(map[kernel.UUID]SlotView, len(slots))
	for _, s := range slots {
		byID[s.ID] = s
	}

	scored := make([]prediction.Prediction, 0, len(slots))
	seen := make(map[kernel.UUID]bool, len(slots))
	for _, p := range predictions {
		if _, ok := byID[p.SlotID]; !ok || seen[p.SlotID] {
			continue
		}
		seen[p.SlotID] = true
		scored = append(scored, p)
	}
	scored = prediction.SortAndRank(scored)

	unscored := make([]prediction.Candidate, 0, len(candidates)-len(scored))
	for _, c := range candidates {
		if !seen[c.SlotID] {
			unscored = append(unscored, c)
		}
	}
	if len(unscored) > 0 {
		offset := len(scored)
		for _, p := range h.heuristic.Rank(unscored, hints) {
			p.Rank += offset
			scored = append(scored, p)
		}
	}

	ranked := make([]RankedSlot, 0, len(scored))
	for _, p := range scored {
		ranked = append(ranked, RankedSlot{Slot: byID[p.SlotID], Prediction: p})
	}
	return ranked
}

// rankingKey covers every input the advisor sees. Now is truncated to the
// hour because the heuristic only looks at hours.
func rankingKey(area string, candidates []prediction.Candidate, hints prediction.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|%s|", area, hints.RecipientID, hints.AddressType, hints.PostalCode,
		hints.Now.UTC().Truncate(time.Hour).Format(time.RFC3339))
	if loc := hints.Location; loc != nil {
		fmt.Fprintf(&b, "%.5f,%.5f", loc.Lat(), loc.Lng())
	}
	for _, c := range candidates {
		fmt.Fprintf(&b, "|%s@%d", c.SlotID, c.Start.Unix())
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "ranking:" + hex.EncodeToString(sum[:])
}
