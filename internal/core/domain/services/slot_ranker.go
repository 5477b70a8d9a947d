package services

import (
	"time"

	"optideliver/internal/core/domain/model/prediction"
)

const (
	baseConfidence     = 0.5
	businessConfidence = 0.75
	eveningConfidence  = 0.7
	proximityBoost     = 0.2
	proximityCeiling   = 0.9
	proximityWindow    = 4 * time.Hour

	baseExplanation      = "Based on typical delivery patterns"
	businessExplanation  = "Business hours typically have high delivery success rates"
	eveningExplanation   = "Evening slots are popular for home deliveries"
	proximityExplanation = " and this time is convenient based on current time"
)

// HeuristicSlotRanker scores slots without any external input. It is the
// fallback used whenever the prediction service cannot answer, so it must
// stay deterministic for a given clock and never fail.
//
// Scoring rules, evaluated on the slot start in the reference timezone:
//   - 10:00–14:59 starts score 0.75
//   - 16:00–19:59 starts score 0.7
//   - everything else scores 0.5
//   - starts within four hours of now gain 0.2, capped at 0.9
//
// Example usage:
//
//	ranker := services.NewHeuristicSlotRanker(loc)
//	ranked := ranker.Rank(candidates, prediction.Context{Now: clock.Now()})
//	best := ranked[0]
type HeuristicSlotRanker struct {
	loc *time.Location
}

// NewHeuristicSlotRanker evaluates hours in loc; a nil loc means UTC.
func NewHeuristicSlotRanker(loc *time.Location) HeuristicSlotRanker {
	if loc == nil {
		loc = time.UTC
	}
	return HeuristicSlotRanker{loc: loc}
}

// Rank scores every candidate and returns them by descending confidence.
// Candidates with equal scores keep their input order, so callers that pass
// slots sorted by start time get the earliest first among ties.
func (r HeuristicSlotRanker) Rank(candidates []prediction.Candidate, ctx prediction.Context) []prediction.Prediction {
	predictions := make([]prediction.Prediction, 0, len(candidates))
	for _, c := range candidates {
		confidence, explanation := r.score(c, ctx.Now)
		predictions = append(predictions, prediction.Prediction{
			SlotID:      c.SlotID,
			Confidence:  prediction.Clamp(confidence),
			Explanation: explanation,
			Source:      prediction.SourceHeuristic,
		})
	}

	return prediction.SortAndRank(predictions)
}

func (r HeuristicSlotRanker) score(c prediction.Candidate, now time.Time) (float64, string) {
	confidence, explanation := baseConfidence, baseExplanation

	switch hour := c.Start.In(r.loc).Hour(); {
	case hour >= 10 && hour <= 14:
		confidence, explanation = businessConfidence, businessExplanation
	case hour >= 16 && hour <= 19:
		confidence, explanation = eveningConfidence, eveningExplanation
	}

	if !now.IsZero() && absDuration(c.Start.Sub(now)) <= proximityWindow {
		confidence = min(proximityCeiling, confidence+proximityBoost)
		explanation += proximityExplanation
	}

	return confidence, explanation
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
