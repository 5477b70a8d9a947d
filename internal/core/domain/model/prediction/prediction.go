// Package prediction holds the value types exchanged with slot advisors.
// Predictions are advisory: nothing in admission control reads them.
package prediction

import (
	"cmp"
	"slices"
	"time"

	"optideliver/internal/core/domain/model/kernel"
)

// Source tells where a prediction came from.
type Source string

const (
	SourceAdvisor   Source = "advisor"
	SourceHeuristic Source = "heuristic"
)

// Candidate is a slot offered for ranking.
type Candidate struct {
	SlotID kernel.UUID
	Start  time.Time
	End    time.Time
}

// Context describes the delivery the ranking is for. Every field is optional.
type Context struct {
	RecipientID string
	AddressType string
	PostalCode  string
	Location    *kernel.GeoPoint
	Now         time.Time
}

// Feedback reports the slot a recipient picked so the advisor can learn
// from it.
type Feedback struct {
	Context  Context
	Selected Candidate
}

// Prediction is the advisory score of one candidate.
type Prediction struct {
	SlotID      kernel.UUID
	Confidence  float64
	Rank        int
	Explanation string
	Source      Source
}

// Clamp bounds a confidence to [0, 1].
func Clamp(confidence float64) float64 {
	return max(0, min(1, confidence))
}

// SortAndRank orders predictions by descending confidence, keeping the input
// order between ties, and renumbers Rank from 1.
func SortAndRank(predictions []Prediction) []Prediction {
	slices.SortStableFunc(predictions, func(a, b Prediction) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	for i := range predictions {
		predictions[i].Rank = i + 1
	}
	return predictions
}
