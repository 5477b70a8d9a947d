package queries

import (
	"errors"
	"strings"

	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/pkg/guard"
)

var ErrRankSlotsQueryIsNotConstructed = errors.New(
	"RankSlotsQuery must be created via NewRankSlotsQuery constructor",
)

// RankSlotsQuery asks for the available slots of an area and day ordered by
// how likely the recipient is to be home. The order is advice only.
type RankSlotsQuery struct {
	area  string
	day   string
	hints prediction.Context

	guard guard.ConstructorGuard
}

func NewRankSlotsQuery(area, day string, hints prediction.Context) (RankSlotsQuery, error) {
	if hints.Location != nil {
		if err := hints.Location.Validate(); err != nil {
			return RankSlotsQuery{}, err
		}
	}

	return RankSlotsQuery{
		area:  strings.TrimSpace(area),
		day:   strings.TrimSpace(day),
		hints: hints,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (q RankSlotsQuery) Validate() error {
	return q.guard.Validate(ErrRankSlotsQueryIsNotConstructed)
}

func (q RankSlotsQuery) Area() string {
	return q.area
}

func (q RankSlotsQuery) Day() string {
	return q.day
}

func (q RankSlotsQuery) Hints() prediction.Context {
	return q.hints
}

// RankedSlot pairs an available slot with its advisory score.
type RankedSlot struct {
	Slot       SlotView
	Prediction prediction.Prediction
}
