package queries

import (
	"errors"
	"strings"

	"optideliver/internal/pkg/guard"
)

// DayLayout is the calendar-day format accepted by availability queries.
const DayLayout = "2006-01-02"

var ErrFindAvailableSlotsQueryIsNotConstructed = errors.New(
	"FindAvailableSlotsQuery must be created via NewFindAvailableSlotsQuery constructor",
)

// FindAvailableSlotsQuery lists the bookable slots of an area on one
// calendar day.
//
// Example:
//
//	query := NewFindAvailableSlotsQuery("north", "2025-06-02")
//	slots, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, s := range slots {
//	    fmt.Printf("%s %s-%s (%d left)\n", s.ID, s.StartTime, s.EndTime, s.Available)
//	}
type FindAvailableSlotsQuery struct {
	area string
	day  string

	guard guard.ConstructorGuard
}

// NewFindAvailableSlotsQuery never fails: an empty day means today and a
// malformed one simply matches nothing.
func NewFindAvailableSlotsQuery(area, day string) FindAvailableSlotsQuery {
	return FindAvailableSlotsQuery{
		area:  strings.TrimSpace(area),
		day:   strings.TrimSpace(day),
		guard: guard.NewConstructorGuard(),
	}
}

func (q FindAvailableSlotsQuery) Validate() error {
	return q.guard.Validate(ErrFindAvailableSlotsQueryIsNotConstructed)
}

func (q FindAvailableSlotsQuery) Area() string {
	return q.area
}

func (q FindAvailableSlotsQuery) Day() string {
	return q.day
}
