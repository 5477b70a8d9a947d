package queries

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// FindAvailableSlotsQueryHandler answers availability for one area and day.
// Day boundaries are computed in the configured reference time zone, so a
// slot starting at 23:30 local time belongs to that local day whatever the
// server's zone.
type FindAvailableSlotsQueryHandler struct {
	db    *gorm.DB
	loc   *time.Location
	clock kernel.Clock
}

// NewFindAvailableSlotsQueryHandler uses UTC when loc is nil.
func NewFindAvailableSlotsQueryHandler(db *gorm.DB, loc *time.Location, clock kernel.Clock) FindAvailableSlotsQueryHandler {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return FindAvailableSlotsQueryHandler{db: db, loc: loc, clock: clock}
}

// Handle returns active slots with at least one unit left, ordered by start
// time. A malformed day or no matching slot yields an empty slice, never an
// error; only database failures are returned.
func (h FindAvailableSlotsQueryHandler) Handle(ctx context.Context, query FindAvailableSlotsQuery) ([]SlotView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	from, to, ok := h.dayBounds(query.Day())
	if !ok || query.Area() == "" {
		return []SlotView{}, nil
	}

	stmt, args, err := psql.
		Select(slotColumns...).
		From("time_slots").
		Where(sq.Eq{"area": query.Area(), "is_active": true}).
		Where(sq.Gt{"available": 0}).
		Where(sq.GtOrEq{"start_time": from}).
		Where(sq.LtOrEq{"start_time": to}).
		OrderBy("start_time", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []slotRow
	if err = h.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return toViews(rows, h.loc)
}

func (h FindAvailableSlotsQueryHandler) dayBounds(day string) (time.Time, time.Time, bool) {
	if day == "" {
		from, to := kernel.DayBounds(h.clock.Now(), h.loc)
		return from, to, true
	}

	parsed, err := time.ParseInLocation(DayLayout, day, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	from, to := kernel.DayBounds(parsed, h.loc)
	return from, to, true
}
