package queries

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

type ListSlotsQueryHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewListSlotsQueryHandler(db *gorm.DB, loc *time.Location) ListSlotsQueryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return ListSlotsQueryHandler{db: db, loc: loc}
}

// Handle lists slots ordered by start time. Admin only.
func (h ListSlotsQueryHandler) Handle(ctx context.Context, query ListSlotsQuery) ([]SlotView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := query.Principal().RequireAdmin("list"); err != nil {
		return nil, err
	}

	f := query.Filter()
	builder := psql.
		Select(slotColumns...).
		From("time_slots").
		OrderBy("start_time", "id").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	if f.Area != "" {
		builder = builder.Where(sq.Eq{"area": f.Area})
	}
	if f.Day != "" {
		day, err := time.ParseInLocation(DayLayout, f.Day, h.loc)
		if err != nil {
			return nil, err
		}
		from, to := kernel.DayBounds(day, h.loc)
		builder = builder.Where(sq.GtOrEq{"start_time": from}).Where(sq.LtOrEq{"start_time": to})
	}
	if f.CarrierID != nil {
		builder = builder.Where(sq.Eq{"assigned_carrier_id": f.CarrierID.Bytes()})
	}
	if f.Active != nil {
		builder = builder.Where(sq.Eq{"is_active": *f.Active})
	}
	if f.OnlyAvailable {
		builder = builder.Where(sq.Gt{"available": 0})
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []slotRow
	if err = h.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return toViews(rows, h.loc)
}
