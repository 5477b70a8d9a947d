package queries

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

type GetSlotQueryHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewGetSlotQueryHandler(db *gorm.DB, loc *time.Location) GetSlotQueryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return GetSlotQueryHandler{db: db, loc: loc}
}

// Handle returns slot.ErrSlotNotFound wrapped in an errs.ObjectNotFoundError
// for unknown ids.
func (h GetSlotQueryHandler) Handle(ctx context.Context, query GetSlotQuery) (SlotView, error) {
	if err := query.Validate(); err != nil {
		return SlotView{}, err
	}

	stmt, args, err := psql.
		Select(slotColumns...).
		From("time_slots").
		Where(sq.Eq{"id": query.SlotID().Bytes()}).
		ToSql()
	if err != nil {
		return SlotView{}, err
	}

	var rows []slotRow
	if err = h.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return SlotView{}, err
	}
	if len(rows) == 0 {
		return SlotView{}, errs.NewObjectNotFoundErrorWithCause("slot", query.SlotID().String(), slot.ErrSlotNotFound)
	}

	return rows[0].toView(h.loc)
}
