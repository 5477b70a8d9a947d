package queries

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewGetOrderQueryHandler(db *gorm.DB, loc *time.Location) GetOrderQueryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return GetOrderQueryHandler{db: db, loc: loc}
}

// Handle returns the order to its sender or an administrator. Others get
// errs.ErrAccessDenied, which callers may choose to present as not found.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	stmt, args, err := psql.
		Select(
			"id",
			"sender_id",
			"area",
			"postal_code",
			"address_type",
			"latitude",
			"longitude",
			"status",
			"slot_id",
			"scheduled_delivery_at",
			"created_at",
			"updated_at",
		).
		From("orders").
		Where(sq.Eq{"id": query.OrderID().Bytes()}).
		ToSql()
	if err != nil {
		return OrderView{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return OrderView{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return OrderView{}, err
		}
		return OrderView{}, errs.NewObjectNotFoundErrorWithCause("order", query.OrderID().String(), order.ErrOrderNotFound)
	}

	var (
		view      OrderView
		id        uuid.UUID
		senderID  uuid.UUID
		slotID    *uuid.UUID
		status    int
		scheduled *time.Time
	)
	err = rows.Scan(
		&id,
		&senderID,
		&view.Area,
		&view.PostalCode,
		&view.AddressType,
		&view.Latitude,
		&view.Longitude,
		&status,
		&slotID,
		&scheduled,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		return OrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderView{}, err
	}
	if view.SenderID, err = kernel.UUIDFromBytes(senderID[:]); err != nil {
		return OrderView{}, err
	}
	if view.SlotID, err = kernel.UUIDFromNullable(slotID); err != nil {
		return OrderView{}, err
	}
	if err = query.Principal().CanAccessOrder(view.SenderID); err != nil {
		return OrderView{}, err
	}

	view.Status = order.Status(status).String()
	if scheduled != nil {
		local := scheduled.In(h.loc)
		view.ScheduledDeliveryAt = &local
	}
	view.CreatedAt = view.CreatedAt.In(h.loc)
	view.UpdatedAt = view.UpdatedAt.In(h.loc)

	return view, nil
}
