// Package queries holds the read side: slot availability, listings, single
// slot and order lookups, and advisory ranking. Queries read straight from
// the database through their own *gorm.DB and never go through the
// aggregates' repositories.
package queries

import (
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// SlotView is the read model of a slot.
type SlotView struct {
	ID                    kernel.UUID
	Area                  string
	StartTime             time.Time
	EndTime               time.Time
	Capacity              int
	Available             int
	AssignedCarrierID     *kernel.UUID
	IsActive              bool
	MaxBookingsPerCarrier int
	Priority              string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Booked is the number of units currently reserved.
func (v SlotView) Booked() int {
	return v.Capacity - v.Available
}

// psql builds statements with '?' placeholders, which is what gorm's Raw
// expects; gorm rewrites them for the postgres driver.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var slotColumns = []string{
	"id",
	"area",
	"start_time",
	"end_time",
	"capacity",
	"available",
	"assigned_carrier_id",
	"is_active",
	"max_bookings_per_carrier",
	"priority",
	"created_at",
	"updated_at",
}

type slotRow struct {
	ID                    uuid.UUID
	Area                  string
	StartTime             time.Time
	EndTime               time.Time
	Capacity              int
	Available             int
	AssignedCarrierID     *uuid.UUID
	IsActive              bool
	MaxBookingsPerCarrier int
	Priority              int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (r slotRow) toView(loc *time.Location) (SlotView, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return SlotView{}, err
	}
	carrierID, err := kernel.UUIDFromNullable(r.AssignedCarrierID)
	if err != nil {
		return SlotView{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	return SlotView{
		ID:                    id,
		Area:                  r.Area,
		StartTime:             r.StartTime.In(loc),
		EndTime:               r.EndTime.In(loc),
		Capacity:              r.Capacity,
		Available:             r.Available,
		AssignedCarrierID:     carrierID,
		IsActive:              r.IsActive,
		MaxBookingsPerCarrier: r.MaxBookingsPerCarrier,
		Priority:              slot.Priority(r.Priority).String(),
		CreatedAt:             r.CreatedAt.In(loc),
		UpdatedAt:             r.UpdatedAt.In(loc),
	}, nil
}

func toViews(rows []slotRow, loc *time.Location) ([]SlotView, error) {
	views := make([]SlotView, 0, len(rows))
	for _, r := range rows {
		v, err := r.toView(loc)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
