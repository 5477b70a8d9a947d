// Package slotrepo persists slot aggregates in the time_slots table. All
// capacity changes are issued as single conditional UPDATE statements.
package slotrepo

import (
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"

	"github.com/google/uuid"
)

// SlotDTO maps a row of time_slots.
type SlotDTO struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Area                  string     `gorm:"not null"`
	StartTime             time.Time  `gorm:"not null"`
	EndTime               time.Time  `gorm:"not null"`
	Capacity              int        `gorm:"not null"`
	Available             int        `gorm:"not null"`
	AssignedCarrierID     *uuid.UUID `gorm:"type:uuid"`
	IsActive              bool       `gorm:"not null"`
	MaxBookingsPerCarrier int        `gorm:"not null"`
	Priority              int        `gorm:"type:smallint;not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (SlotDTO) TableName() string {
	return "time_slots"
}

func fromDomain(s *slot.Slot) SlotDTO {
	return SlotDTO{
		ID:                    s.ID().Bytes(),
		Area:                  s.Area(),
		StartTime:             s.Window().Start(),
		EndTime:               s.Window().End(),
		Capacity:              s.Capacity(),
		Available:             s.Available(),
		AssignedCarrierID:     kernel.ToNullable(s.Carrier()),
		IsActive:              s.IsActive(),
		MaxBookingsPerCarrier: s.MaxBookingsPerCarrier(),
		Priority:              int(s.Priority()),
		CreatedAt:             s.CreatedAt(),
		UpdatedAt:             s.UpdatedAt(),
	}
}

func toDomain(dto SlotDTO) (*slot.Slot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	carrierID, err := kernel.UUIDFromNullable(dto.AssignedCarrierID)
	if err != nil {
		return nil, err
	}

	return slot.RestoreSlot(slot.RestoreParams{
		ID:                    id,
		Area:                  dto.Area,
		Start:                 dto.StartTime,
		End:                   dto.EndTime,
		Capacity:              dto.Capacity,
		Available:             dto.Available,
		CarrierID:             carrierID,
		IsActive:              dto.IsActive,
		MaxBookingsPerCarrier: dto.MaxBookingsPerCarrier,
		Priority:              slot.Priority(dto.Priority),
		CreatedAt:             dto.CreatedAt,
		UpdatedAt:             dto.UpdatedAt,
	})
}

// metadataColumns lists every column UpdateMetadata may write. Capacity and
// availability are deliberately absent.
func metadataColumns(dto SlotDTO) map[string]any {
	return map[string]any{
		"area":                     dto.Area,
		"start_time":               dto.StartTime,
		"end_time":                 dto.EndTime,
		"assigned_carrier_id":      dto.AssignedCarrierID,
		"is_active":                dto.IsActive,
		"max_bookings_per_carrier": dto.MaxBookingsPerCarrier,
		"priority":                 dto.Priority,
		"updated_at":               now,
	}
}

// driftRow is the scan target of the drift query.
type driftRow struct {
	ID        uuid.UUID
	Capacity  int
	Available int
	Bound     int
	UpdatedAt time.Time
}
