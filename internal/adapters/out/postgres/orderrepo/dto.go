// Package orderrepo persists order aggregates and their slot bindings in
// the orders table.
package orderrepo

import (
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SenderID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Area                string     `gorm:"not null"`
	PostalCode          string     `gorm:"not null"`
	AddressType         string     `gorm:"not null"`
	Latitude            *float64
	Longitude           *float64
	Status              int        `gorm:"type:smallint;not null"`
	SlotID              *uuid.UUID `gorm:"type:uuid;index"`
	ScheduledDeliveryAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:                  o.ID().Bytes(),
		SenderID:            o.SenderID().Bytes(),
		Area:                o.Address().Area(),
		PostalCode:          o.Address().PostalCode(),
		AddressType:         string(o.Address().Type()),
		Status:              int(o.Status()),
		SlotID:              kernel.ToNullable(o.SlotID()),
		ScheduledDeliveryAt: o.ScheduledDeliveryAt(),
		CreatedAt:           o.CreatedAt(),
	}

	if loc := o.Address().Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Latitude, dto.Longitude = &lat, &lng
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}

	slotID, err := kernel.UUIDFromNullable(dto.SlotID)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Latitude != nil && dto.Longitude != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Latitude, *dto.Longitude)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	address, err := order.NewAddress(dto.Area, dto.PostalCode, order.AddressType(dto.AddressType), location)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:                  id,
		SenderID:            senderID,
		Address:             address,
		Status:              order.Status(dto.Status),
		SlotID:              slotID,
		ScheduledDeliveryAt: dto.ScheduledDeliveryAt,
		CreatedAt:           dto.CreatedAt,
	})
}
