package http

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Slot defines model for Slot.
type Slot struct {
	Id                    openapi_types.UUID  `json:"id"`
	Area                  string              `json:"area"`
	StartTime             time.Time           `json:"startTime"`
	EndTime               time.Time           `json:"endTime"`
	Capacity              int                 `json:"capacity"`
	Available             int                 `json:"available"`
	Booked                int                 `json:"booked"`
	AssignedCarrierId     *openapi_types.UUID `json:"assignedCarrierId"`
	IsActive              bool                `json:"isActive"`
	MaxBookingsPerCarrier int                 `json:"maxBookingsPerCarrier"`
	Priority              string              `json:"priority"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// AvailableSlots is returned by the availability endpoint. Slots is never
// null, including on a 400 for a malformed day.
type AvailableSlots struct {
	Slots   []Slot `json:"slots"`
	Message string `json:"message,omitempty"`
}

// RankedSlot defines model for RankedSlot.
type RankedSlot struct {
	Slot        Slot    `json:"slot"`
	Confidence  float64 `json:"confidence"`
	Rank        int     `json:"rank"`
	Explanation string  `json:"explanation,omitempty"`
	Source      string  `json:"source"`
}

// NewSlot defines model for NewSlot.
type NewSlot struct {
	Area                  string    `json:"area"`
	StartTime             time.Time `json:"startTime"`
	EndTime               time.Time `json:"endTime"`
	Capacity              *int      `json:"capacity,omitempty"`
	Priority              string    `json:"priority,omitempty"`
	MaxBookingsPerCarrier int       `json:"maxBookingsPerCarrier,omitempty"`
	Available             *int      `json:"available,omitempty"`
}

// SlotChanges defines model for SlotChanges.
type SlotChanges struct {
	Area                  *string    `json:"area,omitempty"`
	StartTime             *time.Time `json:"startTime,omitempty"`
	EndTime               *time.Time `json:"endTime,omitempty"`
	IsActive              *bool      `json:"isActive,omitempty"`
	Priority              *string    `json:"priority,omitempty"`
	MaxBookingsPerCarrier *int       `json:"maxBookingsPerCarrier,omitempty"`
}

// CapacityChange defines model for CapacityChange.
type CapacityChange struct {
	Capacity int `json:"capacity"`
}

// CapacityReport is the result of a capacity change.
type CapacityReport struct {
	SlotId      openapi_types.UUID `json:"slotId"`
	Capacity    int                `json:"capacity"`
	Available   int                `json:"available"`
	BoundOrders int                `json:"boundOrders"`
	Overbooked  int                `json:"overbooked"`
}

// CarrierAssignment defines model for CarrierAssignment. A null carrierId
// unassigns.
type CarrierAssignment struct {
	CarrierId *openapi_types.UUID `json:"carrierId"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Area        string              `json:"area"`
	PostalCode  string              `json:"postalCode,omitempty"`
	AddressType string              `json:"addressType,omitempty"`
	Latitude    *float64            `json:"latitude,omitempty"`
	Longitude   *float64            `json:"longitude,omitempty"`
	SlotId      *openapi_types.UUID `json:"slotId,omitempty"`
}

// Order defines model for Order.
type Order struct {
	Id                  openapi_types.UUID  `json:"id"`
	SenderId            openapi_types.UUID  `json:"senderId"`
	Area                string              `json:"area"`
	PostalCode          string              `json:"postalCode,omitempty"`
	AddressType         string              `json:"addressType"`
	Latitude            *float64            `json:"latitude,omitempty"`
	Longitude           *float64            `json:"longitude,omitempty"`
	Status              string              `json:"status"`
	SlotId              *openapi_types.UUID `json:"slotId"`
	ScheduledDeliveryAt *time.Time          `json:"scheduledDeliveryAt"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// SlotBooking defines model for SlotBooking.
type SlotBooking struct {
	SlotId openapi_types.UUID `json:"slotId"`
}

// Booking is the result of binding an order to a slot.
type Booking struct {
	OrderId             openapi_types.UUID `json:"orderId"`
	SlotId              openapi_types.UUID `json:"slotId"`
	ScheduledDeliveryAt time.Time          `json:"scheduledDeliveryAt"`
	Available           int                `json:"available"`
	AlreadyBound        bool               `json:"alreadyBound"`
}

// Unbinding is the result of releasing an order's slot.
type Unbinding struct {
	OrderId        openapi_types.UUID  `json:"orderId"`
	ReleasedSlotId *openapi_types.UUID `json:"releasedSlotId"`
}

// SlotPreference defines model for SlotPreference.
type SlotPreference struct {
	OrderId     *openapi_types.UUID `json:"orderId,omitempty"`
	AddressType string              `json:"addressType,omitempty"`
	PostalCode  string              `json:"postalCode,omitempty"`
	Latitude    *float64            `json:"latitude,omitempty"`
	Longitude   *float64            `json:"longitude,omitempty"`
}

// Created carries the id of a new resource.
type Created struct {
	Id openapi_types.UUID `json:"id"`
}

// FindAvailableSlotsParams defines parameters for FindAvailableSlots.
type FindAvailableSlotsParams struct {
	Area string  `form:"area" json:"area"`
	Day  *string `form:"day,omitempty" json:"day,omitempty"`
}

// RankSlotsParams defines parameters for RankSlots.
type RankSlotsParams struct {
	Area        string   `form:"area" json:"area"`
	Day         *string  `form:"day,omitempty" json:"day,omitempty"`
	AddressType *string  `form:"addressType,omitempty" json:"addressType,omitempty"`
	PostalCode  *string  `form:"postalCode,omitempty" json:"postalCode,omitempty"`
	Lat         *float64 `form:"lat,omitempty" json:"lat,omitempty"`
	Lng         *float64 `form:"lng,omitempty" json:"lng,omitempty"`
}

// ListSlotsParams defines parameters for ListSlots.
type ListSlotsParams struct {
	Area          *string             `form:"area,omitempty" json:"area,omitempty"`
	Day           *string             `form:"day,omitempty" json:"day,omitempty"`
	CarrierId     *openapi_types.UUID `form:"carrierId,omitempty" json:"carrierId,omitempty"`
	Active        *bool               `form:"active,omitempty" json:"active,omitempty"`
	OnlyAvailable *bool               `form:"onlyAvailable,omitempty" json:"onlyAvailable,omitempty"`
	Limit         *int                `form:"limit,omitempty" json:"limit,omitempty"`
	Offset        *int                `form:"offset,omitempty" json:"offset,omitempty"`
}

// DeleteSlotParams defines parameters for DeleteSlot.
type DeleteSlotParams struct {
	Cascade *bool `form:"cascade,omitempty" json:"cascade,omitempty"`
}
