package http

import (
	"net/http"

	"optideliver/internal/core/application/usecases/queries"
	"optideliver/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toKernelUUID(id openapi_types.UUID) (kernel.UUID, error) {
	out, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return out, nil
}

func fromNullable(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	out := id.Bytes()
	return &out
}

// geoPoint requires both coordinates or neither.
func geoPoint(lat, lng *float64) (*kernel.GeoPoint, error) {
	switch {
	case lat == nil && lng == nil:
		return nil, nil
	case lat == nil || lng == nil:
		return nil, echo.NewHTTPError(http.StatusBadRequest, "latitude and longitude must be given together")
	}

	p, err := kernel.NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func toSlot(v queries.SlotView) Slot {
	return Slot{
		Id:                    v.ID.Bytes(),
		Area:                  v.Area,
		StartTime:             v.StartTime,
		EndTime:               v.EndTime,
		Capacity:              v.Capacity,
		Available:             v.Available,
		Booked:                v.Booked(),
		AssignedCarrierId:     fromNullable(v.AssignedCarrierID),
		IsActive:              v.IsActive,
		MaxBookingsPerCarrier: v.MaxBookingsPerCarrier,
		Priority:              v.Priority,
		CreatedAt:             v.CreatedAt,
		UpdatedAt:             v.UpdatedAt,
	}
}

func toSlots(views []queries.SlotView) []Slot {
	out := make([]Slot, 0, len(views))
	for _, v := range views {
		out = append(out, toSlot(v))
	}
	return out
}

func toOrder(v queries.OrderView) Order {
	return Order{
		Id:                  v.ID.Bytes(),
		SenderId:            v.SenderID.Bytes(),
		Area:                v.Area,
		PostalCode:          v.PostalCode,
		AddressType:         v.AddressType,
		Latitude:            v.Latitude,
		Longitude:           v.Longitude,
		Status:              v.Status,
		SlotId:              fromNullable(v.SlotID),
		ScheduledDeliveryAt: v.ScheduledDeliveryAt,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
