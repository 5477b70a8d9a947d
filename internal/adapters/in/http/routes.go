package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /api/v1/slots/available)
	FindAvailableSlots(ctx echo.Context, params FindAvailableSlotsParams) error
	// (GET /api/v1/slots/recommendations)
	RankSlots(ctx echo.Context, params RankSlotsParams) error
	// (GET /api/v1/slots)
	ListSlots(ctx echo.Context, params ListSlotsParams) error
	// (POST /api/v1/slots)
	CreateSlot(ctx echo.Context) error
	// (GET /api/v1/slots/{slotId})
	GetSlot(ctx echo.Context, slotId openapi_types.UUID) error
	// (PUT /api/v1/slots/{slotId})
	UpdateSlot(ctx echo.Context, slotId openapi_types.UUID) error
	// (DELETE /api/v1/slots/{slotId})
	DeleteSlot(ctx echo.Context, slotId openapi_types.UUID, params DeleteSlotParams) error
	// (PUT /api/v1/slots/{slotId}/capacity)
	AdjustSlotCapacity(ctx echo.Context, slotId openapi_types.UUID) error
	// (PUT /api/v1/slots/{slotId}/carrier)
	AssignCarrier(ctx echo.Context, slotId openapi_types.UUID) error
	// (POST /api/v1/slots/{slotId}/preferences)
	RecordSlotPreference(ctx echo.Context, slotId openapi_types.UUID) error
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (DELETE /api/v1/orders/{orderId})
	DeleteOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (PUT /api/v1/orders/{orderId}/slot)
	BookSlotForOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (DELETE /api/v1/orders/{orderId}/slot)
	UnbindSlotForOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/cancel)
	CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindPathUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func bindQuery(ctx echo.Context, name string, required bool, dest any) error {
	if err := runtime.BindQueryParameter("form", true, required, name, ctx.QueryParams(), dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

// FindAvailableSlots converts echo context to params.
func (w *ServerInterfaceWrapper) FindAvailableSlots(ctx echo.Context) error {
	var params FindAvailableSlotsParams
	if err := bindQuery(ctx, "area", true, &params.Area); err != nil {
		return err
	}
	if err := bindQuery(ctx, "day", false, &params.Day); err != nil {
		return err
	}
	return w.Handler.FindAvailableSlots(ctx, params)
}

// RankSlots converts echo context to params.
func (w *ServerInterfaceWrapper) RankSlots(ctx echo.Context) error {
	var params RankSlotsParams
	for name, dest := range map[string]any{
		"day":         &params.Day,
		"addressType": &params.AddressType,
		"postalCode":  &params.PostalCode,
		"lat":         &params.Lat,
		"lng":         &params.Lng,
	} {
		if err := bindQuery(ctx, name, false, dest); err != nil {
			return err
		}
	}
	if err := bindQuery(ctx, "area", true, &params.Area); err != nil {
		return err
	}
	return w.Handler.RankSlots(ctx, params)
}

// ListSlots converts echo context to params.
func (w *ServerInterfaceWrapper) ListSlots(ctx echo.Context) error {
	var params ListSlotsParams
	for name, dest := range map[string]any{
		"area":          &params.Area,
		"day":           &params.Day,
		"carrierId":     &params.CarrierId,
		"active":        &params.Active,
		"onlyAvailable": &params.OnlyAvailable,
		"limit":         &params.Limit,
		"offset":        &params.Offset,
	} {
		if err := bindQuery(ctx, name, false, dest); err != nil {
			return err
		}
	}
	return w.Handler.ListSlots(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateSlot(ctx echo.Context) error {
	return w.Handler.CreateSlot(ctx)
}

func (w *ServerInterfaceWrapper) GetSlot(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.GetSlot(ctx, slotID)
}

func (w *ServerInterfaceWrapper) UpdateSlot(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateSlot(ctx, slotID)
}

func (w *ServerInterfaceWrapper) DeleteSlot(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	var params DeleteSlotParams
	if err = bindQuery(ctx, "cascade", false, &params.Cascade); err != nil {
		return err
	}
	return w.Handler.DeleteSlot(ctx, slotID, params)
}

func (w *ServerInterfaceWrapper) AdjustSlotCapacity(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.AdjustSlotCapacity(ctx, slotID)
}

func (w *ServerInterfaceWrapper) AssignCarrier(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.AssignCarrier(ctx, slotID)
}

func (w *ServerInterfaceWrapper) RecordSlotPreference(ctx echo.Context) error {
	slotID, err := bindPathUUID(ctx, "slotId")
	if err != nil {
		return err
	}
	return w.Handler.RecordSlotPreference(ctx, slotID)
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderID, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) DeleteOrder(ctx echo.Context) error {
	orderID, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.DeleteOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) BookSlotForOrder(ctx echo.Context) error {
	orderID, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.BookSlotForOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) UnbindSlotForOrder(ctx echo.Context) error {
	orderID, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.UnbindSlotForOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	orderID, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.CancelOrder(ctx, orderID)
}

// EchoRouter is the subset of *echo.Echo and *echo.Group used for routing.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts every operation under /api/v1. Public reads take
// an optional token; everything else requires one. Booking writes are also
// rate limited.
func RegisterHandlers(router EchoRouter, si ServerInterface, auth *Authenticator, limiter echo.MiddlewareFunc) {
	w := &ServerInterfaceWrapper{Handler: si}
	const base = "/api/v1"

	public := []echo.MiddlewareFunc{auth.OptionalAuth}
	private := []echo.MiddlewareFunc{auth.Authenticate}
	booking := []echo.MiddlewareFunc{auth.Authenticate, limiter}

	router.GET(base+"/slots/available", w.FindAvailableSlots, public...)
	router.GET(base+"/slots/recommendations", w.RankSlots, public...)
	router.GET(base+"/slots", w.ListSlots, private...)
	router.POST(base+"/slots", w.CreateSlot, private...)
	router.GET(base+"/slots/:slotId", w.GetSlot, private...)
	router.PUT(base+"/slots/:slotId", w.UpdateSlot, private...)
	router.DELETE(base+"/slots/:slotId", w.DeleteSlot, private...)
	router.PUT(base+"/slots/:slotId/capacity", w.AdjustSlotCapacity, private...)
	router.PUT(base+"/slots/:slotId/carrier", w.AssignCarrier, private...)
	router.POST(base+"/slots/:slotId/preferences", w.RecordSlotPreference, private...)
	router.POST(base+"/orders", w.CreateOrder, booking...)
	router.GET(base+"/orders/:orderId", w.GetOrder, private...)
	router.DELETE(base+"/orders/:orderId", w.DeleteOrder, private...)
	router.PUT(base+"/orders/:orderId/slot", w.BookSlotForOrder, booking...)
	router.DELETE(base+"/orders/:orderId/slot", w.UnbindSlotForOrder, private...)
	router.POST(base+"/orders/:orderId/cancel", w.CancelOrder, private...)
}
