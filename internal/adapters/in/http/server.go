// Package http exposes the slot admission use cases over REST with echo.
package http

import (
	"net/http"
	"strings"
	"time"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/application/usecases/queries"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/domain/model/slot"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var _ ServerInterface = (*Server)(nil)

// Server implements ServerInterface on top of the application handlers.
// Times in responses are rendered in the service's reference timezone.
type Server struct {
	handlers Handlers
	loc      *time.Location
}

func NewServer(handlers Handlers, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{handlers: handlers, loc: loc}
}

// FindAvailableSlots godoc
//
//	@Summary	Bookable slots of an area on one day
//	@Tags		slots
//	@Param		area	query		string	true	"Service area"
//	@Param		day		query		string	false	"YYYY-MM-DD, today when omitted"
//	@Success	200		{object}	AvailableSlots
//	@Failure	400		{object}	AvailableSlots
//	@Router		/slots/available [get]
func (s *Server) FindAvailableSlots(ctx echo.Context, params FindAvailableSlotsParams) error {
	day := deref(params.Day)
	if day != "" {
		if _, err := time.Parse(queries.DayLayout, day); err != nil {
			return ctx.JSON(http.StatusBadRequest, AvailableSlots{
				Slots:   []Slot{},
				Message: "day must be formatted as YYYY-MM-DD",
			})
		}
	}

	views, err := s.handlers.FindAvailable.Handle(ctx.Request().Context(),
		queries.NewFindAvailableSlotsQuery(params.Area, day))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, AvailableSlots{Slots: toSlots(views)})
}

// RankSlots godoc
//
//	@Summary	Available slots ordered by how likely the recipient is home
//	@Tags		slots
//	@Param		area		query	string	true	"Service area"
//	@Param		day			query	string	false	"YYYY-MM-DD"
//	@Param		addressType	query	string	false	"residential, commercial or industrial"
//	@Param		postalCode	query	string	false	"Postal code"
//	@Param		lat			query	number	false	"Latitude"
//	@Param		lng			query	number	false	"Longitude"
//	@Success	200			{array}	RankedSlot
//	@Router		/slots/recommendations [get]
func (s *Server) RankSlots(ctx echo.Context, params RankSlotsParams) error {
	day := deref(params.Day)
	if day != "" {
		if _, err := time.Parse(queries.DayLayout, day); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "day must be formatted as YYYY-MM-DD")
		}
	}

	hints := prediction.Context{
		AddressType: deref(params.AddressType),
		PostalCode:  deref(params.PostalCode),
	}
	if p, ok := principalFrom(ctx); ok {
		hints.RecipientID = p.UserID().String()
	}
	location, err := geoPoint(params.Lat, params.Lng)
	if err != nil {
		return err
	}
	hints.Location = location

	query, err := queries.NewRankSlotsQuery(params.Area, day, hints)
	if err != nil {
		return err
	}

	ranked, err := s.handlers.RankSlots.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]RankedSlot, 0, len(ranked))
	for _, r := range ranked {
		response = append(response, RankedSlot{
			Slot:        toSlot(r.Slot),
			Confidence:  r.Prediction.Confidence,
			Rank:        r.Prediction.Rank,
			Explanation: r.Prediction.Explanation,
			Source:      string(r.Prediction.Source),
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// ListSlots godoc
//
//	@Summary	List slots with filters (admin)
//	@Tags		slots
//	@Security	bearerAuth
//	@Success	200	{array}	Slot
//	@Router		/slots [get]
func (s *Server) ListSlots(ctx echo.Context, params ListSlotsParams) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := queries.SlotFilter{
		Area:          deref(params.Area),
		Day:           deref(params.Day),
		Active:        params.Active,
		OnlyAvailable: deref(params.OnlyAvailable),
		Limit:         deref(params.Limit),
		Offset:        deref(params.Offset),
	}
	if params.CarrierId != nil {
		carrierID, err := toKernelUUID(*params.CarrierId)
		if err != nil {
			return err
		}
		filter.CarrierID = &carrierID
	}

	query, err := queries.NewListSlotsQuery(principal, filter)
	if err != nil {
		return err
	}

	views, err := s.handlers.ListSlots.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toSlots(views))
}

// CreateSlot godoc
//
//	@Summary	Open a new slot (admin)
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		body	body		NewSlot	true	"Slot"
//	@Success	201		{object}	Created
//	@Router		/slots [post]
func (s *Server) CreateSlot(ctx echo.Context) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}

	var body NewSlot
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	capacity := slot.DefaultCapacity
	if body.Capacity != nil {
		capacity = *body.Capacity
	}

	slotID := kernel.NewUUID()
	cmd, err := commands.NewCreateSlotCommand(principal, slotID, body.Area,
		body.StartTime, body.EndTime, capacity, body.Priority, body.MaxBookingsPerCarrier, body.Available)
	if err != nil {
		return err
	}

	if err = s.handlers.CreateSlot.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, Created{Id: slotID.Bytes()})
}

// GetSlot godoc
//
//	@Summary	One slot
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path		string	true	"Slot id"
//	@Success	200		{object}	Slot
//	@Failure	404		{object}	Error
//	@Router		/slots/{slotId} [get]
func (s *Server) GetSlot(ctx echo.Context, slotId openapi_types.UUID) error {
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	query, err := queries.NewGetSlotQuery(slotID)
	if err != nil {
		return err
	}

	view, err := s.handlers.GetSlot.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toSlot(view))
}

// UpdateSlot godoc
//
//	@Summary	Change slot metadata (admin)
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path	string		true	"Slot id"
//	@Param		body	body	SlotChanges	true	"Changes"
//	@Success	204
//	@Router		/slots/{slotId} [put]
func (s *Server) UpdateSlot(ctx echo.Context, slotId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	var body SlotChanges
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cmd, err := commands.NewUpdateSlotCommand(principal, slotID, commands.SlotChanges{
		Area:                  body.Area,
		Start:                 body.StartTime,
		End:                   body.EndTime,
		IsActive:              body.IsActive,
		Priority:              body.Priority,
		MaxBookingsPerCarrier: body.MaxBookingsPerCarrier,
	})
	if err != nil {
		return err
	}

	if err = s.handlers.UpdateSlot.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteSlot godoc
//
//	@Summary	Delete a slot (admin); cascade drops bindings first
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path	string	true	"Slot id"
//	@Param		cascade	query	bool	false	"Unbind orders first"
//	@Success	204
//	@Failure	409	{object}	Error
//	@Router		/slots/{slotId} [delete]
func (s *Server) DeleteSlot(ctx echo.Context, slotId openapi_types.UUID, params DeleteSlotParams) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeleteSlotCommand(principal, slotID, deref(params.Cascade))
	if err != nil {
		return err
	}

	if err = s.handlers.DeleteSlot.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AdjustSlotCapacity godoc
//
//	@Summary	Set a new capacity (admin)
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path		string			true	"Slot id"
//	@Param		body	body		CapacityChange	true	"Capacity"
//	@Success	200		{object}	CapacityReport
//	@Router		/slots/{slotId}/capacity [put]
func (s *Server) AdjustSlotCapacity(ctx echo.Context, slotId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	var body CapacityChange
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cmd, err := commands.NewAdjustSlotCapacityCommand(principal, slotID, body.Capacity)
	if err != nil {
		return err
	}

	result, err := s.handlers.AdjustCapacity.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CapacityReport{
		SlotId:      slotId,
		Capacity:    result.Slot.Capacity(),
		Available:   result.Slot.Available(),
		BoundOrders: result.BoundCount,
		Overbooked:  result.Overbooked,
	})
}

// AssignCarrier godoc
//
//	@Summary	Assign or unassign the slot's carrier (admin)
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path	string				true	"Slot id"
//	@Param		body	body	CarrierAssignment	true	"Carrier"
//	@Success	204
//	@Router		/slots/{slotId}/carrier [put]
func (s *Server) AssignCarrier(ctx echo.Context, slotId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	var body CarrierAssignment
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var carrierID *kernel.UUID
	if body.CarrierId != nil {
		id, err := toKernelUUID(*body.CarrierId)
		if err != nil {
			return err
		}
		carrierID = &id
	}

	cmd, err := commands.NewAssignCarrierCommand(principal, slotID, carrierID)
	if err != nil {
		return err
	}

	if err = s.handlers.AssignCarrier.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RecordSlotPreference godoc
//
//	@Summary	Report the slot a recipient chose
//	@Tags		slots
//	@Security	bearerAuth
//	@Param		slotId	path	string			true	"Slot id"
//	@Param		body	body	SlotPreference	false	"Hints"
//	@Success	202
//	@Router		/slots/{slotId}/preferences [post]
func (s *Server) RecordSlotPreference(ctx echo.Context, slotId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	slotID, err := toKernelUUID(slotId)
	if err != nil {
		return err
	}

	var body SlotPreference
	if ctx.Request().ContentLength != 0 {
		if err = ctx.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}

	var orderID *kernel.UUID
	if body.OrderId != nil {
		id, err := toKernelUUID(*body.OrderId)
		if err != nil {
			return err
		}
		orderID = &id
	}
	location, err := geoPoint(body.Latitude, body.Longitude)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRecordSlotPreferenceCommand(principal, slotID, orderID, prediction.Context{
		AddressType: body.AddressType,
		PostalCode:  body.PostalCode,
		Location:    location,
	})
	if err != nil {
		return err
	}

	if err = s.handlers.RecordPreference.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusAccepted)
}

// CreateOrder godoc
//
//	@Summary	Create an order, optionally booking a slot for it
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		body	body		NewOrder	true	"Order"
//	@Success	201		{object}	Created
//	@Failure	409		{object}	Error
//	@Router		/orders [post]
func (s *Server) CreateOrder(ctx echo.Context) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}

	var body NewOrder
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	location, err := geoPoint(body.Latitude, body.Longitude)
	if err != nil {
		return err
	}
	address, err := order.NewAddress(body.Area, body.PostalCode, order.AddressType(strings.ToLower(body.AddressType)), location)
	if err != nil {
		return err
	}

	var slotID *kernel.UUID
	if body.SlotId != nil {
		id, err := toKernelUUID(*body.SlotId)
		if err != nil {
			return err
		}
		slotID = &id
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(principal, orderID, address, slotID)
	if err != nil {
		return err
	}

	if err = s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, Created{Id: orderID.Bytes()})
}

// GetOrder godoc
//
//	@Summary	One order (owner or admin)
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		orderId	path		string	true	"Order id"
//	@Success	200		{object}	Order
//	@Router		/orders/{orderId} [get]
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	orderID, err := toKernelUUID(orderId)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(principal, orderID)
	if err != nil {
		return err
	}

	view, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrder(view))
}

// DeleteOrder godoc
//
//	@Summary	Delete an order and release its slot
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		orderId	path	string	true	"Order id"
//	@Success	204
//	@Router		/orders/{orderId} [delete]
func (s *Server) DeleteOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	orderID, err := toKernelUUID(orderId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeleteOrderCommand(principal, orderID)
	if err != nil {
		return err
	}

	if err = s.handlers.DeleteOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// BookSlotForOrder godoc
//
//	@Summary	Bind an order to a slot
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		orderId	path		string		true	"Order id"
//	@Param		body	body		SlotBooking	true	"Slot"
//	@Success	200		{object}	Booking
//	@Failure	409		{object}	Error	"slot is no longer available"
//	@Router		/orders/{orderId}/slot [put]
func (s *Server) BookSlotForOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	orderID, err := toKernelUUID(orderId)
	if err != nil {
		return err
	}

	var body SlotBooking
	if err = ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	slotID, err := toKernelUUID(body.SlotId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewBookSlotForOrderCommand(principal, orderID, slotID)
	if err != nil {
		return err
	}

	result, err := s.handlers.BookSlot.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, Booking{
		OrderId:             result.OrderID.Bytes(),
		SlotId:              result.SlotID.Bytes(),
		ScheduledDeliveryAt: result.ScheduledDeliveryAt.In(s.loc),
		Available:           result.Available,
		AlreadyBound:        result.AlreadyBound,
	})
}

// UnbindSlotForOrder godoc
//
//	@Summary	Release an order's slot
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		orderId	path		string	true	"Order id"
//	@Success	200		{object}	Unbinding
//	@Router		/orders/{orderId}/slot [delete]
func (s *Server) UnbindSlotForOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	orderID, err := toKernelUUID(orderId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUnbindSlotForOrderCommand(principal, orderID)
	if err != nil {
		return err
	}

	released, err := s.handlers.UnbindSlot.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	response := Unbinding{OrderId: orderId}
	if released != nil {
		id := released.Bytes()
		response.ReleasedSlotId = &id
	}
	return ctx.JSON(http.StatusOK, response)
}

// CancelOrder godoc
//
//	@Summary	Cancel an order and release its slot
//	@Tags		orders
//	@Security	bearerAuth
//	@Param		orderId	path	string	true	"Order id"
//	@Success	204
//	@Router		/orders/{orderId}/cancel [post]
func (s *Server) CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	principal, err := mustPrincipal(ctx)
	if err != nil {
		return err
	}
	orderID, err := toKernelUUID(orderId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(principal, orderID)
	if err != nil {
		return err
	}

	if err = s.handlers.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
