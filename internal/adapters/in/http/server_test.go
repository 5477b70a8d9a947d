package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/application/usecases/queries"
	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubCommand[C any] struct {
	calls []C
	err   error
}

func (s *stubCommand[C]) Handle(_ context.Context, cmd C) error {
	s.calls = append(s.calls, cmd)
	return s.err
}

type stubResult[C, R any] struct {
	calls  []C
	result R
	err    error
}

func (s *stubResult[C, R]) Handle(_ context.Context, cmd C) (R, error) {
	s.calls = append(s.calls, cmd)
	return s.result, s.err
}

func newTestEcho(t *testing.T, handlers Handlers, tweak ...func(*Options)) *echo.Echo {
	t.Helper()

	opts := Options{
		Authenticator: NewAuthenticator(testSecret),
		BookingRate:   100,
		BookingBurst:  100,
	}
	for _, f := range tweak {
		f(&opts)
	}

	e, err := NewEcho(t.Context(), NewServer(handlers, time.UTC), opts)
	require.NoError(t, err)
	return e
}

func token(t *testing.T, role identity.Role) string {
	t.Helper()
	signed, err := NewAuthenticator(testSecret).IssueToken(kernel.NewUUID(), role, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return "Bearer " + signed
}

func do(e *echo.Echo, method, target, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func slotView(capacity, available int) queries.SlotView {
	start := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	return queries.SlotView{
		ID:                    kernel.NewUUID(),
		Area:                  "north",
		StartTime:             start,
		EndTime:               start.Add(2 * time.Hour),
		Capacity:              capacity,
		Available:             available,
		IsActive:              true,
		MaxBookingsPerCarrier: slot.DefaultMaxBookingsPerCarrier,
		Priority:              "medium",
	}
}

func TestFindAvailableSlots_AnonymousCaller(t *testing.T) {
	view := slotView(5, 2)
	find := &stubResult[queries.FindAvailableSlotsQuery, []queries.SlotView]{result: []queries.SlotView{view}}
	e := newTestEcho(t, Handlers{FindAvailable: find})

	rec := do(e, http.MethodGet, "/api/v1/slots/available?area=north&day=2026-10-15", "", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[AvailableSlots](t, rec)
	require.Len(t, body.Slots, 1)
	assert.Equal(t, view.ID.Bytes(), body.Slots[0].Id)
	assert.Equal(t, 3, body.Slots[0].Booked)
	require.Len(t, find.calls, 1)
	assert.Equal(t, "north", find.calls[0].Area())
}

func TestFindAvailableSlots_MalformedDayReturnsEmptyList(t *testing.T) {
	find := &stubResult[queries.FindAvailableSlotsQuery, []queries.SlotView]{}
	e := newTestEcho(t, Handlers{FindAvailable: find})

	rec := do(e, http.MethodGet, "/api/v1/slots/available?area=north&day=15-10-2026", "", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
	assert.NotEmpty(t, decode[AvailableSlots](t, rec).Message)
	assert.Empty(t, find.calls)
}

func TestFindAvailableSlots_MissingAreaIsRejectedByValidation(t *testing.T) {
	find := &stubResult[queries.FindAvailableSlotsQuery, []queries.SlotView]{}
	e := newTestEcho(t, Handlers{FindAvailable: find})

	rec := do(e, http.MethodGet, "/api/v1/slots/available", "", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, find.calls)
}

func TestBookSlotForOrder(t *testing.T) {
	orderID, slotID := kernel.NewUUID(), kernel.NewUUID()
	target := fmt.Sprintf("/api/v1/orders/%s/slot", orderID)
	body := fmt.Sprintf(`{"slotId":%q}`, slotID)

	t.Run("booked", func(t *testing.T) {
		at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
		book := &stubResult[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]{
			result: commands.BookSlotForOrderResult{
				OrderID: orderID, SlotID: slotID, ScheduledDeliveryAt: at, Available: 4,
			},
		}
		e := newTestEcho(t, Handlers{BookSlot: book})

		rec := do(e, http.MethodPut, target, token(t, identity.RoleSender), body)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		booking := decode[Booking](t, rec)
		assert.Equal(t, slotID.Bytes(), booking.SlotId)
		assert.Equal(t, 4, booking.Available)
		assert.True(t, at.Equal(booking.ScheduledDeliveryAt))
		assert.False(t, booking.AlreadyBound)
	})

	t.Run("slot_full_is_conflict", func(t *testing.T) {
		book := &stubResult[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]{
			err: fmt.Errorf("book slot: %w", slot.ErrSlotFull),
		}
		e := newTestEcho(t, Handlers{BookSlot: book})

		rec := do(e, http.MethodPut, target, token(t, identity.RoleSender), body)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "slot is no longer available", decode[Error](t, rec).Message)
	})

	t.Run("carrier_limit_is_conflict", func(t *testing.T) {
		book := &stubResult[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]{
			err: slot.ErrCarrierLimitReached,
		}
		e := newTestEcho(t, Handlers{BookSlot: book})

		rec := do(e, http.MethodPut, target, token(t, identity.RoleSender), body)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("requires_token", func(t *testing.T) {
		book := &stubResult[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]{}
		e := newTestEcho(t, Handlers{BookSlot: book})

		rec := do(e, http.MethodPut, target, "", body)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, book.calls)
	})

	t.Run("missing_slot_id", func(t *testing.T) {
		book := &stubResult[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]{}
		e := newTestEcho(t, Handlers{BookSlot: book})

		rec := do(e, http.MethodPut, target, token(t, identity.RoleSender), `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, book.calls)
	})
}

func TestCreateSlot(t *testing.T) {
	body := `{"area":"north","startTime":"2026-10-15T10:00:00Z","endTime":"2026-10-15T12:00:00Z","capacity":3}`

	t.Run("created", func(t *testing.T) {
		create := &stubCommand[commands.CreateSlotCommand]{}
		e := newTestEcho(t, Handlers{CreateSlot: create})

		rec := do(e, http.MethodPost, "/api/v1/slots", token(t, identity.RoleAdmin), body)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[Created](t, rec)
		assert.NotEqual(t, [16]byte{}, [16]byte(created.Id))
		require.Len(t, create.calls, 1)
		assert.Nil(t, create.calls[0].Available())
	})

	t.Run("available_override", func(t *testing.T) {
		create := &stubCommand[commands.CreateSlotCommand]{}
		e := newTestEcho(t, Handlers{CreateSlot: create})

		rec := do(e, http.MethodPost, "/api/v1/slots", token(t, identity.RoleAdmin),
			`{"area":"north","startTime":"2026-10-15T10:00:00Z","endTime":"2026-10-15T12:00:00Z","capacity":3,"available":1}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Len(t, create.calls, 1)
		require.NotNil(t, create.calls[0].Available())
		assert.Equal(t, 1, *create.calls[0].Available())
	})

	t.Run("access_denied", func(t *testing.T) {
		create := &stubCommand[commands.CreateSlotCommand]{err: errs.NewAccessDeniedError("create", "slot")}
		e := newTestEcho(t, Handlers{CreateSlot: create})

		rec := do(e, http.MethodPost, "/api/v1/slots", token(t, identity.RoleSender), body)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("end_before_start", func(t *testing.T) {
		create := &stubCommand[commands.CreateSlotCommand]{}
		e := newTestEcho(t, Handlers{CreateSlot: create})

		rec := do(e, http.MethodPost, "/api/v1/slots", token(t, identity.RoleAdmin),
			`{"area":"north","startTime":"2026-10-15T12:00:00Z","endTime":"2026-10-15T10:00:00Z"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Empty(t, create.calls)
	})
}

func TestAdjustSlotCapacity_ReportsOverbooking(t *testing.T) {
	start := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	window, err := slot.NewWindow(start, start.Add(2*time.Hour))
	require.NoError(t, err)
	s, err := slot.NewSlot(kernel.NewUUID(), "north", window, 2)
	require.NoError(t, err)
	require.NoError(t, s.OverrideAvailable(0))

	adjust := &stubResult[commands.AdjustSlotCapacityCommand, commands.AdjustSlotCapacityResult]{
		result: commands.AdjustSlotCapacityResult{Slot: s, BoundCount: 3, Overbooked: 1},
	}
	e := newTestEcho(t, Handlers{AdjustCapacity: adjust})

	rec := do(e, http.MethodPut, fmt.Sprintf("/api/v1/slots/%s/capacity", s.ID()),
		token(t, identity.RoleAdmin), `{"capacity":2}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[CapacityReport](t, rec)
	assert.Equal(t, CapacityReport{
		SlotId: s.ID().Bytes(), Capacity: 2, Available: 0, BoundOrders: 3, Overbooked: 1,
	}, report)
}

func TestUnbindSlotForOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	target := fmt.Sprintf("/api/v1/orders/%s/slot", orderID)

	t.Run("released", func(t *testing.T) {
		released := kernel.NewUUID()
		unbind := &stubResult[commands.UnbindSlotForOrderCommand, *kernel.UUID]{result: &released}
		e := newTestEcho(t, Handlers{UnbindSlot: unbind})

		rec := do(e, http.MethodDelete, target, token(t, identity.RoleSender), "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[Unbinding](t, rec)
		require.NotNil(t, body.ReleasedSlotId)
		assert.Equal(t, released.Bytes(), *body.ReleasedSlotId)
	})

	t.Run("nothing_bound", func(t *testing.T) {
		unbind := &stubResult[commands.UnbindSlotForOrderCommand, *kernel.UUID]{}
		e := newTestEcho(t, Handlers{UnbindSlot: unbind})

		rec := do(e, http.MethodDelete, target, token(t, identity.RoleSender), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"releasedSlotId":null`)
	})
}

func TestGetSlot_NotFound(t *testing.T) {
	get := &stubResult[queries.GetSlotQuery, queries.SlotView]{err: slot.ErrSlotNotFound}
	e := newTestEcho(t, Handlers{GetSlot: get})

	rec := do(e, http.MethodGet, "/api/v1/slots/"+kernel.NewUUID().String(), token(t, identity.RoleAdmin), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSlot_MalformedIDIsRejected(t *testing.T) {
	get := &stubResult[queries.GetSlotQuery, queries.SlotView]{}
	e := newTestEcho(t, Handlers{GetSlot: get})

	rec := do(e, http.MethodGet, "/api/v1/slots/not-a-uuid", token(t, identity.RoleAdmin), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, get.calls)
}

func TestCreateOrder_RateLimited(t *testing.T) {
	create := &stubCommand[commands.CreateOrderCommand]{}
	e := newTestEcho(t, Handlers{CreateOrder: create}, func(o *Options) {
		o.BookingRate = 0.001
		o.BookingBurst = 1
	})
	auth := token(t, identity.RoleSender)

	first := do(e, http.MethodPost, "/api/v1/orders", auth, `{"area":"north"}`)
	second := do(e, http.MethodPost, "/api/v1/orders", auth, `{"area":"north"}`)

	assert.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Len(t, create.calls, 1)
}

func TestCreateOrder_HalfALocationIsRejected(t *testing.T) {
	create := &stubCommand[commands.CreateOrderCommand]{}
	e := newTestEcho(t, Handlers{CreateOrder: create})

	rec := do(e, http.MethodPost, "/api/v1/orders", token(t, identity.RoleSender), `{"area":"north","latitude":10}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, create.calls)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		e := newTestEcho(t, Handlers{})
		rec := do(e, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy", func(t *testing.T) {
		e := newTestEcho(t, Handlers{}, func(o *Options) {
			o.Health = func(context.Context) error { return errors.New("database is down") }
		})
		rec := do(e, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsEndpoint_ExposesRequestLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestEcho(t, Handlers{}, func(o *Options) {
		o.Metrics = metrics.New("test", reg)
		o.Gatherer = reg
	})

	_ = do(e, http.MethodGet, "/health", "", "")
	rec := do(e, http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_request_duration_seconds")
}

func TestSwaggerServesDescription(t *testing.T) {
	e := newTestEcho(t, Handlers{})

	rec := do(e, http.MethodGet, "/swagger/doc.json", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/slots/available")
}
