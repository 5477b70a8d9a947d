package ports

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Slot bindings are written through BindSlot and UnbindSlot rather than
// Update. Both are conditional on the binding currently stored, which makes
// the pairing with a reservation or release happen at most once per
// transition even when requests race.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status and address changes of an existing order.
	// The slot binding columns are not written.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order or returns an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Delete removes the order.
	Delete(ctx context.Context, id kernel.UUID) error

	// BindSlot stores the binding only if the order currently holds none.
	// It returns order.ErrOrderAlreadyBound when another binding won.
	BindSlot(ctx context.Context, orderID, slotID kernel.UUID, scheduledAt time.Time) error

	// UnbindSlot clears the binding only if the order still holds slotID and
	// reports whether it did.
	UnbindSlot(ctx context.Context, orderID, slotID kernel.UUID) (bool, error)

	// ListBySlot returns the orders bound to a slot.
	ListBySlot(ctx context.Context, slotID kernel.UUID) ([]*order.Order, error)

	// CountBySlot returns how many orders are bound to a slot.
	CountBySlot(ctx context.Context, slotID kernel.UUID) (int, error)

	// RescheduleBySlot moves the scheduled delivery time of every order bound
	// to slotID and returns how many orders were touched.
	RescheduleBySlot(ctx context.Context, slotID kernel.UUID, scheduledAt time.Time) (int64, error)

	// ClearSlot drops every binding to slotID and returns how many orders
	// lost their binding.
	ClearSlot(ctx context.Context, slotID kernel.UUID) (int64, error)
}
