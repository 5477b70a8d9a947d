// Package ports defines the contracts between the slot admission core and its
// infrastructure. Repositories, the unit of work and outbound integrations
// are declared here and implemented in internal/adapters.
package ports

import (
	"context"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
)

// SlotRepository defines the persistence contract for slot aggregates.
//
// Capacity is never written through Add/UpdateMetadata after creation. The
// counter only moves through TryReserve, Release, SetCapacity and
// CompareAndSetAvailable, each of which must execute as a single conditional
// statement so that concurrent callers cannot oversell a slot.
type SlotRepository interface {
	// Add persists a new slot including its initial capacity and availability.
	Add(ctx context.Context, s *slot.Slot) error

	// UpdateMetadata persists area, window, carrier, activity, priority and
	// carrier limit. Capacity and availability are left untouched.
	UpdateMetadata(ctx context.Context, s *slot.Slot) error

	// Get returns the slot or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*slot.Slot, error)

	// Delete removes the slot. Deleting a missing slot returns an
	// errs.ObjectNotFoundError.
	Delete(ctx context.Context, id kernel.UUID) error

	// TryReserve decrements availability by one if, at write time, the slot
	// is active, has availability left and is under its carrier limit.
	// It returns the updated slot and true on success. When the condition
	// does not hold it returns nil and false without error; the caller
	// decides why by reading the slot.
	//
	// Example:
	//   s, ok, err := repo.TryReserve(ctx, slotID)
	//   if err != nil {
	//       return nil, err
	//   }
	//   if !ok {
	//       // not found, inactive, full or at the carrier limit
	//   }
	TryReserve(ctx context.Context, id kernel.UUID) (*slot.Slot, bool, error)

	// Release increments availability by one, never above capacity.
	// Inactive slots are released too. Returns an errs.ObjectNotFoundError
	// for a missing slot.
	Release(ctx context.Context, id kernel.UUID) (*slot.Slot, error)

	// SetCapacity replaces the capacity and clamps availability to it in one
	// statement.
	SetCapacity(ctx context.Context, id kernel.UUID, capacity int) (*slot.Slot, error)

	// ListDrift returns slots not modified since cutoff whose availability
	// differs from the one implied by their bound orders.
	ListDrift(ctx context.Context, cutoff time.Time) ([]SlotDrift, error)

	// CompareAndSetAvailable writes next only if availability still equals
	// expected and updated_at still equals updatedAt. It reports whether the
	// row was written.
	CompareAndSetAvailable(ctx context.Context, id kernel.UUID, expected, next int, updatedAt time.Time) (bool, error)

	// DeactivateEndedBefore deactivates active slots whose window ended
	// before t and returns how many were changed.
	DeactivateEndedBefore(ctx context.Context, t time.Time) (int64, error)
}

// SlotDrift describes a slot whose counter disagrees with its bindings.
type SlotDrift struct {
	SlotID    kernel.UUID
	Capacity  int
	Available int
	Expected  int
	Bound     int
	UpdatedAt time.Time
}

// Difference is positive when units leaked (fewer available than expected).
func (d SlotDrift) Difference() int {
	return d.Expected - d.Available
}
