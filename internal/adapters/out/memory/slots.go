package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/errs"
)

// SlotRepository is the in-memory ports.SlotRepository.
type SlotRepository struct {
	store   *Store
	journal *journal
}

func (r *SlotRepository) Add(_ context.Context, s *slot.Slot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := s.ID().Bytes()
	if _, exists := r.store.slots[key]; exists {
		return errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("slot %s already exists", s.ID()))
	}

	p := slotParams(s)
	now := r.store.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.journal.slot(r.store, key, false)
	r.store.slots[key] = p
	return nil
}

func (r *SlotRepository) UpdateMetadata(_ context.Context, s *slot.Slot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := s.ID().Bytes()
	current, ok := r.store.slots[key]
	if !ok {
		return notFound(s.ID())
	}

	next := slotParams(s)
	next.Capacity = current.Capacity
	next.Available = current.Available
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.store.now()
	r.journal.slot(r.store, key, false)
	r.store.slots[key] = next
	return nil
}

func (r *SlotRepository) Get(_ context.Context, id kernel.UUID) (*slot.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.slots[id.Bytes()]
	if !ok {
		return nil, notFound(id)
	}
	return slot.RestoreSlot(p)
}

func (r *SlotRepository) Delete(_ context.Context, id kernel.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := id.Bytes()
	if _, ok := r.store.slots[key]; !ok {
		return notFound(id)
	}
	if r.store.boundTo(key) > 0 {
		return fmt.Errorf("slot %s: %w", id, slot.ErrSlotHasBookings)
	}
	r.journal.slot(r.store, key, false)
	delete(r.store.slots, key)
	return nil
}

func (r *SlotRepository) TryReserve(_ context.Context, id kernel.UUID) (*slot.Slot, bool, error) {
	var reserved *slot.Slot
	err := r.mutate(id, func(s *slot.Slot) error {
		if err := s.Reserve(); err != nil {
			return err
		}
		reserved = s
		return nil
	})
	if err != nil {
		if notApplied(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return reserved, true, nil
}

func (r *SlotRepository) Release(_ context.Context, id kernel.UUID) (*slot.Slot, error) {
	var released *slot.Slot
	err := r.mutate(id, func(s *slot.Slot) error {
		s.Release()
		released = s
		return nil
	})
	return released, err
}

func (r *SlotRepository) SetCapacity(_ context.Context, id kernel.UUID, capacity int) (*slot.Slot, error) {
	var adjusted *slot.Slot
	err := r.mutate(id, func(s *slot.Slot) error {
		if err := s.AdjustCapacity(capacity); err != nil {
			return err
		}
		adjusted = s
		return nil
	})
	return adjusted, err
}

func (r *SlotRepository) ListDrift(_ context.Context, cutoff time.Time) ([]ports.SlotDrift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	drifts := make([]ports.SlotDrift, 0)
	for key, p := range r.store.slots {
		if !p.UpdatedAt.Before(cutoff) {
			continue
		}
		bound := r.store.boundTo(key)
		expected := max(0, p.Capacity-bound)
		if p.Available == expected {
			continue
		}
		drifts = append(drifts, ports.SlotDrift{
			SlotID:    p.ID,
			Capacity:  p.Capacity,
			Available: p.Available,
			Expected:  expected,
			Bound:     bound,
			UpdatedAt: p.UpdatedAt,
		})
	}

	slices.SortFunc(drifts, func(a, b ports.SlotDrift) int {
		return strings.Compare(a.SlotID.String(), b.SlotID.String())
	})
	return drifts, nil
}

func (r *SlotRepository) CompareAndSetAvailable(
	_ context.Context,
	id kernel.UUID,
	expected, next int,
	updatedAt time.Time,
) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := id.Bytes()
	p, ok := r.store.slots[key]
	if !ok || p.Available != expected || !p.UpdatedAt.Equal(updatedAt) {
		return false, nil
	}

	p.Available = max(0, min(next, p.Capacity))
	p.UpdatedAt = r.store.now()
	r.journal.slot(r.store, key, true)
	r.store.slots[key] = p
	return true, nil
}

func (r *SlotRepository) DeactivateEndedBefore(_ context.Context, t time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for key, p := range r.store.slots {
		if p.IsActive && p.End.Before(t) {
			p.IsActive = false
			p.UpdatedAt = r.store.now()
			r.journal.slot(r.store, key, false)
			r.store.slots[key] = p
			n++
		}
	}
	return n, nil
}

// mutate applies fn to a copy of the slot under the store lock and saves it
// when fn succeeds.
func (r *SlotRepository) mutate(id kernel.UUID, fn func(*slot.Slot) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := id.Bytes()
	p, ok := r.store.slots[key]
	if !ok {
		return notFound(id)
	}

	s, err := slot.RestoreSlot(p)
	if err != nil {
		return err
	}
	if err = fn(s); err != nil {
		return err
	}

	next := slotParams(s)
	next.CreatedAt = p.CreatedAt
	next.UpdatedAt = r.store.now()
	r.journal.slot(r.store, key, true)
	r.store.slots[key] = next

	// hand back what a RETURNING clause would
	restored, err := slot.RestoreSlot(next)
	if err != nil {
		return err
	}
	*s = *restored
	return nil
}

// notApplied reports the failures a conditional UPDATE would express as zero
// affected rows.
func notApplied(err error) bool {
	return errors.Is(err, slot.ErrSlotNotFound) ||
		errors.Is(err, slot.ErrSlotInactive) ||
		errors.Is(err, slot.ErrSlotFull)
}

func notFound(id kernel.UUID) error {
	return errs.NewObjectNotFoundErrorWithCause("slot", id.String(), slot.ErrSlotNotFound)
}
