package memory

import (
	"context"

	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"

	"github.com/google/uuid"
)

type UnitOfWorkFactory struct {
	store *Store
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork journals the rows it writes between Begin and Commit. Rollback
// puts back only those rows, so writes made meanwhile through other
// repositories survive.
//
// A slot row touched only by metadata writes keeps its current capacity and
// availability on rollback. A slot whose counter this unit moved itself is
// restored whole, the way a row lock in PostgreSQL would have kept other
// writers out until the rollback.
type UnitOfWork struct {
	store   *Store
	journal *journal
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.journal != nil {
		return nil
	}
	u.journal = newJournal()
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if u.journal == nil {
		return ErrNoTransaction
	}
	u.journal = nil
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.journal == nil {
		return ErrNoTransaction
	}

	u.store.mu.Lock()
	u.journal.undo(u.store)
	u.store.mu.Unlock()

	u.journal = nil
	return nil
}

// SlotRepository journals its writes while the unit is active.
func (u *UnitOfWork) SlotRepository() ports.SlotRepository {
	return &SlotRepository{store: u.store, journal: u.journal}
}

// OrderRepository journals its writes while the unit is active.
func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{store: u.store, journal: u.journal}
}

type slotImage struct {
	params  slot.RestoreParams
	existed bool
	counter bool
}

type orderImage struct {
	params  order.RestoreParams
	existed bool
}

// journal holds the first image of every row a unit wrote. Its methods run
// under the store lock and are no-ops on a nil journal.
type journal struct {
	slots  map[uuid.UUID]slotImage
	orders map[uuid.UUID]orderImage
}

func newJournal() *journal {
	return &journal{
		slots:  make(map[uuid.UUID]slotImage),
		orders: make(map[uuid.UUID]orderImage),
	}
}

// slot records key before a write. counter marks writes that move capacity
// or availability.
func (j *journal) slot(s *Store, key uuid.UUID, counter bool) {
	if j == nil {
		return
	}
	img, seen := j.slots[key]
	if !seen {
		img.params, img.existed = s.slots[key]
	}
	img.counter = img.counter || counter
	j.slots[key] = img
}

func (j *journal) order(s *Store, key uuid.UUID) {
	if j == nil {
		return
	}
	if _, seen := j.orders[key]; seen {
		return
	}
	p, existed := s.orders[key]
	j.orders[key] = orderImage{params: p, existed: existed}
}

func (j *journal) undo(s *Store) {
	for key, img := range j.slots {
		if !img.existed {
			delete(s.slots, key)
			continue
		}
		restored := img.params
		if current, ok := s.slots[key]; ok && !img.counter {
			restored.Capacity, restored.Available = current.Capacity, current.Available
		}
		s.slots[key] = restored
	}
	for key, img := range j.orders {
		if !img.existed {
			delete(s.orders, key)
			continue
		}
		s.orders[key] = img.params
	}
}
