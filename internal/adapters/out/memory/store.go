// Package memory keeps slots and orders in process memory. It reproduces
// the conditional-write semantics of the PostgreSQL adapter under a single
// mutex and backs unit tests and local runs without a database.
package memory

import (
	"errors"
	"sync"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"

	"github.com/google/uuid"
)

var ErrNoTransaction = errors.New("memory: no active transaction")

// Store is the shared state behind the repositories and units of work.
type Store struct {
	mu     sync.Mutex
	clock  kernel.Clock
	slots  map[uuid.UUID]slot.RestoreParams
	orders map[uuid.UUID]order.RestoreParams
}

func NewStore(clock kernel.Clock) *Store {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &Store{
		clock:  clock,
		slots:  make(map[uuid.UUID]slot.RestoreParams),
		orders: make(map[uuid.UUID]order.RestoreParams),
	}
}

func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

// UnitOfWorkFactory returns a factory whose units undo only their own writes
// on Rollback.
func (s *Store) UnitOfWorkFactory() *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: s}
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

func (s *Store) boundTo(slotID uuid.UUID) int {
	n := 0
	for _, o := range s.orders {
		if o.SlotID != nil && o.SlotID.Bytes() == slotID {
			n++
		}
	}
	return n
}

func slotParams(s *slot.Slot) slot.RestoreParams {
	var carrier *kernel.UUID
	if c := s.Carrier(); c != nil {
		id := *c
		carrier = &id
	}
	return slot.RestoreParams{
		ID:                    s.ID(),
		Area:                  s.Area(),
		Start:                 s.Window().Start(),
		End:                   s.Window().End(),
		Capacity:              s.Capacity(),
		Available:             s.Available(),
		CarrierID:             carrier,
		IsActive:              s.IsActive(),
		MaxBookingsPerCarrier: s.MaxBookingsPerCarrier(),
		Priority:              s.Priority(),
		CreatedAt:             s.CreatedAt(),
		UpdatedAt:             s.UpdatedAt(),
	}
}

func orderParams(o *order.Order) order.RestoreParams {
	p := order.RestoreParams{
		ID:        o.ID(),
		SenderID:  o.SenderID(),
		Address:   o.Address(),
		Status:    o.Status(),
		CreatedAt: o.CreatedAt(),
	}
	if id := o.SlotID(); id != nil {
		slotID := *id
		p.SlotID = &slotID
	}
	if at := o.ScheduledDeliveryAt(); at != nil {
		scheduled := *at
		p.ScheduledDeliveryAt = &scheduled
	}
	return p
}

var (
	_ ports.SlotRepository  = (*SlotRepository)(nil)
	_ ports.OrderRepository = (*OrderRepository)(nil)
	_ ports.UnitOfWork      = (*UnitOfWork)(nil)
)
