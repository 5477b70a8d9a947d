package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"
)

// OrderRepository is the in-memory ports.OrderRepository.
type OrderRepository struct {
	store   *Store
	journal *journal
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := aggregate.ID().Bytes()
	if _, exists := r.store.orders[key]; exists {
		return errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("order %s already exists", aggregate.ID()))
	}

	p := orderParams(aggregate)
	if p.SlotID != nil {
		if _, ok := r.store.slots[p.SlotID.Bytes()]; !ok {
			return fmt.Errorf("order %s: %w", aggregate.ID(), slot.ErrSlotNotFound)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.store.now()
	}
	r.journal.order(r.store, key)
	r.store.orders[key] = p
	return nil
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := aggregate.ID().Bytes()
	current, ok := r.store.orders[key]
	if !ok {
		return notFoundOrder(aggregate.ID())
	}

	current.Address = aggregate.Address()
	current.Status = aggregate.Status()
	r.journal.order(r.store, key)
	r.store.orders[key] = current
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.orders[id.Bytes()]
	if !ok {
		return nil, notFoundOrder(id)
	}
	return order.RestoreOrder(p)
}

func (r *OrderRepository) Delete(_ context.Context, id kernel.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id.Bytes()]; !ok {
		return notFoundOrder(id)
	}
	r.journal.order(r.store, id.Bytes())
	delete(r.store.orders, id.Bytes())
	return nil
}

func (r *OrderRepository) BindSlot(_ context.Context, orderID, slotID kernel.UUID, scheduledAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := orderID.Bytes()
	p, ok := r.store.orders[key]
	if !ok {
		return notFoundOrder(orderID)
	}
	if _, exists := r.store.slots[slotID.Bytes()]; !exists {
		return notFound(slotID)
	}
	if p.SlotID != nil {
		return order.ErrOrderAlreadyBound
	}
	if err := p.Status.ValidateBind(); err != nil {
		return err
	}

	id, at := slotID, scheduledAt
	p.SlotID, p.ScheduledDeliveryAt = &id, &at
	r.journal.order(r.store, key)
	r.store.orders[key] = p
	return nil
}

func (r *OrderRepository) UnbindSlot(_ context.Context, orderID, slotID kernel.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := orderID.Bytes()
	p, ok := r.store.orders[key]
	if !ok || p.SlotID == nil || !p.SlotID.IsEqual(slotID) {
		return false, nil
	}

	p.SlotID, p.ScheduledDeliveryAt = nil, nil
	r.journal.order(r.store, key)
	r.store.orders[key] = p
	return true, nil
}

func (r *OrderRepository) ListBySlot(_ context.Context, slotID kernel.UUID) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bound := make([]order.RestoreParams, 0)
	for _, p := range r.store.orders {
		if p.SlotID != nil && p.SlotID.IsEqual(slotID) {
			bound = append(bound, p)
		}
	}
	slices.SortFunc(bound, func(a, b order.RestoreParams) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})

	orders := make([]*order.Order, 0, len(bound))
	for _, p := range bound {
		o, err := order.RestoreOrder(p)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) CountBySlot(_ context.Context, slotID kernel.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.boundTo(slotID.Bytes()), nil
}

func (r *OrderRepository) RescheduleBySlot(_ context.Context, slotID kernel.UUID, scheduledAt time.Time) (int64, error) {
	return r.eachBound(slotID, func(p *order.RestoreParams) {
		at := scheduledAt
		p.ScheduledDeliveryAt = &at
	}), nil
}

func (r *OrderRepository) ClearSlot(_ context.Context, slotID kernel.UUID) (int64, error) {
	return r.eachBound(slotID, func(p *order.RestoreParams) {
		p.SlotID, p.ScheduledDeliveryAt = nil, nil
	}), nil
}

func (r *OrderRepository) eachBound(slotID kernel.UUID, fn func(*order.RestoreParams)) int64 {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for key, p := range r.store.orders {
		if p.SlotID == nil || !p.SlotID.IsEqual(slotID) {
			continue
		}
		fn(&p)
		r.journal.order(r.store, key)
		r.store.orders[key] = p
		n++
	}
	return n
}

func notFoundOrder(id kernel.UUID) error {
	return errs.NewObjectNotFoundErrorWithCause("order", id.String(), order.ErrOrderNotFound)
}
