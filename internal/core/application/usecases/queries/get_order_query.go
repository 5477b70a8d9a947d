package queries

import (
	"errors"
	"time"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its slot binding.
type GetOrderQuery struct {
	principal identity.Principal
	orderID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(principal identity.Principal, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{principal: principal, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Principal() identity.Principal {
	return q.principal
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// OrderView is the read model of an order.
type OrderView struct {
	ID                  kernel.UUID
	SenderID            kernel.UUID
	Area                string
	PostalCode          string
	AddressType         string
	Latitude            *float64
	Longitude           *float64
	Status              string
	SlotID              *kernel.UUID
	ScheduledDeliveryAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
