// Package commands contains the operations that change slots, orders and
// their bindings. Every command is built by a guarded constructor that
// validates its input; every handler takes the authenticated principal from
// the command, never from ambient state.
package commands

import (
	"context"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// SlotRepoFactory provides access to the slot repository within a transaction.
	SlotRepoFactory interface {
		SlotRepository() ports.SlotRepository
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// UoW manages transactions across slots and orders.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   slots := uow.SlotRepository()
	//   orders := uow.OrderRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		SlotRepoFactory
		OrderRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)

// SlotAdmission is the capacity side of booking. It is satisfied by
// *admission.Controller.
type SlotAdmission interface {
	Reserve(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error)
	Release(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error)
	Compensate(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error)
	AdjustCapacity(ctx context.Context, slotID kernel.UUID, capacity int) (*slot.Slot, error)
}

// UoWFactoryFunc adapts a function to UoWFactory.
type UoWFactoryFunc func() UoW

func (f UoWFactoryFunc) Create() UoW {
	return f()
}
