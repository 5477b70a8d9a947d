package http

import (
	"context"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/application/usecases/queries"
	"optideliver/internal/core/domain/model/kernel"
)

type commandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

type resultHandler[C, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Handlers are the use cases the HTTP server dispatches to.
type Handlers struct {
	CreateSlot       commandHandler[commands.CreateSlotCommand]
	UpdateSlot       commandHandler[commands.UpdateSlotCommand]
	AdjustCapacity   resultHandler[commands.AdjustSlotCapacityCommand, commands.AdjustSlotCapacityResult]
	AssignCarrier    commandHandler[commands.AssignCarrierCommand]
	DeleteSlot       commandHandler[commands.DeleteSlotCommand]
	CreateOrder      commandHandler[commands.CreateOrderCommand]
	BookSlot         resultHandler[commands.BookSlotForOrderCommand, commands.BookSlotForOrderResult]
	UnbindSlot       resultHandler[commands.UnbindSlotForOrderCommand, *kernel.UUID]
	CancelOrder      commandHandler[commands.CancelOrderCommand]
	DeleteOrder      commandHandler[commands.DeleteOrderCommand]
	RecordPreference commandHandler[commands.RecordSlotPreferenceCommand]

	FindAvailable resultHandler[queries.FindAvailableSlotsQuery, []queries.SlotView]
	RankSlots     resultHandler[queries.RankSlotsQuery, []queries.RankedSlot]
	GetSlot       resultHandler[queries.GetSlotQuery, queries.SlotView]
	ListSlots     resultHandler[queries.ListSlotsQuery, []queries.SlotView]
	GetOrder      resultHandler[queries.GetOrderQuery, queries.OrderView]
}
