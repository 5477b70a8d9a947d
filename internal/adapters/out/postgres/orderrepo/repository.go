package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"optideliver/internal/adapters/out/postgres/pgerr"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/errs"

	"gorm.io/gorm"
)

var now = gorm.Expr("clock_timestamp()")

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

// Add saves a new order to the database, including an initial binding if
// the order already carries one.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsForeignKeyViolation(err) {
			return fmt.Errorf("order %s: %w", aggregate.ID(), slot.ErrSlotNotFound)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves status and address of an existing order.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"area":         dto.Area,
		"postal_code":  dto.PostalCode,
		"address_type": dto.AddressType,
		"latitude":     dto.Latitude,
		"longitude":    dto.Longitude,
		"status":       dto.Status,
		"updated_at":   now,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return notFound(aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// BindSlot writes the binding only for an unbound order in a bindable status.
// When nothing was written a follow-up read tells the caller why.
func (r *GormOrderRepository) BindSlot(
	ctx context.Context,
	orderID, slotID kernel.UUID,
	scheduledAt time.Time,
) error {
	if err := errors.Join(orderID.Validate(), slotID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND slot_id IS NULL AND status IN ?",
			orderID.Bytes(), []int{int(order.Pending), int(order.Confirmed)}).
		Updates(map[string]any{
			"slot_id":               slotID.Bytes(),
			"scheduled_delivery_at": scheduledAt,
			"updated_at":            now,
		})
	if result.Error != nil {
		if pgerr.IsForeignKeyViolation(result.Error) {
			return errs.NewObjectNotFoundErrorWithCause("slot", slotID.String(), slot.ErrSlotNotFound)
		}
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if current.SlotID() != nil {
		return order.ErrOrderAlreadyBound
	}
	return current.Status().ValidateBind()
}

func (r *GormOrderRepository) UnbindSlot(ctx context.Context, orderID, slotID kernel.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND slot_id = ?", orderID.Bytes(), slotID.Bytes()).
		Updates(map[string]any{
			"slot_id":               nil,
			"scheduled_delivery_at": nil,
			"updated_at":            now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormOrderRepository) ListBySlot(ctx context.Context, slotID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", slotID.Bytes()).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) CountBySlot(ctx context.Context, slotID kernel.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("slot_id = ?", slotID.Bytes()).
		Count(&n).Error
	return int(n), err
}

func (r *GormOrderRepository) RescheduleBySlot(
	ctx context.Context,
	slotID kernel.UUID,
	scheduledAt time.Time,
) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("slot_id = ?", slotID.Bytes()).
		Updates(map[string]any{
			"scheduled_delivery_at": scheduledAt,
			"updated_at":            now,
		})
	return result.RowsAffected, result.Error
}

func (r *GormOrderRepository) ClearSlot(ctx context.Context, slotID kernel.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("slot_id = ?", slotID.Bytes()).
		Updates(map[string]any{
			"slot_id":               nil,
			"scheduled_delivery_at": nil,
			"updated_at":            now,
		})
	return result.RowsAffected, result.Error
}

func notFound(id kernel.UUID) error {
	return errs.NewObjectNotFoundErrorWithCause("order", id.String(), order.ErrOrderNotFound)
}
