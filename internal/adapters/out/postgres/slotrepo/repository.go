package slotrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"optideliver/internal/adapters/out/postgres/pgerr"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// clock_timestamp advances inside a transaction, unlike now(), so every
// write gets its own updated_at and reconciliation can tell writes apart.
var now = gorm.Expr("clock_timestamp()")

// reservable is the admission condition evaluated by PostgreSQL at write time.
const reservable = `id = ? AND is_active AND available > 0
	AND (assigned_carrier_id IS NULL OR capacity - available < max_bookings_per_carrier)`

// GormSlotRepository implements ports.SlotRepository using GORM.
type GormSlotRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormSlotRepository(db *gorm.DB, tracker aggregateTracker) *GormSlotRepository {
	return &GormSlotRepository{
		db:      db,
		tracker: tracker,
	}
}

var _ ports.SlotRepository = (*GormSlotRepository)(nil)

func (r *GormSlotRepository) Add(ctx context.Context, s *slot.Slot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return mapWriteError(err, s.ID())
	}

	r.tracker.TrackAggregate(s.ID(), s)
	return nil
}

func (r *GormSlotRepository) UpdateMetadata(ctx context.Context, s *slot.Slot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&SlotDTO{}).
		Where("id = ?", dto.ID).
		Updates(metadataColumns(dto))
	if result.Error != nil {
		return mapWriteError(result.Error, s.ID())
	}
	if result.RowsAffected == 0 {
		return notFound(s.ID())
	}

	r.tracker.TrackAggregate(s.ID(), s)
	return nil
}

func (r *GormSlotRepository) Get(ctx context.Context, id kernel.UUID) (*slot.Slot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SlotDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// Delete fails with slot.ErrSlotHasBookings while orders still reference the slot.
func (r *GormSlotRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&SlotDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return mapWriteError(result.Error, id)
	}
	if result.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (r *GormSlotRepository) TryReserve(ctx context.Context, id kernel.UUID) (*slot.Slot, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	var dto SlotDTO
	result := r.db.WithContext(ctx).
		Model(&dto).
		Clauses(clause.Returning{}).
		Where(reservable, id.Bytes()).
		Updates(map[string]any{
			"available":  gorm.Expr("available - 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	s, err := toDomain(dto)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (r *GormSlotRepository) Release(ctx context.Context, id kernel.UUID) (*slot.Slot, error) {
	return r.updateReturning(ctx, id, map[string]any{
		"available":  gorm.Expr("LEAST(available + 1, capacity)"),
		"updated_at": now,
	})
}

func (r *GormSlotRepository) SetCapacity(ctx context.Context, id kernel.UUID, capacity int) (*slot.Slot, error) {
	if capacity < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"capacity",
			fmt.Errorf("%w: %d is negative", slot.ErrInvalidCapacity, capacity),
		)
	}

	return r.updateReturning(ctx, id, map[string]any{
		"capacity":   capacity,
		"available":  gorm.Expr("LEAST(available, ?)", capacity),
		"updated_at": now,
	})
}

func (r *GormSlotRepository) ListDrift(ctx context.Context, cutoff time.Time) ([]ports.SlotDrift, error) {
	var rows []driftRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			s.id,
			s.capacity,
			s.available,
			COUNT(o.id) AS bound,
			s.updated_at
		FROM time_slots s
		LEFT JOIN orders o ON o.slot_id = s.id
		WHERE s.updated_at < ?
		GROUP BY s.id
		HAVING s.available <> GREATEST(0, s.capacity - COUNT(o.id))
		ORDER BY s.start_time
	`, cutoff).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	drifts := make([]ports.SlotDrift, 0, len(rows))
	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		drifts = append(drifts, ports.SlotDrift{
			SlotID:    id,
			Capacity:  row.Capacity,
			Available: row.Available,
			Expected:  max(0, row.Capacity-row.Bound),
			Bound:     row.Bound,
			UpdatedAt: row.UpdatedAt,
		})
	}

	return drifts, nil
}

func (r *GormSlotRepository) CompareAndSetAvailable(
	ctx context.Context,
	id kernel.UUID,
	expected, next int,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&SlotDTO{}).
		Where("id = ? AND available = ? AND updated_at = ?", id.Bytes(), expected, updatedAt).
		Updates(map[string]any{
			"available":  gorm.Expr("LEAST(GREATEST(?::int, 0), capacity)", next),
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormSlotRepository) DeactivateEndedBefore(ctx context.Context, t time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&SlotDTO{}).
		Where("is_active AND end_time < ?", t).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *GormSlotRepository) updateReturning(
	ctx context.Context,
	id kernel.UUID,
	columns map[string]any,
) (*slot.Slot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SlotDTO
	result := r.db.WithContext(ctx).
		Model(&dto).
		Clauses(clause.Returning{}).
		Where("id = ?", id.Bytes()).
		Updates(columns)
	if result.Error != nil {
		return nil, mapWriteError(result.Error, id)
	}
	if result.RowsAffected == 0 {
		return nil, notFound(id)
	}

	return toDomain(dto)
}

func notFound(id kernel.UUID) error {
	return errs.NewObjectNotFoundErrorWithCause("slot", id.String(), slot.ErrSlotNotFound)
}

func mapWriteError(err error, id kernel.UUID) error {
	switch {
	case pgerr.IsForeignKeyViolation(err):
		return fmt.Errorf("slot %s: %w", id, slot.ErrSlotHasBookings)
	case pgerr.IsCheckViolation(err, "time_slots_window_check"):
		return fmt.Errorf("slot %s: %w", id, slot.ErrInvalidWindow)
	case pgerr.IsCheckViolation(err, ""):
		return fmt.Errorf("slot %s: %w", id, slot.ErrInvalidCapacity)
	case pgerr.IsUniqueViolation(err):
		return errs.NewValueIsInvalidErrorWithCause("id", err)
	default:
		return err
	}
}
