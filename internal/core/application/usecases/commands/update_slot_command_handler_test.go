package commands_test

import (
	"testing"
	"time"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateSlotCommand_RejectsEmptyChanges(t *testing.T) {
	f := newFixture(t)
	_, err := commands.NewUpdateSlotCommand(f.admin, f.addSlot(t, 1).ID(), commands.SlotChanges{})
	require.Error(t, err)
}

func TestUpdateSlotCommandHandler_Handle_MovesBoundOrders(t *testing.T) {
	// Arrange
	f := newFixture(t)
	s := f.addSlot(t, 3)
	o := f.addOrder(t, f.sender)
	book, err := commands.NewBookSlotForOrderCommand(f.sender, o.ID(), s.ID())
	require.NoError(t, err)
	_, err = commands.NewBookSlotForOrderCommandHandler(f.admission, f.factory, f.logger).Handle(t.Context(), book)
	require.NoError(t, err)

	newStart := monday9.Add(3 * time.Hour)
	newEnd := newStart.Add(2 * time.Hour)
	area := "south"
	cmd, err := commands.NewUpdateSlotCommand(f.admin, s.ID(), commands.SlotChanges{
		Area:  &area,
		Start: &newStart,
		End:   &newEnd,
	})
	require.NoError(t, err)

	// Act
	err = commands.NewUpdateSlotCommandHandler(f.factory, f.logger).Handle(t.Context(), cmd)

	// Assert
	require.NoError(t, err)
	updated, err := f.store.Slots().Get(t.Context(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, "south", updated.Area())
	assert.True(t, updated.Window().Start().Equal(newStart))
	assert.Equal(t, 2, updated.Available(), "metadata edits leave the counter alone")
	assert.True(t, f.order(t, o.ID()).ScheduledDeliveryAt().Equal(newStart))
}

func TestUpdateSlotCommandHandler_Handle_Errors(t *testing.T) {
	t.Run("window inverted by a partial change", func(t *testing.T) {
		f := newFixture(t)
		s := f.addSlot(t, 1)
		end := monday9.Add(-time.Hour)
		cmd, err := commands.NewUpdateSlotCommand(f.admin, s.ID(), commands.SlotChanges{End: &end})
		require.NoError(t, err)

		err = commands.NewUpdateSlotCommandHandler(f.factory, f.logger).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, slot.ErrInvalidWindow)
		unchanged, getErr := f.store.Slots().Get(t.Context(), s.ID())
		require.NoError(t, getErr)
		assert.True(t, unchanged.Window().End().Equal(monday9.Add(2*time.Hour)))
	})

	t.Run("non admin", func(t *testing.T) {
		f := newFixture(t)
		inactive := false
		cmd, err := commands.NewUpdateSlotCommand(f.sender, f.addSlot(t, 1).ID(), commands.SlotChanges{IsActive: &inactive})
		require.NoError(t, err)

		err = commands.NewUpdateSlotCommandHandler(f.factory, f.logger).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("deactivation", func(t *testing.T) {
		f := newFixture(t)
		s := f.addSlot(t, 1)
		inactive := false
		cmd, err := commands.NewUpdateSlotCommand(f.admin, s.ID(), commands.SlotChanges{IsActive: &inactive})
		require.NoError(t, err)

		require.NoError(t, commands.NewUpdateSlotCommandHandler(f.factory, f.logger).Handle(t.Context(), cmd))

		_, err = f.admission.Reserve(t.Context(), s.ID())
		require.ErrorIs(t, err, slot.ErrSlotInactive)
	})
}
