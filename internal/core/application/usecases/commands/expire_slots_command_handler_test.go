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

func TestExpireSlotsCommandHandler_Handle(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ended := f.addSlot(t, 1)
	_ = f.addSlot(t, 1)
	// only the slot moved into the past has ended
	past := monday9.Add(-48 * time.Hour)
	pastEnd := past.Add(time.Hour)
	move, err := commands.NewUpdateSlotCommand(f.admin, ended.ID(), commands.SlotChanges{Start: &past, End: &pastEnd})
	require.NoError(t, err)
	require.NoError(t, commands.NewUpdateSlotCommandHandler(f.factory, f.logger).Handle(t.Context(), move))

	cmd, err := commands.NewExpireSlotsCommand(monday9.Add(-time.Hour))
	require.NoError(t, err)
	handler := commands.NewExpireSlotsCommandHandler(f.factory, nil, f.logger)

	// Act
	n, err := handler.Handle(t.Context(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = f.admission.Reserve(t.Context(), ended.ID())
	require.ErrorIs(t, err, slot.ErrSlotInactive)

	again, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again)
}

func TestNewExpireSlotsCommand_RequiresInstant(t *testing.T) {
	_, err := commands.NewExpireSlotsCommand(time.Time{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
