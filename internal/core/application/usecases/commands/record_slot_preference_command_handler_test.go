package commands_test

import (
	"errors"
	"testing"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordSlotPreferenceCommandHandler_Handle_FillsHintsFromOrder(t *testing.T) {
	// Arrange
	f := newFixture(t)
	s := f.addSlot(t, 1)
	o := f.addOrder(t, f.sender)
	orderID := o.ID()

	advisor := new(MockSlotAdvisor)
	advisor.On("RecordPreference", mock.Anything, mock.MatchedBy(func(fb prediction.Feedback) bool {
		return fb.Selected.SlotID.IsEqual(s.ID()) &&
			fb.Selected.Start.Equal(monday9) &&
			fb.Context.RecipientID == f.sender.UserID().String() &&
			fb.Context.AddressType == string(order.Residential) &&
			fb.Context.PostalCode == "110001" &&
			fb.Context.Now.Equal(now)
	})).Return(nil).Once()

	cmd, err := commands.NewRecordSlotPreferenceCommand(f.sender, s.ID(), &orderID, prediction.Context{})
	require.NoError(t, err)
	handler := commands.NewRecordSlotPreferenceCommandHandler(advisor, f.factory, f.clock, f.logger)

	// Act
	err = handler.Handle(t.Context(), cmd)

	// Assert
	require.NoError(t, err)
	advisor.AssertExpectations(t)
}

func TestRecordSlotPreferenceCommandHandler_Handle_AdvisorFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	s := f.addSlot(t, 1)
	advisor := new(MockSlotAdvisor)
	advisor.On("RecordPreference", mock.Anything, mock.Anything).Return(errors.New("503")).Once()

	cmd, err := commands.NewRecordSlotPreferenceCommand(f.sender, s.ID(), nil, prediction.Context{PostalCode: "2000"})
	require.NoError(t, err)

	err = commands.NewRecordSlotPreferenceCommandHandler(advisor, f.factory, f.clock, f.logger).Handle(t.Context(), cmd)

	require.NoError(t, err)
	advisor.AssertExpectations(t)
}

func TestRecordSlotPreferenceCommandHandler_Handle_Errors(t *testing.T) {
	f := newFixture(t)
	advisor := new(MockSlotAdvisor)
	handler := commands.NewRecordSlotPreferenceCommandHandler(advisor, f.factory, f.clock, f.logger)

	cmd, err := commands.NewRecordSlotPreferenceCommand(f.sender, kernel.NewUUID(), nil, prediction.Context{})
	require.NoError(t, err)
	require.ErrorIs(t, handler.Handle(t.Context(), cmd), slot.ErrSlotNotFound)

	foreign := f.addOrder(t, principal(t, "sender"))
	foreignID := foreign.ID()
	cmd, err = commands.NewRecordSlotPreferenceCommand(f.sender, f.addSlot(t, 1).ID(), &foreignID, prediction.Context{})
	require.NoError(t, err)
	require.ErrorIs(t, handler.Handle(t.Context(), cmd), errs.ErrAccessDenied)

	advisor.AssertNotCalled(t, "RecordPreference", mock.Anything, mock.Anything)
}
