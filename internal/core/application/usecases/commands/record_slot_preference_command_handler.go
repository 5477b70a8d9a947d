package commands

import (
	"context"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/ports"

	"go.uber.org/zap"
)

// RecordSlotPreferenceCommandHandler forwards preference feedback to the
// advisor. Advisor failures are logged and swallowed: feedback never fails
// a request that got past validation and access checks.
type RecordSlotPreferenceCommandHandler struct {
	advisor    ports.SlotAdvisor
	uowFactory UoWFactory
	clock      kernel.Clock
	logger     *zap.Logger
}

func NewRecordSlotPreferenceCommandHandler(
	advisor ports.SlotAdvisor,
	uowFactory UoWFactory,
	clock kernel.Clock,
	logger *zap.Logger,
) RecordSlotPreferenceCommandHandler {
	return RecordSlotPreferenceCommandHandler{
		advisor:    advisor,
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With(zap.String("component", "slot_preference")),
	}
}

func (h RecordSlotPreferenceCommandHandler) Handle(ctx context.Context, cmd RecordSlotPreferenceCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	s, err := uow.SlotRepository().Get(ctx, cmd.SlotID())
	if err != nil {
		return err
	}

	pctx := cmd.Hints()
	if pctx.RecipientID == "" {
		pctx.RecipientID = cmd.Principal().UserID().String()
	}
	if pctx.Now.IsZero() {
		pctx.Now = h.clock.Now()
	}

	if orderID := cmd.OrderID(); orderID != nil {
		o, getErr := uow.OrderRepository().Get(ctx, *orderID)
		if getErr != nil {
			return getErr
		}
		if err = cmd.Principal().CanAccessOrder(o.SenderID()); err != nil {
			return err
		}

		addr := o.Address()
		if pctx.AddressType == "" {
			pctx.AddressType = string(addr.Type())
		}
		if pctx.PostalCode == "" {
			pctx.PostalCode = addr.PostalCode()
		}
		if pctx.Location == nil {
			pctx.Location = addr.Location()
		}
	}

	feedback := prediction.Feedback{
		Context: pctx,
		Selected: prediction.Candidate{
			SlotID: s.ID(),
			Start:  s.Window().Start(),
			End:    s.Window().End(),
		},
	}
	if err = h.advisor.RecordPreference(ctx, feedback); err != nil {
		h.logger.Warn("advisor did not accept preference",
			zap.Stringer("slot_id", s.ID()),
			zap.Error(err),
		)
	}

	return nil
}
