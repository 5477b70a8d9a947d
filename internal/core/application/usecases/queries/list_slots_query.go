package queries

import (
	"errors"
	"strings"
	"time"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

var ErrListSlotsQueryIsNotConstructed = errors.New(
	"ListSlotsQuery must be created via NewListSlotsQuery constructor",
)

// SlotFilter narrows a slot listing. Zero fields do not filter.
type SlotFilter struct {
	Area          string
	Day           string
	CarrierID     *kernel.UUID
	Active        *bool
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// ListSlotsQuery is the administrators' view of slots, including inactive
// and fully booked ones.
type ListSlotsQuery struct {
	principal identity.Principal
	filter    SlotFilter

	guard guard.ConstructorGuard
}

// NewListSlotsQuery rejects a malformed day and clamps the page size to
// [1, MaxListLimit], with zero meaning DefaultListLimit.
func NewListSlotsQuery(principal identity.Principal, filter SlotFilter) (ListSlotsQuery, error) {
	filter.Area = strings.TrimSpace(filter.Area)
	filter.Day = strings.TrimSpace(filter.Day)

	if filter.Day != "" {
		if _, err := time.Parse(DayLayout, filter.Day); err != nil {
			return ListSlotsQuery{}, errs.NewValueIsInvalidErrorWithCause("day", err)
		}
	}
	if filter.CarrierID != nil {
		if err := filter.CarrierID.Validate(); err != nil {
			return ListSlotsQuery{}, err
		}
	}
	if filter.Offset < 0 {
		return ListSlotsQuery{}, errs.NewValueIsOutOfRangeError("offset", filter.Offset, 0, nil)
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultListLimit
	case filter.Limit < 0:
		return ListSlotsQuery{}, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxListLimit)
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}

	return ListSlotsQuery{
		principal: principal,
		filter:    filter,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListSlotsQuery) Validate() error {
	return q.guard.Validate(ErrListSlotsQueryIsNotConstructed)
}

func (q ListSlotsQuery) Principal() identity.Principal {
	return q.principal
}

func (q ListSlotsQuery) Filter() SlotFilter {
	return q.filter
}
