package slot

import (
	"fmt"
	"strings"

	"optideliver/internal/pkg/errs"
)

// Priority is advisory metadata shown to dispatchers. It never influences admission.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// DefaultPriority is applied to slots created without an explicit priority.
const DefaultPriority = PriorityMedium

func getPriorityStrings() map[Priority]string {
	//nolint:exhaustive // PriorityUnknown has no textual form
	return map[Priority]string{
		PriorityHigh:   "high",
		PriorityMedium: "medium",
		PriorityLow:    "low",
	}
}

// ParsePriority accepts "high", "medium" or "low" in any letter case.
// An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultPriority, nil
	}

	for p, str := range getPriorityStrings() {
		if strings.EqualFold(str, strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"priority", fmt.Errorf("%q is not one of high, medium, low", s))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "unknown"
}
