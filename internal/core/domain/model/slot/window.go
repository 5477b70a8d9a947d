package slot

import (
	"fmt"
	"time"

	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

// Window is the [start, end) interval of a delivery slot. start < end always holds.
type Window struct { //nolint:recvcheck //using for validation
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, errs.NewValueIsRequiredErrorWithCause("window", ErrInvalidWindow)
	}
	if !start.Before(end) {
		return Window{}, errs.NewValueIsInvalidErrorWithCause(
			"window",
			fmt.Errorf("%w: start %s is not before end %s",
				ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339)),
		)
	}

	return Window{
		start: start,
		end:   end,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (w Window) Validate() error {
	return w.guard.Validate(ErrWindowIsNotConstructed)
}

func (w Window) Start() time.Time {
	return w.start
}

func (w Window) End() time.Time {
	return w.end
}

func (w Window) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// HasEnded reports whether the window closed at or before now.
func (w Window) HasEnded(now time.Time) bool {
	return !w.end.After(now)
}
