package kernel_test

import (
	"testing"
	"time"

	"optideliver/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("spans the local calendar day", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 15, 30, 0, 0, kolkata)

		from, to := kernel.DayBounds(at, kolkata)

		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, kolkata), from)
		assert.Equal(t, time.Date(2024, 6, 1, 23, 59, 59, int(999*time.Millisecond), kolkata), to)
	})

	t.Run("converts before truncating", func(t *testing.T) {
		// 20:00 UTC on May 31 is already June 1 in Kolkata.
		at := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)

		from, _ := kernel.DayBounds(at, kolkata)

		assert.Equal(t, 1, from.Day())
		assert.Equal(t, time.June, from.Month())
	})
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, at, kernel.FixedClock{At: at}.Now())
}
