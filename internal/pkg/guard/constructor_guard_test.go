package guard_test

import (
	"errors"
	"testing"

	"optideliver/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("window must be created via NewWindow")

	testCases := []struct {
		name     string
		guard    guard.ConstructorGuard
		given    error
		expected error
	}{
		{
			name:     "constructed_guard_with_custom_error",
			guard:    guard.NewConstructorGuard(),
			given:    errNotConstructed,
			expected: nil,
		},
		{
			name:     "constructed_guard_with_nil_error",
			guard:    guard.NewConstructorGuard(),
			given:    nil,
			expected: nil,
		},
		{
			name:     "zero_guard_returns_custom_error",
			guard:    guard.ConstructorGuard{},
			given:    errNotConstructed,
			expected: errNotConstructed,
		},
		{
			name:     "zero_guard_falls_back_to_default",
			guard:    guard.ConstructorGuard{},
			given:    nil,
			expected: guard.ErrDefaultConstructorGuard,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.guard.Validate(tc.given)
			if tc.expected == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tc.expected, err)
		})
	}
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type capacity struct {
		value int
		guard guard.ConstructorGuard
	}

	errCapacityNotConstructed := errors.New("capacity must be created via newCapacity")
	newCapacity := func(v int) (capacity, error) {
		if v < 0 {
			return capacity{}, errors.New("capacity cannot be negative")
		}
		return capacity{value: v, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_value_passes", func(t *testing.T) {
		c, err := newCapacity(5)
		require.NoError(t, err)
		require.NoError(t, c.guard.Validate(errCapacityNotConstructed))
		assert.Equal(t, 5, c.value)
	})

	t.Run("zero_value_fails", func(t *testing.T) {
		var c capacity
		assert.Equal(t, errCapacityNotConstructed, c.guard.Validate(errCapacityNotConstructed))
	})

	t.Run("copy_keeps_construction_flag", func(t *testing.T) {
		c, err := newCapacity(1)
		require.NoError(t, err)
		cp := c
		require.NoError(t, cp.guard.Validate(nil))
	})
}

func TestDefaultConstructorGuardMessage(t *testing.T) {
	assert.Equal(t, "object must be created via its constructor", guard.ErrDefaultConstructorGuard.Error())
}
