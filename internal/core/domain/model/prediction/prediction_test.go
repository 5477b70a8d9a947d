package prediction_test

import (
	"testing"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortAndRank(t *testing.T) {
	a, b, c := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	ranked := prediction.SortAndRank([]prediction.Prediction{
		{SlotID: a, Confidence: 0.5},
		{SlotID: b, Confidence: 0.9},
		{SlotID: c, Confidence: 0.5},
	})

	require.Len(t, ranked, 3)
	assert.True(t, ranked[0].SlotID.IsEqual(b))
	assert.True(t, ranked[1].SlotID.IsEqual(a), "ties keep input order")
	assert.True(t, ranked[2].SlotID.IsEqual(c))
	for i, p := range ranked {
		assert.Equal(t, i+1, p.Rank)
	}
}

func TestClamp(t *testing.T) {
	assert.InDelta(t, 0.0, prediction.Clamp(-0.3), 1e-9)
	assert.InDelta(t, 1.0, prediction.Clamp(1.7), 1e-9)
	assert.InDelta(t, 0.42, prediction.Clamp(0.42), 1e-9)
}
