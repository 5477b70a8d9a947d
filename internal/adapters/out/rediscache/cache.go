// Package rediscache keeps advisory rankings in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.RankingCache = (*RankingCache)(nil)

// RankingCache stores predictions as JSON strings with a TTL.
type RankingCache struct {
	client redis.Cmdable
}

func NewRankingCache(client redis.Cmdable) *RankingCache {
	return &RankingCache{client: client}
}

type predictionDTO struct {
	SlotID      string  `json:"slot_id"`
	Confidence  float64 `json:"confidence"`
	Rank        int     `json:"rank"`
	Explanation string  `json:"explanation,omitempty"`
	Source      string  `json:"source"`
}

func (c *RankingCache) Get(ctx context.Context, key string) ([]prediction.Prediction, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	var dtos []predictionDTO
	if err = json.Unmarshal(raw, &dtos); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}

	out := make([]prediction.Prediction, 0, len(dtos))
	for _, d := range dtos {
		id, err := kernel.UUIDFromString(d.SlotID)
		if err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, prediction.Prediction{
			SlotID:      id,
			Confidence:  d.Confidence,
			Rank:        d.Rank,
			Explanation: d.Explanation,
			Source:      prediction.Source(d.Source),
		})
	}
	return out, true, nil
}

func (c *RankingCache) Set(ctx context.Context, key string, predictions []prediction.Prediction, ttl time.Duration) error {
	dtos := make([]predictionDTO, 0, len(predictions))
	for _, p := range predictions {
		dtos = append(dtos, predictionDTO{
			SlotID:      p.SlotID.String(),
			Confidence:  p.Confidence,
			Rank:        p.Rank,
			Explanation: p.Explanation,
			Source:      string(p.Source),
		})
	}

	raw, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err = c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
