// Package marketdata provides the live price snapshot adapter, the Brownian
// tick simulator, and the WebSocket tick stream.
package marketdata

import (
	"context"
	"strconv"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/cache/redis/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// Quote is the normalized live price for one instrument.
type Quote struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// SnapshotProvider returns the full live-price snapshot on demand. Each call
// reflects current feed state; there is no caching layer.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (map[string]Quote, error)
}

// RedisSnapshot reads latest:<instrument_id> hashes out of Redis.
type RedisSnapshot struct {
	Redis *providers.RedisProvider
}

func NewRedisSnapshot(redisProvider *providers.RedisProvider) *RedisSnapshot {
	return &RedisSnapshot{Redis: redisProvider}
}

// Snapshot fetches every live quote. Instruments with a malformed or missing
// price field are treated as absent rather than failing the whole read; a
// Redis failure is reported as a transient feed error.
func (s *RedisSnapshot) Snapshot(ctx context.Context) (map[string]Quote, error) {
	raw, err := s.Redis.FetchAllLatest(ctx)
	if err != nil {
		return nil, &models.TransientFeedError{Op: "snapshot", Err: err}
	}
	return normalizeQuotes(raw), nil
}

func normalizeQuotes(raw map[string]map[string]string) map[string]Quote {
	quotes := make(map[string]Quote, len(raw))
	for instrumentID, fields := range raw {
		price, err := strconv.ParseFloat(fields["price"], 64)
		if err != nil {
			continue
		}
		quotes[instrumentID] = Quote{
			Price:     price,
			Timestamp: fields["timestamp"],
		}
	}
	return quotes
}
