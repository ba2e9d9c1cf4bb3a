package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Live quote hashes are stored under latest:<instrument_id> with fields
// "price" and "timestamp".
const latestPrefix = "latest:"

type RedisProvider struct {
	RedisClient *redis.Client
}

func NewRedisProvider(redisClient *redis.Client) (*RedisProvider, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("invalid redis client: nil pointer provided")
	}
	return &RedisProvider{RedisClient: redisClient}, nil
}

// SetLatestQuote writes the latest tick fields for an instrument.
func (p *RedisProvider) SetLatestQuote(ctx context.Context, instrumentID string, price, timestamp string) error {
	key := latestPrefix + instrumentID
	return p.RedisClient.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": timestamp,
	}).Err()
}

// FetchAllLatest scans every latest:* hash and returns the raw field maps
// keyed by instrument id with the prefix stripped.
func (p *RedisProvider) FetchAllLatest(ctx context.Context) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	var cursor uint64
	for {
		keys, next, err := p.RedisClient.Scan(ctx, cursor, latestPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			fields, err := p.RedisClient.HGetAll(ctx, key).Result()
			if err != nil {
				return nil, err
			}
			out[strings.TrimPrefix(key, latestPrefix)] = fields
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}
