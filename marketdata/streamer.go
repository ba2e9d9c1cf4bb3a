package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/cache/redis/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// SubscriptionSource lists the instruments the simulator should tick.
type SubscriptionSource interface {
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Streamer drives one simulator per subscribed instrument. Every cycle it
// writes the fresh quote into Redis and broadcasts the tick to WebSocket
// clients.
type Streamer struct {
	subs   SubscriptionSource
	redis  *providers.RedisProvider
	hub    *Hub
	logger *zap.Logger
	rng    *rand.Rand
	sims   map[string]*Simulator
}

func NewStreamer(subs SubscriptionSource, redisProvider *providers.RedisProvider, hub *Hub, rng *rand.Rand, logger *zap.Logger) *Streamer {
	return &Streamer{
		subs:   subs,
		redis:  redisProvider,
		hub:    hub,
		logger: logger,
		rng:    rng,
		sims:   make(map[string]*Simulator),
	}
}

// Cycle generates one tick per subscribed instrument. Newly subscribed
// instruments get a simulator on first sight; unsubscribed ones stop ticking
// but keep their last published quote in Redis.
func (st *Streamer) Cycle(ctx context.Context) error {
	subs, err := st.subs.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	active := make(map[string]bool, len(subs))
	for _, sub := range subs {
		active[sub.InstrumentID] = true
		if _, ok := st.sims[sub.InstrumentID]; !ok {
			st.sims[sub.InstrumentID] = NewSimulator(sub.InstrumentID, sub.InstrumentName, st.rng)
		}
	}
	for id := range st.sims {
		if !active[id] {
			delete(st.sims, id)
		}
	}

	for _, sim := range st.sims {
		tick := sim.Tick()

		price := fmt.Sprintf("%.2f", tick.Price)
		if err := st.redis.SetLatestQuote(ctx, tick.InstrumentID, price, tick.Timestamp); err != nil {
			return &models.TransientFeedError{Op: "publish quote", Err: err}
		}

		payload, err := json.Marshal(tick)
		if err != nil {
			st.logger.Warn("tick marshal failed", zap.String("instrument", tick.InstrumentID), zap.Error(err))
			continue
		}
		st.hub.Broadcast(payload)
	}
	return nil
}
