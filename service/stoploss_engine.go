package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

// StopLossEngine monitors trade-book entries carrying a stop-loss distance
// and force-closes them when the live price drifts within that distance of
// the fill price. The comparison is on absolute distance, so a move in the
// position's favor can trigger too — that mirrors the observed behavior and
// is kept deliberately.
//
// Policy: every eligible entry triggers within one sweep, not just the first
// found.
type StopLossEngine struct {
	Store  TradeStore
	Feed   marketdata.SnapshotProvider
	Locks  *InstrumentLocks
	Logger *zap.Logger
}

func NewStopLossEngine(store TradeStore, feed marketdata.SnapshotProvider, locks *InstrumentLocks, logger *zap.Logger) *StopLossEngine {
	return &StopLossEngine{Store: store, Feed: feed, Locks: locks, Logger: logger}
}

// Sweep runs one monitor cycle and returns the closing orders it placed.
func (e *StopLossEngine) Sweep(ctx context.Context) ([]models.Order, error) {
	entries, err := e.Store.EntriesWithStopLoss(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	snapshot, err := e.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var triggered []models.Order
	for _, entry := range entries {
		quote, live := snapshot[entry.InstrumentID]
		if !live || entry.StopLoss == nil {
			continue
		}

		// Distances are rounded to the 2dp price grid before comparing, so
		// a zero stop-loss only fires on an exact price revisit, never on
		// float noise.
		distance := utils.Round2(math.Abs(quote.Price - entry.ExecutionPrice))
		if distance > *entry.StopLoss {
			continue
		}

		e.Locks.Lock(entry.InstrumentID)
		now := time.Now().UTC()
		price := utils.Round2(quote.Price)
		closing := models.Order{
			InstrumentID:   entry.InstrumentID,
			Side:           entry.Side.Opposite(),
			OrderPrice:     price,
			Quantity:       entry.Quantity,
			Status:         models.StatusStopLossTriggered,
			PlacedAt:       now,
			ExecutedAt:     &now,
			ExecutionPrice: &price,
		}
		ok, err := e.Store.TriggerStopLoss(ctx, entry, &closing)
		e.Locks.Unlock(entry.InstrumentID)
		if err != nil {
			return triggered, err
		}
		if !ok {
			// Entry closed between the listing and the trigger; nothing was
			// recorded, so nothing to report.
			continue
		}

		triggered = append(triggered, closing)
		e.Logger.Info("stop loss triggered",
			zap.String("instrument", entry.InstrumentID),
			zap.Float64("entry_price", entry.ExecutionPrice),
			zap.Float64("live_price", quote.Price),
			zap.Float64("stop_loss", *entry.StopLoss))
	}
	return triggered, nil
}
