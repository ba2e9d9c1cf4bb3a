package service

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

// DefaultLossThresholdPct is the unrealized-loss percentage above which a
// trade alerts.
const DefaultLossThresholdPct = 1.0

const recentAlertsCap = 200

// AlertEngine scans the trade book for unrealized losses beyond the
// threshold and emits at most one alert per trade for the engine's lifetime.
// Alerts are appended to a JSON-lines log and never retracted, even if the
// loss later recovers. The dedup set lives in memory only and is lost on
// restart.
type AlertEngine struct {
	Store        TradeStore
	Feed         marketdata.SnapshotProvider
	ThresholdPct float64
	LogPath      string
	Logger       *zap.Logger

	mu      sync.Mutex
	alerted map[int64]struct{}
	recent  []models.LossAlert
}

func NewAlertEngine(store TradeStore, feed marketdata.SnapshotProvider, thresholdPct float64, logPath string, logger *zap.Logger) *AlertEngine {
	if thresholdPct <= 0 {
		thresholdPct = DefaultLossThresholdPct
	}
	return &AlertEngine{
		Store:        store,
		Feed:         feed,
		ThresholdPct: thresholdPct,
		LogPath:      logPath,
		Logger:       logger,
		alerted:      make(map[int64]struct{}),
	}
}

// Scan runs one alert cycle and returns the alerts emitted this cycle.
// Trades without a live price are skipped, not failed.
func (e *AlertEngine) Scan(ctx context.Context) ([]models.LossAlert, error) {
	entries, err := e.Store.BookEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	snapshot, err := e.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var emitted []models.LossAlert

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range entries {
		if _, done := e.alerted[entry.ID]; done {
			continue
		}
		quote, live := snapshot[entry.InstrumentID]
		if !live || entry.OrderPrice == 0 {
			continue
		}

		var lossPct float64
		switch entry.Side {
		case models.SideBuy:
			lossPct = (entry.OrderPrice - quote.Price) / entry.OrderPrice * 100
		case models.SideSell:
			lossPct = (quote.Price - entry.OrderPrice) / entry.OrderPrice * 100
		default:
			continue
		}
		if lossPct <= e.ThresholdPct {
			continue
		}

		alert := models.LossAlert{
			Type:            "LOSS_ALERT",
			TradeID:         entry.ID,
			InstrumentID:    entry.InstrumentID,
			OrderSide:       entry.Side,
			OrderPrice:      entry.OrderPrice,
			CurrentPrice:    quote.Price,
			LossPct:         utils.Round2(lossPct),
			OrderPlacedTime: entry.PlacedAt.UTC().Format(time.RFC3339Nano),
			MarketTimestamp: quote.Timestamp,
			AlertTimeUTC:    now,
		}

		if err := e.appendToLog(alert); err != nil {
			e.Logger.Warn("failed to write alert log", zap.Int64("trade_id", entry.ID), zap.Error(err))
		}

		e.alerted[entry.ID] = struct{}{}
		e.recent = append(e.recent, alert)
		if len(e.recent) > recentAlertsCap {
			e.recent = e.recent[len(e.recent)-recentAlertsCap:]
		}
		emitted = append(emitted, alert)
		e.Logger.Info("loss alert",
			zap.Int64("trade_id", entry.ID),
			zap.String("instrument", entry.InstrumentID),
			zap.Float64("loss_pct", alert.LossPct))
	}
	return emitted, nil
}

func (e *AlertEngine) appendToLog(alert models.LossAlert) error {
	f, err := os.OpenFile(e.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}

// AlertedIDs returns the trade ids alerted so far, sorted for determinism.
func (e *AlertEngine) AlertedIDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int64, 0, len(e.alerted))
	for id := range e.alerted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Recent returns the latest alert batch, newest last.
func (e *AlertEngine) Recent() []models.LossAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.LossAlert, len(e.recent))
	copy(out, e.recent)
	return out
}
