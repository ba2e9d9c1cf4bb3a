package service

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

func newAlertFixture(t *testing.T, feed *staticFeed, thresholdPct float64) (*AlertEngine, *memTradeStore, string) {
	t.Helper()
	store := newMemTradeStore()
	logPath := filepath.Join(t.TempDir(), "loss_alerts.json")
	engine := NewAlertEngine(store, feed, thresholdPct, logPath, zap.NewNop())
	return engine, store, logPath
}

func readAlertLog(t *testing.T, path string) []models.LossAlert {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	defer f.Close()

	var alerts []models.LossAlert
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var a models.LossAlert
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &a))
		alerts = append(alerts, a)
	}
	require.NoError(t, scanner.Err())
	return alerts
}

func TestAlertScanThreshold(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		side      models.OrderSide
		livePrice float64 // order price fixed at 100
		wantAlert bool
		wantLoss  float64
	}{
		{
			name: "buy losing more than threshold alerts",
			side: models.SideBuy, livePrice: 98.5, wantAlert: true, wantLoss: 1.5,
		},
		{
			name: "loss exactly at threshold stays quiet",
			side: models.SideBuy, livePrice: 99.0, wantAlert: false,
		},
		{
			name: "buy in profit stays quiet",
			side: models.SideBuy, livePrice: 103.0, wantAlert: false,
		},
		{
			name: "sell loses when the price rises",
			side: models.SideSell, livePrice: 102.0, wantAlert: true, wantLoss: 2.0,
		},
		{
			name: "sell in profit stays quiet",
			side: models.SideSell, livePrice: 95.0, wantAlert: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &staticFeed{}
			feed.set("1_1", tt.livePrice)
			engine, store, logPath := newAlertFixture(t, feed, 1.0)
			entry := store.addBookEntry("1_1", tt.side, 100, 1, now, nil)

			emitted, err := engine.Scan(context.Background())
			require.NoError(t, err)

			if !tt.wantAlert {
				assert.Empty(t, emitted)
				assert.Empty(t, readAlertLog(t, logPath))
				return
			}

			require.Len(t, emitted, 1)
			alert := emitted[0]
			assert.Equal(t, "LOSS_ALERT", alert.Type)
			assert.Equal(t, entry.ID, alert.TradeID)
			assert.Equal(t, tt.side, alert.OrderSide)
			assert.Equal(t, tt.wantLoss, alert.LossPct)
			assert.Equal(t, tt.livePrice, alert.CurrentPrice)

			logged := readAlertLog(t, logPath)
			require.Len(t, logged, 1)
			assert.Equal(t, alert.TradeID, logged[0].TradeID)
			assert.Equal(t, alert.LossPct, logged[0].LossPct)
		})
	}
}

func TestAlertScanDedupsAcrossCycles(t *testing.T) {
	feed := &staticFeed{}
	feed.set("1_1", 90.0)
	engine, store, logPath := newAlertFixture(t, feed, 1.0)
	entry := store.addBookEntry("1_1", models.SideBuy, 100, 1, time.Now().UTC(), nil)

	emitted, err := engine.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, emitted, 1)

	// Deeper loss on the next cycle: still no second alert for the trade.
	feed.set("1_1", 80.0)
	emitted, err = engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, emitted)

	// Recovery does not retract the alert either.
	feed.set("1_1", 110.0)
	emitted, err = engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, emitted)

	assert.Equal(t, []int64{entry.ID}, engine.AlertedIDs())
	assert.Len(t, readAlertLog(t, logPath), 1)
	assert.Len(t, engine.Recent(), 1)
}

func TestAlertScanSkipsDarkInstruments(t *testing.T) {
	feed := &staticFeed{}
	feed.set("1_1", 90.0)
	engine, store, _ := newAlertFixture(t, feed, 1.0)

	lit := store.addBookEntry("1_1", models.SideBuy, 100, 1, time.Now().UTC(), nil)
	store.addBookEntry("1_9", models.SideBuy, 100, 1, time.Now().UTC(), nil)

	emitted, err := engine.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, emitted, 1)
	assert.Equal(t, lit.ID, emitted[0].TradeID)
}

func TestAlertEngineDefaultsThreshold(t *testing.T) {
	engine := NewAlertEngine(newMemTradeStore(), &staticFeed{}, 0, "", zap.NewNop())
	assert.Equal(t, DefaultLossThresholdPct, engine.ThresholdPct)

	engine = NewAlertEngine(newMemTradeStore(), &staticFeed{}, 2.5, "", zap.NewNop())
	assert.Equal(t, 2.5, engine.ThresholdPct)
}
