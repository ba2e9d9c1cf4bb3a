package service

import (
	"context"
	"sync"
	"time"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// memTradeStore is an in-memory TradeStore with the same semantics as the
// Postgres repository, used to exercise the engines without a database.
type memTradeStore struct {
	mu         sync.Mutex
	nextLogID  int64
	nextBookID int64
	logs       []models.Order
	book       []models.BookEntry
}

func newMemTradeStore() *memTradeStore {
	return &memTradeStore{}
}

func (m *memTradeStore) RecordLog(_ context.Context, order *models.Order) (int64, error) {
	if err := order.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	order.ID = m.nextLogID
	m.logs = append(m.logs, *order)
	return order.ID, nil
}

func (m *memTradeStore) RecordFill(_ context.Context, order *models.Order) (int64, int64, error) {
	if err := order.Validate(); err != nil {
		return 0, 0, err
	}
	if order.ExecutedAt == nil || order.ExecutionPrice == nil {
		return 0, 0, &models.InvariantViolation{Detail: "filled order missing execution fields"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	order.ID = m.nextLogID
	m.logs = append(m.logs, *order)

	m.nextBookID++
	m.book = append(m.book, models.BookEntry{
		ID:             m.nextBookID,
		LogID:          order.ID,
		InstrumentID:   order.InstrumentID,
		Side:           order.Side,
		OrderPrice:     order.OrderPrice,
		Quantity:       order.Quantity,
		StopLoss:       order.StopLoss,
		PlacedAt:       order.PlacedAt,
		ExecutedAt:     *order.ExecutedAt,
		ExecutionPrice: *order.ExecutionPrice,
	})
	return order.ID, m.nextBookID, nil
}

func (m *memTradeStore) PendingLogs(_ context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.Order
	for _, o := range m.logs {
		if want[o.Status] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memTradeStore) FillPendingLog(_ context.Context, logID int64, executionPrice float64, executedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.logs {
		o := &m.logs[i]
		if o.ID != logID {
			continue
		}
		if o.Status != models.StatusPriceNotMatched && o.Status != models.StatusNotFilled {
			return false, nil
		}
		o.Status = models.StatusFilled
		o.ExecutedAt = &executedAt
		o.ExecutionPrice = &executionPrice

		m.nextBookID++
		m.book = append(m.book, models.BookEntry{
			ID:             m.nextBookID,
			LogID:          o.ID,
			InstrumentID:   o.InstrumentID,
			Side:           o.Side,
			OrderPrice:     o.OrderPrice,
			Quantity:       o.Quantity,
			StopLoss:       o.StopLoss,
			PlacedAt:       o.PlacedAt,
			ExecutedAt:     executedAt,
			ExecutionPrice: executionPrice,
		})
		return true, nil
	}
	return false, nil
}

func (m *memTradeStore) BookEntries(_ context.Context, instrumentID string) ([]models.BookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookEntry
	for _, e := range m.book {
		if instrumentID == "" || e.InstrumentID == instrumentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memTradeStore) EntriesWithStopLoss(_ context.Context) ([]models.BookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookEntry
	for _, e := range m.book {
		if e.StopLoss != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memTradeStore) TriggerStopLoss(_ context.Context, entry models.BookEntry, closing *models.Order) (bool, error) {
	if err := closing.Validate(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i, e := range m.book {
		if e.ID == entry.ID {
			m.book = append(m.book[:i], m.book[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		// Already closed by a concurrent task; record nothing.
		return false, nil
	}

	m.nextLogID++
	closing.ID = m.nextLogID
	m.logs = append(m.logs, *closing)

	for i := range m.logs {
		if m.logs[i].ID == entry.LogID && m.logs[i].Status == models.StatusFilled {
			m.logs[i].Status = models.StatusStopLossTriggered
		}
	}
	return true, nil
}

// logByID returns a copy of the trade-log record with the given id.
func (m *memTradeStore) logByID(id int64) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.logs {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// addBookEntry seeds an executed trade directly into the book.
func (m *memTradeStore) addBookEntry(instrumentID string, side models.OrderSide, price, qty float64, placedAt time.Time, stopLoss *float64) models.BookEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLogID++
	m.logs = append(m.logs, models.Order{
		ID:             m.nextLogID,
		InstrumentID:   instrumentID,
		Side:           side,
		OrderPrice:     price,
		Quantity:       qty,
		StopLoss:       stopLoss,
		Status:         models.StatusFilled,
		PlacedAt:       placedAt,
		ExecutedAt:     &placedAt,
		ExecutionPrice: &price,
	})
	m.nextBookID++
	entry := models.BookEntry{
		ID:             m.nextBookID,
		LogID:          m.nextLogID,
		InstrumentID:   instrumentID,
		Side:           side,
		OrderPrice:     price,
		Quantity:       qty,
		StopLoss:       stopLoss,
		PlacedAt:       placedAt,
		ExecutedAt:     placedAt,
		ExecutionPrice: price,
	}
	m.book = append(m.book, entry)
	return entry
}

// staticFeed serves a fixed snapshot.
type staticFeed struct {
	quotes map[string]marketdata.Quote
	err    error
}

func (f *staticFeed) Snapshot(context.Context) (map[string]marketdata.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]marketdata.Quote, len(f.quotes))
	for k, v := range f.quotes {
		out[k] = v
	}
	return out, nil
}

func (f *staticFeed) set(instrumentID string, price float64) {
	if f.quotes == nil {
		f.quotes = make(map[string]marketdata.Quote)
	}
	f.quotes[instrumentID] = marketdata.Quote{Price: price, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
}

func floatPtr(v float64) *float64 { return &v }
