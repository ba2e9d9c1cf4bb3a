package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// memInstrumentStore is an in-memory InstrumentStore.
type memInstrumentStore struct {
	master []models.Instrument
	subs   map[string]models.Subscription
}

func newMemInstrumentStore() *memInstrumentStore {
	return &memInstrumentStore{subs: make(map[string]models.Subscription)}
}

func (m *memInstrumentStore) ReplaceMasterFile(_ context.Context, instruments []models.Instrument) (int, error) {
	m.master = append([]models.Instrument(nil), instruments...)
	m.subs = make(map[string]models.Subscription)
	return len(m.master), nil
}

func (m *memInstrumentStore) ListMasterFile(context.Context) ([]models.Instrument, error) {
	return append([]models.Instrument(nil), m.master...), nil
}

func (m *memInstrumentStore) MasterRecordExists(_ context.Context, instrumentID, instrumentName string) (bool, error) {
	for _, inst := range m.master {
		if inst.InstrumentID == instrumentID && inst.InstrumentName == instrumentName {
			return true, nil
		}
	}
	return false, nil
}

func (m *memInstrumentStore) InsertSubscription(_ context.Context, sub models.Subscription) error {
	m.subs[sub.InstrumentID] = sub
	return nil
}

func (m *memInstrumentStore) DeleteSubscription(_ context.Context, instrumentID string) (int64, error) {
	if _, ok := m.subs[instrumentID]; !ok {
		return 0, nil
	}
	delete(m.subs, instrumentID)
	return 1, nil
}

func (m *memInstrumentStore) ListSubscriptions(context.Context) ([]models.Subscription, error) {
	out := make([]models.Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, sub)
	}
	return out, nil
}

func TestGenerateMasterFile(t *testing.T) {
	store := newMemInstrumentStore()
	svc := NewInstrumentService(store)

	n, err := svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	instruments, err := svc.GetMasterFile(context.Background())
	require.NoError(t, err)
	require.Len(t, instruments, 500)

	// First half walks down from the base in 4-point steps.
	assert.Equal(t, "1_1", instruments[0].InstrumentID)
	assert.Equal(t, "NIFTY 03 June 2025 22996", instruments[0].InstrumentName)
	assert.Equal(t, "1_250", instruments[249].InstrumentID)
	assert.Equal(t, "NIFTY 03 June 2025 22000", instruments[249].InstrumentName)

	// Second half walks up.
	assert.Equal(t, "1_251", instruments[250].InstrumentID)
	assert.Equal(t, "NIFTY 03 June 2025 23004", instruments[250].InstrumentName)
	assert.Equal(t, "1_500", instruments[499].InstrumentID)
	assert.Equal(t, "NIFTY 03 June 2025 24000", instruments[499].InstrumentName)

	ids := make(map[string]bool, len(instruments))
	for _, inst := range instruments {
		assert.False(t, ids[inst.InstrumentID], "duplicate id %s", inst.InstrumentID)
		ids[inst.InstrumentID] = true
	}
}

func TestGenerateMasterFileReplacesExisting(t *testing.T) {
	store := newMemInstrumentStore()
	svc := NewInstrumentService(store)

	_, err := svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)
	_, err = svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)

	instruments, err := svc.GetMasterFile(context.Background())
	require.NoError(t, err)
	assert.Len(t, instruments, 500)
}

func TestSubscribe(t *testing.T) {
	store := newMemInstrumentStore()
	svc := NewInstrumentService(store)
	_, err := svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)

	resp, err := svc.Subscribe(context.Background(), &models.SubscribeRequest{
		InstrumentID:   "1_1",
		InstrumentName: "NIFTY 03 June 2025 22996",
	})
	require.NoError(t, err)
	assert.Equal(t, "1_1", resp.InstrumentID)

	subs, err := svc.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	// Re-subscribing the same instrument is not an error and does not duplicate.
	_, err = svc.Subscribe(context.Background(), &models.SubscribeRequest{
		InstrumentID:   "1_1",
		InstrumentName: "NIFTY 03 June 2025 22996",
	})
	require.NoError(t, err)
	subs, err = svc.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscribeRejectsMismatchedPair(t *testing.T) {
	store := newMemInstrumentStore()
	svc := NewInstrumentService(store)
	_, err := svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  models.SubscribeRequest
	}{
		{"unknown id", models.SubscribeRequest{InstrumentID: "9_9", InstrumentName: "NIFTY 03 June 2025 22996"}},
		{"name belongs to another id", models.SubscribeRequest{InstrumentID: "1_1", InstrumentName: "NIFTY 03 June 2025 22000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Subscribe(context.Background(), &tt.req)
			assert.ErrorIs(t, err, models.ErrInstrumentMismatch)
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	store := newMemInstrumentStore()
	svc := NewInstrumentService(store)
	_, err := svc.GenerateMasterFile(context.Background())
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), &models.SubscribeRequest{
		InstrumentID:   "1_1",
		InstrumentName: "NIFTY 03 June 2025 22996",
	})
	require.NoError(t, err)

	resp, err := svc.Unsubscribe(context.Background(), "1_1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.DeletedCount)

	_, err = svc.Unsubscribe(context.Background(), "1_1")
	assert.ErrorIs(t, err, models.ErrSubscriptionNotFound)
}
