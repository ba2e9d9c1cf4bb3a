package service

import (
	"context"
	"fmt"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// Master-file generation parameters: 250 in-the-money and 250 out-of-the-money
// NIFTY strikes spaced 4 points around the base.
const (
	masterFileDate = "03 June 2025"
	baseStrike     = 23000
	strikesPerSide = 250
)

// InstrumentService manages the instrument master file and tick
// subscriptions.
type InstrumentService struct {
	Store InstrumentStore
}

func NewInstrumentService(store InstrumentStore) *InstrumentService {
	return &InstrumentService{Store: store}
}

// GenerateMasterFile regenerates the synthetic instrument universe: 500
// NIFTY instruments, ids 1_1 through 1_500, replacing whatever was there.
func (s *InstrumentService) GenerateMasterFile(ctx context.Context) (int, error) {
	instruments := make([]models.Instrument, 0, 2*strikesPerSide)

	for i := 1; i <= strikesPerSide; i++ {
		strike := baseStrike - 4*i
		instruments = append(instruments, models.Instrument{
			InstrumentID:   fmt.Sprintf("1_%d", i),
			InstrumentName: fmt.Sprintf("NIFTY %s %d", masterFileDate, strike),
		})
	}
	for i := 1; i <= strikesPerSide; i++ {
		strike := baseStrike + 4*i
		instruments = append(instruments, models.Instrument{
			InstrumentID:   fmt.Sprintf("1_%d", strikesPerSide+i),
			InstrumentName: fmt.Sprintf("NIFTY %s %d", masterFileDate, strike),
		})
	}

	return s.Store.ReplaceMasterFile(ctx, instruments)
}

// GetMasterFile lists the instrument universe.
func (s *InstrumentService) GetMasterFile(ctx context.Context) ([]models.Instrument, error) {
	return s.Store.ListMasterFile(ctx)
}

// Subscribe registers an instrument for the tick simulator after verifying
// the id/name pair against the master file.
func (s *InstrumentService) Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscribeResponse, error) {
	ok, err := s.Store.MasterRecordExists(ctx, req.InstrumentID, req.InstrumentName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrInstrumentMismatch
	}

	sub := models.Subscription{InstrumentID: req.InstrumentID, InstrumentName: req.InstrumentName}
	if err := s.Store.InsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return &models.SubscribeResponse{
		InstrumentID:   sub.InstrumentID,
		InstrumentName: sub.InstrumentName,
	}, nil
}

// Unsubscribe drops an instrument from the tick simulator.
func (s *InstrumentService) Unsubscribe(ctx context.Context, instrumentID string) (*models.UnsubscribeResponse, error) {
	n, err := s.Store.DeleteSubscription(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, models.ErrSubscriptionNotFound
	}
	return &models.UnsubscribeResponse{DeletedCount: int(n)}, nil
}

// ListSubscriptions returns all active subscriptions.
func (s *InstrumentService) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	return s.Store.ListSubscriptions(ctx)
}
