package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

// OrderService owns the order lifecycle: immediate match on placement, the
// periodic re-check of unfilled orders, and square-off.
type OrderService struct {
	Store          TradeStore
	Feed           marketdata.SnapshotProvider
	MatchingEngine *MatchingEngine
	Locks          *InstrumentLocks
	Logger         *zap.Logger
}

func NewOrderService(store TradeStore, feed marketdata.SnapshotProvider, locks *InstrumentLocks, logger *zap.Logger) *OrderService {
	return &OrderService{
		Store:          store,
		Feed:           feed,
		MatchingEngine: NewMatchingEngine(),
		Locks:          locks,
		Logger:         logger,
	}
}

// PlaceOrder runs the placement state machine against the current snapshot:
// instrument absent -> "not filled" audit record, price within tolerance ->
// filled into both collections, otherwise -> "price not matched" audit
// record. Only the filled outcome opens a position.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	s.Locks.Lock(req.InstrumentID)
	defer s.Locks.Unlock(req.InstrumentID)

	snapshot, err := s.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		InstrumentID: req.InstrumentID,
		Side:         models.OrderSide(req.OrderSide),
		OrderPrice:   utils.Round2(req.Price),
		Quantity:     1,
		StopLoss:     req.StopLoss,
		PlacedAt:     time.Now().UTC(),
	}
	if req.Quantity != nil {
		order.Quantity = *req.Quantity
	}

	quote, live := snapshot[req.InstrumentID]
	switch {
	case !live:
		order.Status = models.StatusNotFilled
		if _, err := s.Store.RecordLog(ctx, &order); err != nil {
			return nil, err
		}
		return placementResponse(models.ResultInstrumentNotFound, &order), nil

	case s.MatchingEngine.Matches(order.OrderPrice, quote.Price):
		now := order.PlacedAt
		executionPrice := utils.Round2(quote.Price)
		order.Status = models.StatusFilled
		order.ExecutedAt = &now
		order.ExecutionPrice = &executionPrice
		if _, _, err := s.Store.RecordFill(ctx, &order); err != nil {
			return nil, err
		}
		s.Logger.Info("order filled",
			zap.String("instrument", order.InstrumentID),
			zap.Float64("order_price", order.OrderPrice),
			zap.Float64("execution_price", executionPrice))
		return placementResponse(models.ResultOrderPlaced, &order), nil

	default:
		order.Status = models.StatusPriceNotMatched
		if _, err := s.Store.RecordLog(ctx, &order); err != nil {
			return nil, err
		}
		return placementResponse(models.ResultPriceNotMatched, &order), nil
	}
}

func placementResponse(status string, order *models.Order) *models.PlaceOrderResponse {
	return &models.PlaceOrderResponse{
		Status:         status,
		OrderID:        order.ID,
		InstrumentID:   order.InstrumentID,
		OrderPrice:     order.OrderPrice,
		ExecutionPrice: order.ExecutionPrice,
		OrderSide:      order.Side,
		Quantity:       order.Quantity,
		StopLoss:       order.StopLoss,
	}
}

// RecheckPendingOrders re-evaluates every "price not matched" and "not
// filled" record against a fresh snapshot. Records now within tolerance are
// filled in place at the current snapshot price — the existing log row is
// updated, the book entry materialized, no duplicate record created. All
// eligible orders fill within one pass.
func (s *OrderService) RecheckPendingOrders(ctx context.Context) (*models.RecheckResult, error) {
	pending, err := s.Store.PendingLogs(ctx, models.StatusPriceNotMatched, models.StatusNotFilled)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &models.RecheckResult{Status: "no order has been filled"}, nil
	}

	snapshot, err := s.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var filled []models.Order
	for _, order := range pending {
		quote, live := snapshot[order.InstrumentID]
		if !live || !s.MatchingEngine.Matches(order.OrderPrice, quote.Price) {
			continue
		}

		s.Locks.Lock(order.InstrumentID)
		now := time.Now().UTC()
		executionPrice := utils.Round2(quote.Price)
		ok, err := s.Store.FillPendingLog(ctx, order.ID, executionPrice, now)
		s.Locks.Unlock(order.InstrumentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		order.Status = models.StatusFilled
		order.ExecutedAt = &now
		order.ExecutionPrice = &executionPrice
		filled = append(filled, order)
		s.Logger.Info("pending order filled",
			zap.Int64("order_id", order.ID),
			zap.String("instrument", order.InstrumentID),
			zap.Float64("execution_price", executionPrice))
	}

	if len(filled) == 0 {
		return &models.RecheckResult{Status: "no order has been filled"}, nil
	}
	return &models.RecheckResult{Status: "order(s) filled", Orders: filled}, nil
}

// SquareOff force-closes the net open quantity for an instrument at the
// current snapshot price. Net long closes with a sell, net short with a buy;
// the closing order executes immediately and lands in both collections. An
// empty or flat book is reported as a business outcome, not an error.
func (s *OrderService) SquareOff(ctx context.Context, instrumentID string) (*models.SquareOffResponse, error) {
	s.Locks.Lock(instrumentID)
	defer s.Locks.Unlock(instrumentID)

	entries, err := s.Store.BookEntries(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &models.SquareOffResponse{Status: models.ResultNoOpenPosition}, nil
	}

	net := 0.0
	for _, e := range entries {
		if e.Side == models.SideBuy {
			net += e.Quantity
		} else {
			net -= e.Quantity
		}
	}
	// Quantities are fractional, so the sum carries float error; snap it to
	// the 2dp grid or a flat book nets to dust instead of zero.
	net = utils.Round2(net)
	if net == 0 {
		return &models.SquareOffResponse{Status: models.ResultNoOpenPosition}, nil
	}

	snapshot, err := s.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	quote, live := snapshot[instrumentID]
	if !live {
		return &models.SquareOffResponse{Status: models.ResultNotInLiveData}, nil
	}

	side := models.SideSell
	quantity := net
	if net < 0 {
		side = models.SideBuy
		quantity = -net
	}

	now := time.Now().UTC()
	price := utils.Round2(quote.Price)
	closing := models.Order{
		InstrumentID:   instrumentID,
		Side:           side,
		OrderPrice:     price,
		Quantity:       quantity,
		Status:         models.StatusFilled,
		PlacedAt:       now,
		ExecutedAt:     &now,
		ExecutionPrice: &price,
	}
	if _, _, err := s.Store.RecordFill(ctx, &closing); err != nil {
		return nil, err
	}

	s.Logger.Info("square off placed",
		zap.String("instrument", instrumentID),
		zap.String("side", string(side)),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price))
	return &models.SquareOffResponse{Status: models.ResultSquareOffPlaced, Order: &closing}, nil
}
