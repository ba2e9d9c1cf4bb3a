package service

import (
	"context"
	"sort"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/marketdata"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

// PnLService computes realized and mark-to-market PnL with FIFO lot
// matching. Pure read: the summary is rebuilt from the trade book on every
// call and no state survives between calls.
type PnLService struct {
	Store TradeStore
	Feed  marketdata.SnapshotProvider
}

func NewPnLService(store TradeStore, feed marketdata.SnapshotProvider) *PnLService {
	return &PnLService{Store: store, Feed: feed}
}

// Summary groups the trade book by instrument, replays each instrument's
// trades chronologically through FIFO lot queues, and marks the surviving
// lots to the live price where one exists. Instruments with no live price
// report nil unrealized/MTM but still contribute their realized figure; the
// aggregate unrealized sum counts known values only.
func (s *PnLService) Summary(ctx context.Context) (*models.PnLSummary, error) {
	entries, err := s.Store.BookEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Feed.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	byInstrument := make(map[string][]models.BookEntry)
	for _, e := range entries {
		byInstrument[e.InstrumentID] = append(byInstrument[e.InstrumentID], e)
	}

	summary := &models.PnLSummary{Instruments: make(map[string]models.InstrumentPnL, len(byInstrument))}
	totalRealized, totalUnrealized := 0.0, 0.0

	for instrumentID, trades := range byInstrument {
		sort.SliceStable(trades, func(i, j int) bool {
			return trades[i].PlacedAt.Before(trades[j].PlacedAt)
		})

		realized, longs, shorts := replayFIFO(trades)

		report := models.InstrumentPnL{
			RealizedPnL:   utils.Round2(realized),
			OpenLongLots:  longs,
			OpenShortLots: shorts,
		}

		if quote, live := snapshot[instrumentID]; live {
			livePrice := quote.Price
			unrealized := 0.0
			for _, lot := range longs {
				unrealized += (livePrice - lot.EntryPrice) * lot.Quantity
			}
			for _, lot := range shorts {
				unrealized += (lot.EntryPrice - livePrice) * lot.Quantity
			}
			mtm := utils.Round2(realized + unrealized)
			roundedUnrealized := utils.Round2(unrealized)
			report.UnrealizedPnL = &roundedUnrealized
			report.MTMPnL = &mtm
			report.LivePrice = &livePrice
			totalUnrealized += unrealized
		}

		summary.Instruments[instrumentID] = report
		totalRealized += realized
	}

	summary.Overall = models.OverallPnL{
		TotalRealizedPnL:   utils.Round2(totalRealized),
		TotalUnrealizedPnL: utils.Round2(totalUnrealized),
		OverallMTMPnL:      utils.Round2(totalRealized + totalUnrealized),
	}
	return summary, nil
}

// replayFIFO runs one instrument's trades through the long/short lot queues.
// A buy first consumes open short lots head-first, booking
// (short entry - buy price) x matched per unit; any remainder opens or
// extends the long queue. Sells mirror against the long queue. Both queues
// may coexist mid-replay; that is valid transient state.
func replayFIFO(trades []models.BookEntry) (realized float64, longs, shorts []models.Lot) {
	for _, trade := range trades {
		price := trade.OrderPrice
		remaining := trade.Quantity

		switch trade.Side {
		case models.SideBuy:
			for remaining > 0 && len(shorts) > 0 {
				head := &shorts[0]
				matched := minQty(remaining, head.Quantity)
				realized += (head.EntryPrice - price) * matched
				remaining -= matched
				head.Quantity -= matched
				if head.Quantity == 0 {
					shorts = shorts[1:]
				}
			}
			if remaining > 0 {
				longs = append(longs, models.Lot{EntryPrice: price, Quantity: remaining})
			}

		case models.SideSell:
			for remaining > 0 && len(longs) > 0 {
				head := &longs[0]
				matched := minQty(remaining, head.Quantity)
				realized += (price - head.EntryPrice) * matched
				remaining -= matched
				head.Quantity -= matched
				if head.Quantity == 0 {
					longs = longs[1:]
				}
			}
			if remaining > 0 {
				shorts = append(shorts, models.Lot{EntryPrice: price, Quantity: remaining})
			}
		}
	}
	return realized, longs, shorts
}

func minQty(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
