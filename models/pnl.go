package models

// Lot is an unmatched slice of a position held in a FIFO queue.
type Lot struct {
	EntryPrice float64 `json:"entry_price"`
	Quantity   float64 `json:"qty"`
}

// InstrumentPnL is the per-instrument mark-to-market report. Unrealized and
// MTM are nil when no live price exists, so callers can tell "zero" from
// "unknown".
type InstrumentPnL struct {
	RealizedPnL    float64  `json:"realized_pnl"`
	UnrealizedPnL  *float64 `json:"unrealized_pnl"`
	MTMPnL         *float64 `json:"mtm_pnl"`
	LivePrice      *float64 `json:"live_price"`
	OpenLongLots   []Lot    `json:"open_long_positions"`
	OpenShortLots  []Lot    `json:"open_short_positions"`
}

// OverallPnL aggregates across instruments. Instruments without a live price
// contribute 0 to the unrealized sum even though their per-instrument report
// is nil; that asymmetry is part of the contract.
type OverallPnL struct {
	TotalRealizedPnL   float64 `json:"total_realized_pnl"`
	TotalUnrealizedPnL float64 `json:"total_unrealized_pnl"`
	OverallMTMPnL      float64 `json:"overall_mtm_pnl"`
}

// PnLSummary is recomputed from scratch on every call and never persisted.
type PnLSummary struct {
	Instruments map[string]InstrumentPnL `json:"instruments"`
	Overall     OverallPnL               `json:"overall"`
}
