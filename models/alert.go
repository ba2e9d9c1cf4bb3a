package models

// LossAlert is an append-only alert-log entry. Emitted at most once per trade
// for the lifetime of the alert engine, never retracted if the loss recovers.
type LossAlert struct {
	Type            string    `json:"type"` // always "LOSS_ALERT"
	TradeID         int64     `json:"trade_id"`
	InstrumentID    string    `json:"instrument_id"`
	OrderSide       OrderSide `json:"order_side"`
	OrderPrice      float64   `json:"order_price"`
	CurrentPrice    float64   `json:"current_price"`
	LossPct         float64   `json:"loss_pct"`
	OrderPlacedTime string    `json:"order_placed_time"`
	MarketTimestamp string    `json:"market_timestamp"`
	AlertTimeUTC    string    `json:"alert_time_utc"`
}
