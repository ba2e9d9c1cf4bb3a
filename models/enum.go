package models

type OrderSide string
type OrderStatus string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"

	StatusPending           OrderStatus = "pending"
	StatusFilled            OrderStatus = "filled"
	StatusPriceNotMatched   OrderStatus = "price not matched"
	StatusNotFilled         OrderStatus = "not filled"
	StatusStopLossTriggered OrderStatus = "stop loss triggered"
)

// Result statuses returned to the API boundary for order placement and
// square-off requests.
const (
	ResultOrderPlaced        = "order placed"
	ResultPriceNotMatched    = "price not matched"
	ResultInstrumentNotFound = "instrument not found"
	ResultSquareOffPlaced    = "square off order placed"
	ResultNoOpenPosition     = "no open position"
	ResultNotInLiveData      = "instrument not found in live data"
)

// Opposite returns the closing side for a position opened on s.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}
