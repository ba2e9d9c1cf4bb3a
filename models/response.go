package models

type PlaceOrderResponse struct {
	Status         string    `json:"status"`
	OrderID        int64     `json:"order_id"`
	InstrumentID   string    `json:"instrument_id"`
	OrderPrice     float64   `json:"order_price"`
	ExecutionPrice *float64  `json:"order_placement_price"`
	OrderSide      OrderSide `json:"order_side"`
	Quantity       float64   `json:"quantity"`
	StopLoss       *float64  `json:"stop_loss,omitempty"`
}

type SquareOffResponse struct {
	Status string `json:"status"`
	Order  *Order `json:"order,omitempty"`
}

type RecheckResult struct {
	Status string  `json:"status"`
	Orders []Order `json:"orders,omitempty"`
}

type MasterFileResponse struct {
	InsertedCount int `json:"inserted_count"`
}

type SubscribeResponse struct {
	InstrumentID   string `json:"instrument_id"`
	InstrumentName string `json:"instrument_name"`
}

type UnsubscribeResponse struct {
	DeletedCount int `json:"deleted_count"`
}

type AlertsResponse struct {
	AlertedTradeIDs []int64     `json:"alerted_trade_ids"`
	Alerts          []LossAlert `json:"alerts"`
}
