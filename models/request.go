package models

type PlaceOrderRequest struct {
	InstrumentID string   `json:"instrument_id" validate:"required"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	OrderSide    string   `json:"order_side" validate:"required,oneof=buy sell"`
	StopLoss     *float64 `json:"stop_loss,omitempty" validate:"omitempty,gte=0"`
	Quantity     *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

type SquareOffRequest struct {
	InstrumentID string `json:"instrument_id" validate:"required"`
}

type SubscribeRequest struct {
	InstrumentID   string `json:"instrument_id" validate:"required"`
	InstrumentName string `json:"instrument_name" validate:"required"`
}

type UnsubscribeRequest struct {
	InstrumentID string `json:"instrument_id" validate:"required"`
}
