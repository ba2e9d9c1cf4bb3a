package models

type Instrument struct {
	InstrumentID   string `json:"instrument_id"`
	InstrumentName string `json:"instrument_name"`
}

type Subscription struct {
	InstrumentID   string `json:"instrument_id"`
	InstrumentName string `json:"instrument_name"`
}

// Tick is one simulated market-data update for a subscribed instrument.
type Tick struct {
	InstrumentID   string  `json:"instrument_id"`
	InstrumentName string  `json:"instrument_name"`
	Price          float64 `json:"price"`
	Volume         int64   `json:"volume"`
	Timestamp      string  `json:"timestamp"`
}
