package models

import (
	"fmt"
	"time"
)

// Order is a trade-log record: the full audit trail of every placement
// attempt, filled or not. Execution fields are nil until the order fills.
type Order struct {
	ID             int64       `json:"id"`
	InstrumentID   string      `json:"instrument_id"`
	Side           OrderSide   `json:"order_side"`
	OrderPrice     float64     `json:"order_price"` // requested price
	Quantity       float64     `json:"quantity"`
	StopLoss       *float64    `json:"stop_loss,omitempty"` // absolute price distance
	Status         OrderStatus `json:"status"`
	PlacedAt       time.Time   `json:"order_placed_time"`
	ExecutedAt     *time.Time  `json:"order_execution_time"`
	ExecutionPrice *float64    `json:"order_placement_price"` // snapshot price at fill
}

// Validate enforces the execution-field invariant: executed_at and
// execution_price are both set or both absent. A half-set pair is an
// invariant violation and must be surfaced, never repaired.
func (o *Order) Validate() error {
	if (o.ExecutedAt == nil) != (o.ExecutionPrice == nil) {
		return &InvariantViolation{
			Detail: fmt.Sprintf("order %d: execution time and price half-set", o.ID),
		}
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return &InvariantViolation{
			Detail: fmt.Sprintf("order %d: unknown side %q", o.ID, o.Side),
		}
	}
	return nil
}

// BookEntry is a trade-book record: an executed order held in the open/closed
// position ledger. Book entries are always filled, so execution fields are
// non-optional here.
type BookEntry struct {
	ID             int64     `json:"id"`
	LogID          int64     `json:"log_id"` // originating trade-log record
	InstrumentID   string    `json:"instrument_id"`
	Side           OrderSide `json:"order_side"`
	OrderPrice     float64   `json:"order_price"`
	Quantity       float64   `json:"quantity"`
	StopLoss       *float64  `json:"stop_loss,omitempty"`
	PlacedAt       time.Time `json:"order_placed_time"`
	ExecutedAt     time.Time `json:"order_execution_time"`
	ExecutionPrice float64   `json:"order_placement_price"`
}
