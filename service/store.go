package service

import (
	"context"
	"time"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// TradeStore is the persistence surface the engines run against: the
// trade_logs audit collection plus the trade_book position ledger. Composite
// operations are atomic in the implementation.
type TradeStore interface {
	// RecordLog appends an audit record that opened no position.
	RecordLog(ctx context.Context, order *models.Order) (int64, error)

	// RecordFill atomically appends a filled order to both collections,
	// returning the log and book row ids.
	RecordFill(ctx context.Context, order *models.Order) (logID, bookID int64, err error)

	// PendingLogs lists audit records in any of the given statuses, oldest
	// first in stable store order.
	PendingLogs(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)

	// FillPendingLog transitions a pending record to filled in place and
	// materializes the book entry. Returns false if the record was no
	// longer pending, making the re-check pass idempotent.
	FillPendingLog(ctx context.Context, logID int64, executionPrice float64, executedAt time.Time) (bool, error)

	// BookEntries lists book rows for an instrument ("" = all), ordered by
	// placement time then insertion order.
	BookEntries(ctx context.Context, instrumentID string) ([]models.BookEntry, error)

	// EntriesWithStopLoss lists the book rows carrying stop-loss protection.
	EntriesWithStopLoss(ctx context.Context) ([]models.BookEntry, error)

	// TriggerStopLoss atomically records the forced closing order, marks
	// the originating log record, and removes the book entry. Returns false
	// when the entry was already closed by a concurrent task and nothing was
	// recorded.
	TriggerStopLoss(ctx context.Context, entry models.BookEntry, closing *models.Order) (bool, error)
}

// InstrumentStore backs the instrument master file and subscriptions.
type InstrumentStore interface {
	ReplaceMasterFile(ctx context.Context, instruments []models.Instrument) (int, error)
	ListMasterFile(ctx context.Context) ([]models.Instrument, error)
	MasterRecordExists(ctx context.Context, instrumentID, instrumentName string) (bool, error)
	InsertSubscription(ctx context.Context, sub models.Subscription) error
	DeleteSubscription(ctx context.Context, instrumentID string) (int64, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}
