package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/db/postgres/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// TradeRepository is the Order Persistence Store: the trade_logs audit
// collection plus the trade_book position ledger. Multi-row operations run
// inside a single transaction so a status transition and its dependent book
// mutation are never observably split.
type TradeRepository struct {
	DBHelper *providers.DBHelper
}

func NewTradeRepository(db *providers.DBHelper) *TradeRepository {
	return &TradeRepository{DBHelper: db}
}

func storeErr(op string, err error) error {
	return &models.TransientStoreError{Op: op, Err: err}
}

// RecordLog inserts an audit record for an order that did not fill
// (price not matched / not filled). No book entry is created.
func (r *TradeRepository) RecordLog(ctx context.Context, order *models.Order) (int64, error) {
	if err := order.Validate(); err != nil {
		return 0, err
	}
	query := `
		INSERT INTO trade_logs (instrument_id, order_side, order_price, quantity, stop_loss, status, placed_at, executed_at, execution_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.DBHelper.PostgresClient.QueryRowContext(ctx, query,
		order.InstrumentID, order.Side, order.OrderPrice, order.Quantity,
		nullFloat(order.StopLoss), order.Status, order.PlacedAt,
		nullTime(order.ExecutedAt), nullFloat(order.ExecutionPrice),
	).Scan(&order.ID)
	if err != nil {
		return 0, storeErr("insert trade log", err)
	}
	return order.ID, nil
}

// RecordFill atomically appends a filled order to both the trade_logs and
// the trade_book. The order must carry its execution fields.
func (r *TradeRepository) RecordFill(ctx context.Context, order *models.Order) (logID, bookID int64, err error) {
	if err := order.Validate(); err != nil {
		return 0, 0, err
	}
	if order.ExecutedAt == nil || order.ExecutionPrice == nil {
		return 0, 0, &models.InvariantViolation{Detail: "filled order missing execution fields"}
	}

	tx, err := r.DBHelper.PostgresClient.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, storeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	logQuery := `
		INSERT INTO trade_logs (instrument_id, order_side, order_price, quantity, stop_loss, status, placed_at, executed_at, execution_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = tx.QueryRowContext(ctx, logQuery,
		order.InstrumentID, order.Side, order.OrderPrice, order.Quantity,
		nullFloat(order.StopLoss), order.Status, order.PlacedAt,
		*order.ExecutedAt, *order.ExecutionPrice,
	).Scan(&logID)
	if err != nil {
		return 0, 0, storeErr("insert trade log", err)
	}

	bookQuery := `
		INSERT INTO trade_book (log_id, instrument_id, order_side, order_price, quantity, stop_loss, placed_at, executed_at, execution_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = tx.QueryRowContext(ctx, bookQuery,
		logID, order.InstrumentID, order.Side, order.OrderPrice, order.Quantity,
		nullFloat(order.StopLoss), order.PlacedAt, *order.ExecutedAt, *order.ExecutionPrice,
	).Scan(&bookID)
	if err != nil {
		return 0, 0, storeErr("insert trade book entry", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, storeErr("commit fill", err)
	}
	order.ID = logID
	return logID, bookID, nil
}

// PendingLogs returns trade_logs rows in any of the given statuses, oldest
// first, in stable store order.
func (r *TradeRepository) PendingLogs(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	query := `
		SELECT id, instrument_id, order_side, order_price, quantity, stop_loss, status, placed_at, executed_at, execution_price
		FROM trade_logs
		WHERE status = ANY($1)
		ORDER BY placed_at ASC, id ASC`

	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	rows, err := r.DBHelper.PostgresClient.QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, storeErr("list pending logs", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storeErr("scan trade log", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list pending logs", err)
	}
	return orders, nil
}

// FillPendingLog transitions a pending log row to filled at the given
// snapshot price and materializes its trade_book entry, atomically. The
// update is guarded on the pending statuses so running the pass twice fills
// an order exactly once; filled=false means someone got there first.
func (r *TradeRepository) FillPendingLog(ctx context.Context, logID int64, executionPrice float64, executedAt time.Time) (filled bool, err error) {
	tx, err := r.DBHelper.PostgresClient.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	update := `
		UPDATE trade_logs
		SET status = $1, executed_at = $2, execution_price = $3
		WHERE id = $4 AND status IN ($5, $6)
		RETURNING instrument_id, order_side, order_price, quantity, stop_loss, placed_at`

	var (
		instrumentID string
		side         models.OrderSide
		orderPrice   float64
		quantity     float64
		stopLoss     sql.NullFloat64
		placedAt     time.Time
	)
	err = tx.QueryRowContext(ctx, update,
		models.StatusFilled, executedAt, executionPrice, logID,
		models.StatusPriceNotMatched, models.StatusNotFilled,
	).Scan(&instrumentID, &side, &orderPrice, &quantity, &stopLoss, &placedAt)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return false, nil
	}
	if err != nil {
		return false, storeErr("fill pending log", err)
	}

	book := `
		INSERT INTO trade_book (log_id, instrument_id, order_side, order_price, quantity, stop_loss, placed_at, executed_at, execution_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(ctx, book,
		logID, instrumentID, side, orderPrice, quantity, stopLoss, placedAt, executedAt, executionPrice,
	)
	if err != nil {
		return false, storeErr("insert trade book entry", err)
	}

	if err = tx.Commit(); err != nil {
		return false, storeErr("commit fill", err)
	}
	return true, nil
}

// BookEntries lists trade_book rows for one instrument, or every instrument
// when instrumentID is empty. Ordered by placement time then insertion order
// so FIFO matching is deterministic.
func (r *TradeRepository) BookEntries(ctx context.Context, instrumentID string) ([]models.BookEntry, error) {
	query := `
		SELECT id, log_id, instrument_id, order_side, order_price, quantity, stop_loss, placed_at, executed_at, execution_price
		FROM trade_book
		WHERE ($1 = '' OR instrument_id = $1)
		ORDER BY placed_at ASC, id ASC`

	rows, err := r.DBHelper.PostgresClient.QueryContext(ctx, query, instrumentID)
	if err != nil {
		return nil, storeErr("list trade book", err)
	}
	defer rows.Close()

	return scanBookEntries(rows)
}

// EntriesWithStopLoss lists the trade_book rows carrying stop-loss
// protection, the stop-loss monitor's working set.
func (r *TradeRepository) EntriesWithStopLoss(ctx context.Context) ([]models.BookEntry, error) {
	query := `
		SELECT id, log_id, instrument_id, order_side, order_price, quantity, stop_loss, placed_at, executed_at, execution_price
		FROM trade_book
		WHERE stop_loss IS NOT NULL
		ORDER BY placed_at ASC, id ASC`

	rows, err := r.DBHelper.PostgresClient.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list stop loss entries", err)
	}
	defer rows.Close()

	return scanBookEntries(rows)
}

// TriggerStopLoss performs the forced square-off bookkeeping in one
// transaction: append the closing order to the audit log, flip the
// originating log record to "stop loss triggered", and remove the book
// entry. Log mutations run before the dependent book delete. When a
// concurrent task beat us to the entry the whole transaction rolls back and
// triggered=false tells the caller nothing was recorded.
func (r *TradeRepository) TriggerStopLoss(ctx context.Context, entry models.BookEntry, closing *models.Order) (triggered bool, err error) {
	if err := closing.Validate(); err != nil {
		return false, err
	}

	tx, err := r.DBHelper.PostgresClient.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	logQuery := `
		INSERT INTO trade_logs (instrument_id, order_side, order_price, quantity, stop_loss, status, placed_at, executed_at, execution_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = tx.QueryRowContext(ctx, logQuery,
		closing.InstrumentID, closing.Side, closing.OrderPrice, closing.Quantity,
		nullFloat(closing.StopLoss), closing.Status, closing.PlacedAt,
		nullTime(closing.ExecutedAt), nullFloat(closing.ExecutionPrice),
	).Scan(&closing.ID)
	if err != nil {
		return false, storeErr("insert closing order", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE trade_logs SET status = $1 WHERE id = $2 AND status = $3`,
		models.StatusStopLossTriggered, entry.LogID, models.StatusFilled,
	)
	if err != nil {
		return false, storeErr("mark stop loss triggered", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM trade_book WHERE id = $1`, entry.ID)
	if err != nil {
		return false, storeErr("delete trade book entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Entry already closed by a concurrent task; discard the closing
		// order insert along with the rest of the transaction.
		tx.Rollback()
		return false, nil
	}

	if err = tx.Commit(); err != nil {
		return false, storeErr("commit stop loss", err)
	}
	return true, nil
}

func scanOrder(rows *sql.Rows) (models.Order, error) {
	var (
		o         models.Order
		stopLoss  sql.NullFloat64
		execAt    sql.NullTime
		execPrice sql.NullFloat64
	)
	err := rows.Scan(&o.ID, &o.InstrumentID, &o.Side, &o.OrderPrice, &o.Quantity,
		&stopLoss, &o.Status, &o.PlacedAt, &execAt, &execPrice)
	if err != nil {
		return o, err
	}
	if stopLoss.Valid {
		o.StopLoss = &stopLoss.Float64
	}
	if execAt.Valid {
		o.ExecutedAt = &execAt.Time
	}
	if execPrice.Valid {
		o.ExecutionPrice = &execPrice.Float64
	}
	return o, o.Validate()
}

func scanBookEntries(rows *sql.Rows) ([]models.BookEntry, error) {
	var entries []models.BookEntry
	for rows.Next() {
		var (
			e        models.BookEntry
			stopLoss sql.NullFloat64
		)
		err := rows.Scan(&e.ID, &e.LogID, &e.InstrumentID, &e.Side, &e.OrderPrice,
			&e.Quantity, &stopLoss, &e.PlacedAt, &e.ExecutedAt, &e.ExecutionPrice)
		if err != nil {
			return nil, storeErr("scan trade book entry", err)
		}
		if stopLoss.Valid {
			e.StopLoss = &stopLoss.Float64
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate trade book", err)
	}
	return entries, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
