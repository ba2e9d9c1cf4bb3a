package repository

import (
	"context"
	"database/sql"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/db/postgres/providers"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
)

// InstrumentRepository backs the instrument master file and subscriptions.
type InstrumentRepository struct {
	DBHelper *providers.DBHelper
}

func NewInstrumentRepository(db *providers.DBHelper) *InstrumentRepository {
	return &InstrumentRepository{DBHelper: db}
}

// ReplaceMasterFile wipes and regenerates the master file. Subscriptions
// reference master rows, so they are cleared in the same transaction.
func (r *InstrumentRepository) ReplaceMasterFile(ctx context.Context, instruments []models.Instrument) (count int, err error) {
	tx, err := r.DBHelper.PostgresClient.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return 0, storeErr("clear subscriptions", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM master_file`); err != nil {
		return 0, storeErr("clear master file", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO master_file (instrument_id, instrument_name) VALUES ($1, $2)`)
	if err != nil {
		return 0, storeErr("prepare master insert", err)
	}
	defer stmt.Close()

	for _, inst := range instruments {
		if _, err = stmt.ExecContext(ctx, inst.InstrumentID, inst.InstrumentName); err != nil {
			return 0, storeErr("insert master record", err)
		}
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, storeErr("commit master file", err)
	}
	return count, nil
}

// ListMasterFile returns every instrument in the master file.
func (r *InstrumentRepository) ListMasterFile(ctx context.Context) ([]models.Instrument, error) {
	rows, err := r.DBHelper.PostgresClient.QueryContext(ctx,
		`SELECT instrument_id, instrument_name FROM master_file ORDER BY instrument_id`)
	if err != nil {
		return nil, storeErr("list master file", err)
	}
	defer rows.Close()

	var instruments []models.Instrument
	for rows.Next() {
		var inst models.Instrument
		if err := rows.Scan(&inst.InstrumentID, &inst.InstrumentName); err != nil {
			return nil, storeErr("scan master record", err)
		}
		instruments = append(instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list master file", err)
	}
	return instruments, nil
}

// MasterRecordExists reports whether the exact id/name pair is in the master
// file; subscriptions are validated against it.
func (r *InstrumentRepository) MasterRecordExists(ctx context.Context, instrumentID, instrumentName string) (bool, error) {
	var one int
	err := r.DBHelper.PostgresClient.QueryRowContext(ctx,
		`SELECT 1 FROM master_file WHERE instrument_id = $1 AND instrument_name = $2`,
		instrumentID, instrumentName,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storeErr("lookup master record", err)
	}
	return true, nil
}

// InsertSubscription registers an instrument for simulated ticks.
func (r *InstrumentRepository) InsertSubscription(ctx context.Context, sub models.Subscription) error {
	_, err := r.DBHelper.PostgresClient.ExecContext(ctx,
		`INSERT INTO subscriptions (instrument_id, instrument_name) VALUES ($1, $2)
		 ON CONFLICT (instrument_id) DO UPDATE SET instrument_name = EXCLUDED.instrument_name`,
		sub.InstrumentID, sub.InstrumentName,
	)
	if err != nil {
		return storeErr("insert subscription", err)
	}
	return nil
}

// DeleteSubscription removes a subscription, returning how many rows went.
func (r *InstrumentRepository) DeleteSubscription(ctx context.Context, instrumentID string) (int64, error) {
	res, err := r.DBHelper.PostgresClient.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE instrument_id = $1`, instrumentID)
	if err != nil {
		return 0, storeErr("delete subscription", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete subscription", err)
	}
	return n, nil
}

// ListSubscriptions returns all active subscriptions.
func (r *InstrumentRepository) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := r.DBHelper.PostgresClient.QueryContext(ctx,
		`SELECT instrument_id, instrument_name FROM subscriptions ORDER BY instrument_id`)
	if err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.InstrumentID, &sub.InstrumentName); err != nil {
			return nil, storeErr("scan subscription", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	return subs, nil
}
