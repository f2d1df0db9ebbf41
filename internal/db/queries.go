package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// Aggregation and retention caps for the dashboard query.
const (
	MaxIntervalHours = 720
	MaxGroupMinutes  = 1440
)

// sqlTimeLayout is the naive UTC format used for all stored timestamps.
// modernc.org/sqlite does not store time.Time in a format compatible with
// SQLite's date/time functions, so timestamps are formatted explicitly.
const sqlTimeLayout = "2006-01-02 15:04:05"

var timeFormats = []string{
	sqlTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InsertUsageRecord appends a row to the power_usage ledger.
func (db *DB) InsertUsageRecord(rec *models.UsageRecord) error {
	query := `
		INSERT INTO power_usage (timestamp, balance, present_load, amount_used, recharge_amount)
		VALUES (?, ?, ?, ?, ?)
	`

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(sqlTimeLayout),
		rec.Balance,
		rec.PresentLoad,
		rec.AmountUsed,
		rec.RechargeAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		rec.ID = id
	}

	return nil
}

// GetLastRecord returns the most recently persisted usage record, or nil
// when the ledger is empty.
func (db *DB) GetLastRecord() (*models.UsageRecord, error) {
	query := `
		SELECT id, timestamp, balance, present_load,
			   COALESCE(amount_used, 0), COALESCE(recharge_amount, 0)
		FROM power_usage
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var rec models.UsageRecord
	var tsStr string
	err := db.QueryRowContext(context.Background(), query).Scan(
		&rec.ID,
		&tsStr,
		&rec.Balance,
		&rec.PresentLoad,
		&rec.AmountUsed,
		&rec.RechargeAmount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last record: %w", err)
	}

	if t, ok := parseTimeString(tsStr); ok {
		rec.Timestamp = t
	}

	return &rec, nil
}

// GetBucketedUsage returns usage sums in fixed-width buckets for records at
// or after now minus intervalHours. Buckets align to the top of each hour
// via minute-modulo truncation and are returned in ascending order. The
// result is empty, not an error, when no records match.
func (db *DB) GetBucketedUsage(intervalHours, groupMinutes int) ([]models.UsageBucket, error) {
	if intervalHours > MaxIntervalHours {
		intervalHours = MaxIntervalHours
	}
	if groupMinutes > MaxGroupMinutes {
		groupMinutes = MaxGroupMinutes
	}
	if intervalHours < 1 || groupMinutes < 1 {
		return nil, fmt.Errorf("interval and group must be positive")
	}

	query := `
		SELECT
			strftime('%Y-%m-%d %H:%M', timestamp, '-' ||
				(strftime('%M', timestamp) % ?) || ' minutes') AS bucket,
			SUM(COALESCE(amount_used, 0)) AS total_amount_used
		FROM power_usage
		WHERE timestamp >= ?
		GROUP BY bucket
		ORDER BY bucket
	`

	start := time.Now().UTC().Add(-time.Duration(intervalHours) * time.Hour)
	rows, err := db.QueryContext(context.Background(), query,
		groupMinutes, start.Format(sqlTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query bucketed usage: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	buckets := []models.UsageBucket{}
	for rows.Next() {
		var bucketStr string
		var total float64
		if err := rows.Scan(&bucketStr, &total); err != nil {
			return nil, fmt.Errorf("failed to scan usage bucket: %w", err)
		}

		t, err := time.ParseInLocation("2006-01-02 15:04", bucketStr, time.UTC)
		if err != nil {
			logger.Error("skipping unparseable bucket", "bucket", bucketStr, "error", err)
			continue
		}

		buckets = append(buckets, models.UsageBucket{
			BucketStart: t,
			AmountUsed:  total,
		})
	}

	return buckets, rows.Err()
}

// GetRecentRecharges returns the newest recharge records, newest first.
func (db *DB) GetRecentRecharges(limit int) ([]models.UsageRecord, error) {
	query := `
		SELECT id, timestamp, balance, present_load,
			   COALESCE(amount_used, 0), COALESCE(recharge_amount, 0)
		FROM power_usage
		WHERE recharge_amount > 0
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent recharges: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var records []models.UsageRecord
	for rows.Next() {
		var rec models.UsageRecord
		var tsStr string
		err := rows.Scan(
			&rec.ID,
			&tsStr,
			&rec.Balance,
			&rec.PresentLoad,
			&rec.AmountUsed,
			&rec.RechargeAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recharge record: %w", err)
		}

		if t, ok := parseTimeString(tsStr); ok {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
