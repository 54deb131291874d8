package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

// timeLayout is the storage format for all timestamps. The fixed-width
// fraction keeps lexical order equal to chronological order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InsertObservations stores a batch of observations in one transaction.
// source labels where the batch came from (e.g. "seed", "fred", "csv").
func (db *DB) InsertObservations(ctx context.Context, source string, batch []insight.Observation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (metric, value, region, function, observed, source)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range batch {
		if _, err := stmt.ExecContext(ctx,
			o.Metric, o.Value, o.Region, nullIfEmpty(o.Function),
			o.Timestamp.UTC().Format(timeLayout), nullIfEmpty(source),
		); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", o.Metric, o.Region, err)
		}
	}
	return tx.Commit()
}

// Query returns every observation for region plus those recorded for
// insight.GlobalRegion. It satisfies insight.MetricStore.
func (db *DB) Query(ctx context.Context, region string) ([]insight.Observation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, metric, value, region, function, observed, source
		 FROM observations WHERE region = ? OR region = ? ORDER BY id`,
		region, insight.GlobalRegion,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []insight.Observation
	for rows.Next() {
		r, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r.Observation)
	}
	return out, rows.Err()
}

// ListObservations returns stored observations, newest first.
func (db *DB) ListObservations(ctx context.Context, f ObservationFilter) ([]ObservationRow, error) {
	query := `SELECT id, metric, value, region, function, observed, source FROM observations WHERE 1=1`
	var args []any

	if f.Metric != "" {
		query += " AND metric = ?"
		args = append(args, f.Metric)
	}
	if f.Region != "" {
		query += " AND region = ?"
		args = append(args, f.Region)
	}
	if !f.Since.IsZero() {
		query += " AND observed >= ?"
		args = append(args, f.Since.UTC().Format(timeLayout))
	}
	query += " ORDER BY observed DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ObservationRow
	for rows.Next() {
		r, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountObservations returns the number of stored observations.
func (db *DB) CountObservations(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM observations").Scan(&n)
	return n, err
}

// SourceCounts returns the number of observations and the latest
// observation time per source label. Rows without a label are grouped under
// the empty source.
func (db *DB) SourceCounts(ctx context.Context) ([]SourceCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT COALESCE(source, ''), COUNT(*), MAX(observed)
		 FROM observations GROUP BY COALESCE(source, '') ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]SourceCount, 0)
	for rows.Next() {
		var c SourceCount
		var latest string
		if err := rows.Scan(&c.Source, &c.Count, &latest); err != nil {
			return nil, err
		}
		if c.Latest, err = time.Parse(timeLayout, latest); err != nil {
			return nil, fmt.Errorf("parsing latest timestamp of source %q: %w", c.Source, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanObservation(rows *sql.Rows) (ObservationRow, error) {
	var r ObservationRow
	var function, source sql.NullString
	var observed string
	if err := rows.Scan(&r.ID, &r.Metric, &r.Value, &r.Region, &function, &observed, &source); err != nil {
		return r, err
	}
	ts, err := time.Parse(timeLayout, observed)
	if err != nil {
		return r, fmt.Errorf("parsing timestamp of observation %d: %w", r.ID, err)
	}
	r.Function = function.String
	r.Source = source.String
	r.Timestamp = ts
	return r, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
