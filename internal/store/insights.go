package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/insight"
)

const insightColumns = `id, signal, interpretation, recommendation, sources, confidence,
	company, function, region, initiative, category, rule_id, created_at`

// InsertInsights stores insights in one transaction.
func (db *DB) InsertInsights(ctx context.Context, batch []insight.Insight) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO insights (`+insightColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, in := range batch {
		sources, err := json.Marshal(in.Sources)
		if err != nil {
			return fmt.Errorf("encoding sources for %s: %w", in.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			in.ID, in.Signal, in.Interpretation, in.Recommendation, string(sources),
			in.Confidence, in.Company, in.Function, in.Region, nullIfEmpty(in.Initiative),
			string(in.Category), nullIfEmpty(in.RuleID), in.CreatedAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("inserting insight %s: %w", in.ID, err)
		}
	}
	return tx.Commit()
}

// ListInsights returns stored insights matching f, newest first.
func (db *DB) ListInsights(ctx context.Context, f InsightFilter) ([]insight.Insight, error) {
	query := "SELECT " + insightColumns + " FROM insights WHERE 1=1"
	var args []any

	for _, clause := range []struct {
		column string
		value  string
	}{
		{"company", f.Company},
		{"function", f.Function},
		{"region", f.Region},
		{"initiative", f.Initiative},
		{"category", string(f.Category)},
	} {
		if clause.value != "" {
			query += " AND " + clause.column + " = ?"
			args = append(args, clause.value)
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	insights := make([]insight.Insight, 0)
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

// GetInsight returns the insight with the given id, or nil if none exists.
func (db *DB) GetInsight(ctx context.Context, id string) (*insight.Insight, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+insightColumns+" FROM insights WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	in, err := scanInsight(rows)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Filters returns the distinct filter values present in stored insights.
func (db *DB) Filters(ctx context.Context) (*FilterOptions, error) {
	var opts FilterOptions
	var err error
	if opts.Companies, err = db.distinct(ctx, "company"); err != nil {
		return nil, err
	}
	if opts.Functions, err = db.distinct(ctx, "function"); err != nil {
		return nil, err
	}
	if opts.Regions, err = db.distinct(ctx, "region"); err != nil {
		return nil, err
	}
	if opts.Initiatives, err = db.distinct(ctx, "initiative"); err != nil {
		return nil, err
	}
	opts.Categories = append([]insight.Category(nil), insight.Categories...)
	return &opts, nil
}

// distinct lists the non-null values of a whitelisted insights column.
func (db *DB) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT DISTINCT "+column+" FROM insights WHERE "+column+" IS NOT NULL ORDER BY "+column)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Stats summarizes stored insights.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(confidence) FROM insights").Scan(&s.Total, &avg); err != nil {
		return nil, err
	}
	s.AverageConfidence = avg.Float64

	var err error
	if s.ByCategory, err = db.groupCount(ctx, "category"); err != nil {
		return nil, err
	}
	if s.ByRegion, err = db.groupCount(ctx, "region"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) groupCount(ctx context.Context, column string) ([]GroupCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM insights GROUP BY "+column+" ORDER BY "+column)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make([]GroupCount, 0)
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		counts = append(counts, g)
	}
	return counts, rows.Err()
}

func scanInsight(rows *sql.Rows) (insight.Insight, error) {
	var in insight.Insight
	var sources, category, createdAt string
	var initiative, ruleID sql.NullString
	if err := rows.Scan(
		&in.ID, &in.Signal, &in.Interpretation, &in.Recommendation, &sources,
		&in.Confidence, &in.Company, &in.Function, &in.Region, &initiative,
		&category, &ruleID, &createdAt,
	); err != nil {
		return in, err
	}
	if err := json.Unmarshal([]byte(sources), &in.Sources); err != nil {
		return in, fmt.Errorf("decoding sources of insight %s: %w", in.ID, err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return in, fmt.Errorf("parsing created_at of insight %s: %w", in.ID, err)
	}
	in.Initiative = initiative.String
	in.RuleID = ruleID.String
	in.Category = insight.Category(category)
	in.CreatedAt = ts
	return in, nil
}
