package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type dbConfig struct {
	URL    string
	Schema string
	Tag    string
}

func dbURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("PIPELINE_AUDIT_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	valid := regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	if !valid.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func seedDatabase(report pipelineReport, cfg dbConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.pipeline_runs`, schema)).Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		fmt.Println("Pipeline data already present; skipping seed.")
		return "", nil
	}

	return storeReportTx(ctx, db, report, schema, cfg.Tag)
}

func storeReportInDB(report pipelineReport, cfg dbConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	return storeReportTx(ctx, db, report, schema, cfg.Tag)
}

func storeReportTx(ctx context.Context, db *sql.DB, report pipelineReport, schema string, tag string) (string, error) {
	runID := uuid.New()
	asOfDate, err := parseDay(report.Summary.AsOf)
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.pipeline_runs (
			id, as_of, lookahead_days, tasks_due, reorders_due,
			high_count, medium_count, low_count, skipped_records,
			new_stores_added, total_orders, first_orders, reorders,
			total_cases, calls_made, visits_made, emails_sent,
			stores_contacted, stores_converted, conversion_rate, run_tag
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12,$13,
			$14,$15,$16,$17,
			$18,$19,$20,$21
		)`, schema),
		runID,
		asOfDate,
		report.Summary.LookaheadDays,
		report.Summary.TasksDue,
		report.Summary.ReordersDue,
		report.Summary.HighCount,
		report.Summary.MediumCount,
		report.Summary.LowCount,
		report.Summary.SkippedRecords,
		report.Metrics.NewStoresAdded,
		report.Metrics.TotalOrders,
		report.Metrics.FirstOrders,
		report.Metrics.Reorders,
		report.Metrics.TotalCases,
		report.Metrics.CallsMade,
		report.Metrics.VisitsMade,
		report.Metrics.EmailsSent,
		report.Metrics.StoresContacted,
		report.Metrics.StoresConverted,
		report.Metrics.ConversionRate,
		nullString(tag),
	)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}

	insertItemSQL := fmt.Sprintf(`
		INSERT INTO %s.pipeline_items (
			id, run_id, item_type, store, brand, action,
			due_date, priority_score, tier, notes
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10
		)`, schema)

	for _, item := range planItems(report.Plan) {
		_, err = tx.ExecContext(ctx, insertItemSQL,
			uuid.New(),
			runID,
			string(item.Kind),
			item.Store,
			nullString(item.Brand),
			item.Action,
			nullString(item.Due),
			item.Score,
			tierForScore(item.Score),
			nullString(item.Notes),
		)
		if err != nil {
			_ = tx.Rollback()
			return "", err
		}
	}

	insertBrandSQL := fmt.Sprintf(`
		INSERT INTO %s.pipeline_brand_summary (
			id, run_id, brand, order_count
		) VALUES (
			$1,$2,$3,$4
		)`, schema)

	for brand, count := range report.Metrics.OrdersByBrand {
		_, err = tx.ExecContext(ctx, insertBrandSQL,
			uuid.New(),
			runID,
			brand,
			count,
		)
		if err != nil {
			_ = tx.Rollback()
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.pipeline_runs (
			id uuid PRIMARY KEY,
			as_of date NOT NULL,
			lookahead_days integer NOT NULL,
			tasks_due integer NOT NULL,
			reorders_due integer NOT NULL,
			high_count integer NOT NULL,
			medium_count integer NOT NULL,
			low_count integer NOT NULL,
			skipped_records integer NOT NULL,
			new_stores_added integer NOT NULL,
			total_orders integer NOT NULL,
			first_orders integer NOT NULL,
			reorders integer NOT NULL,
			total_cases integer NOT NULL,
			calls_made integer NOT NULL,
			visits_made integer NOT NULL,
			emails_sent integer NOT NULL,
			stores_contacted integer NOT NULL,
			stores_converted integer NOT NULL,
			conversion_rate numeric(8,2) NOT NULL,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.pipeline_items (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.pipeline_runs(id) ON DELETE CASCADE,
			item_type text NOT NULL,
			store text NOT NULL,
			brand text,
			action text NOT NULL,
			due_date date,
			priority_score integer NOT NULL,
			tier text NOT NULL,
			notes text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.pipeline_brand_summary (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.pipeline_runs(id) ON DELETE CASCADE,
			brand text NOT NULL,
			order_count integer NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_pipeline_items_run_idx ON %s.pipeline_items (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_pipeline_items_tier_idx ON %s.pipeline_items (tier)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_pipeline_brand_summary_run_idx ON %s.pipeline_brand_summary (run_id)`, schema, schema))
	return err
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
