package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"lunchsync/internal/model"
)

// Ledger keeps a local journal of sync runs and of the orders they created.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) StartRun(ctx context.Context, runID, instance string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, instance, status, started_at) VALUES ($1, $2, $3, $4)`,
		runID, instance, model.RunStatusRunning, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

func (l *Ledger) FinishRun(ctx context.Context, report model.SyncReport) error {
	weeks, err := json.Marshal(report.Weeks)
	if err != nil {
		return fmt.Errorf("encode weeks: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = $1, created = $2, weeks = $3, finished_at = $4 WHERE id = $5`,
		model.RunStatusFinished, report.Created(), string(weeks), time.Now(), report.RunID,
	)
	if err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

func (l *Ledger) OrderCreated(ctx context.Context, runID string, rec model.OrderRecord, stored *model.StoredOrder) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	var remoteID sql.NullString
	if stored != nil && stored.ID != "" {
		remoteID = sql.NullString{String: stored.ID, Valid: true}
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO synced_orders (run_id, user_id, shipment_date, remote_id, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, shipment_date) DO NOTHING
	`, runID, rec.UserID, rec.Date(), remoteID, string(items), time.Now())
	if err != nil {
		return fmt.Errorf("insert synced order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("order already journaled", "user_id", rec.UserID, "date", rec.Date(), "run_id", runID)
	}
	return nil
}

func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, instance, status, created, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var r model.SyncRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Instance, &r.Status, &r.Created, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return runs, nil
}
