package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// SyncRun is one attempt of the feed producer to export and publish.
type SyncRun struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Count      int       `json:"count"`
	SnapshotID string    `json:"snapshotId,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type SyncRunsStore interface {
	RecordRun(ctx context.Context, run *SyncRun) error
	ListRuns(ctx context.Context, limit int) ([]SyncRun, error)
}

type syncRunsStore struct {
	db *sql.DB
	pg bool
}

func NewSyncRunsStore(db *sql.DB) SyncRunsStore {
	return &syncRunsStore{db: db, pg: isPostgresDB(db)}
}

func (s *syncRunsStore) RecordRun(ctx context.Context, run *SyncRun) error {
	if run == nil {
		return nil
	}
	if run.ID == "" {
		run.ID = uuid.Must(uuid.NewV7()).String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	_, err := s.db.ExecContext(ctx, rebind(s.pg, `
		INSERT INTO sync_runs(id, trigger_source, outcome, row_count, snapshot_id, error_text, started_at, finished_at)
		VALUES(?,?,?,?,?,?,?,?)`),
		run.ID, strings.TrimSpace(run.Trigger), run.Outcome, run.Count, run.SnapshotID, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

func (s *syncRunsStore) ListRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	query := `SELECT id, trigger_source, outcome, row_count, snapshot_id, error_text, started_at, finished_at FROM sync_runs ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []SyncRun{}
	for rows.Next() {
		var r SyncRun
		if err := rows.Scan(&r.ID, &r.Trigger, &r.Outcome, &r.Count, &r.SnapshotID, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.StartedAt = r.StartedAt.UTC()
		r.FinishedAt = r.FinishedAt.UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}
