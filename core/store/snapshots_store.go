package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/blake2b"

	"cjb-incidents/core/feed"
	"cjb-incidents/core/incidents"
)

// SnapshotMeta describes a stored feed snapshot without its rows.
type SnapshotMeta struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	Source      string     `json:"source"`
	Count       int        `json:"count"`
	LastUpdate  *time.Time `json:"lastUpdate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type SnapshotsStore interface {
	// SaveSnapshot stores snap unless its rows equal the latest stored
	// snapshot; saved reports whether a new record was written.
	SaveSnapshot(ctx context.Context, source string, snap feed.Snapshot) (meta *SnapshotMeta, saved bool, err error)
	LatestSnapshot(ctx context.Context) (*SnapshotMeta, *feed.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*SnapshotMeta, *feed.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error)
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

type snapshotsStore struct {
	db *sql.DB
	pg bool
}

func NewSnapshotsStore(db *sql.DB) SnapshotsStore {
	return &snapshotsStore{db: db, pg: isPostgresDB(db)}
}

// Fingerprint is a blake2b-256 digest of the rows; map keys marshal sorted so
// equal data always yields the same value.
func Fingerprint(snap feed.Snapshot) (string, error) {
	raw, err := json.Marshal(snap.Data)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

const snapshotColumns = `id, fingerprint, source, row_count, last_update, created_at`

func (s *snapshotsStore) SaveSnapshot(ctx context.Context, source string, snap feed.Snapshot) (*SnapshotMeta, bool, error) {
	if snap.Data == nil {
		snap.Data = []incidents.RawRow{}
	}
	fp, err := Fingerprint(snap)
	if err != nil {
		return nil, false, err
	}
	latest, err := s.latestMeta(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if latest != nil && latest.Fingerprint == fp {
		return latest, false, nil
	}
	var payload bytes.Buffer
	if err := snap.Encode(&payload); err != nil {
		return nil, false, err
	}
	meta := &SnapshotMeta{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Fingerprint: fp,
		Source:      strings.TrimSpace(source),
		Count:       len(snap.Data),
		CreatedAt:   time.Now().UTC(),
	}
	var lastUpdate sql.NullTime
	if !snap.LastUpdate.IsZero() {
		t := snap.LastUpdate.UTC()
		meta.LastUpdate = &t
		lastUpdate = sql.NullTime{Time: t, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, rebind(s.pg, `
		INSERT INTO feed_snapshots(id, fingerprint, source, row_count, last_update, payload, created_at)
		VALUES(?,?,?,?,?,?,?)`),
		meta.ID, meta.Fingerprint, meta.Source, meta.Count, lastUpdate, payload.String(), meta.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert snapshot: %w", err)
	}
	return meta, true, nil
}

func (s *snapshotsStore) latestMeta(ctx context.Context) (*SnapshotMeta, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM feed_snapshots ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanSnapshotMeta(row)
}

func (s *snapshotsStore) LatestSnapshot(ctx context.Context) (*SnapshotMeta, *feed.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+`, payload FROM feed_snapshots ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanSnapshot(row)
}

func (s *snapshotsStore) GetSnapshot(ctx context.Context, id string) (*SnapshotMeta, *feed.Snapshot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, rebind(s.pg, `SELECT `+snapshotColumns+`, payload FROM feed_snapshots WHERE id=?`), id)
	return scanSnapshot(row)
}

func (s *snapshotsStore) ListSnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error) {
	query := `SELECT ` + snapshotColumns + ` FROM feed_snapshots ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []SnapshotMeta{}
	for rows.Next() {
		meta, err := scanSnapshotMeta(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *meta)
	}
	return res, rows.Err()
}

// PruneSnapshots keeps the newest keep snapshots and deletes the rest.
func (s *snapshotsStore) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, rebind(s.pg, `
		DELETE FROM feed_snapshots WHERE id NOT IN (
			SELECT id FROM (SELECT id FROM feed_snapshots ORDER BY created_at DESC, id DESC LIMIT ?) AS newest
		)`), keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotMeta(row rowScanner) (*SnapshotMeta, error) {
	var (
		meta       SnapshotMeta
		lastUpdate sql.NullTime
	)
	if err := row.Scan(&meta.ID, &meta.Fingerprint, &meta.Source, &meta.Count, &lastUpdate, &meta.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lastUpdate.Valid {
		t := lastUpdate.Time.UTC()
		meta.LastUpdate = &t
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	return &meta, nil
}

func scanSnapshot(row rowScanner) (*SnapshotMeta, *feed.Snapshot, error) {
	var (
		meta       SnapshotMeta
		lastUpdate sql.NullTime
		payload    string
	)
	if err := row.Scan(&meta.ID, &meta.Fingerprint, &meta.Source, &meta.Count, &lastUpdate, &meta.CreatedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if lastUpdate.Valid {
		t := lastUpdate.Time.UTC()
		meta.LastUpdate = &t
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	snap, err := feed.DecodeSnapshot(strings.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", meta.ID, err)
	}
	return &meta, &snap, nil
}
