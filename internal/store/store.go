package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/go-tangra/go-tangra-memdev/internal/codec"
	"github.com/go-tangra/go-tangra-memdev/internal/collector"
)

// SnapshotRecord represents a stored snapshot row.
type SnapshotRecord struct {
	ID           int64
	UUID         string
	Hostname     string
	Source       string
	Kernel       string
	DeviceCount  int
	AvgFrequency uint64
	CollectedAt  time.Time
	StoredAt     time.Time
	SnapshotJSON string
}

// ListFilter holds optional query parameters for listing snapshots.
type ListFilter struct {
	Hostname        string
	Source          string
	CollectedAfter  *time.Time
	CollectedBefore *time.Time
	PageSize        int
	Page            int
}

// Store provides CRUD operations for snapshot records.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a snapshot, lifting the indexed columns out of it, and
// returns the assigned UUID and stored_at time.
func (s *Store) Insert(ctx context.Context, snap *collector.Snapshot) (string, time.Time, error) {
	data, err := codec.MarshalSnapshot(snap)
	if err != nil {
		return "", time.Time{}, err
	}

	var deviceCount int
	var avgFreq uint64
	if snap.Memory != nil {
		deviceCount = len(snap.Memory.Devices)
		avgFreq = snap.Memory.AvgFrequency()
	}

	id := uuid.NewString()
	storedAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (snapshot_uuid, hostname, source, kernel, device_count, avg_frequency_mts, collected_at, stored_at, snapshot_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		snap.Hostname,
		snap.Source,
		snap.Kernel,
		deviceCount,
		avgFreq,
		snap.CollectedAt.UTC().Format(time.RFC3339),
		storedAt.Format(time.RFC3339),
		string(data),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("insert snapshot: %w", err)
	}

	return id, storedAt, nil
}

// Get retrieves a snapshot record by UUID.
func (s *Store) Get(ctx context.Context, id string) (*SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, snapshot_uuid, hostname, source, kernel, device_count, avg_frequency_mts, collected_at, stored_at, snapshot_json
		 FROM snapshots WHERE snapshot_uuid = ?`, id)

	return scanRecord(row)
}

// GetLatestByHostname retrieves the most recent snapshot for a hostname.
func (s *Store) GetLatestByHostname(ctx context.Context, hostname string) (*SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, snapshot_uuid, hostname, source, kernel, device_count, avg_frequency_mts, collected_at, stored_at, snapshot_json
		 FROM snapshots WHERE hostname = ? ORDER BY collected_at DESC LIMIT 1`, hostname)

	return scanRecord(row)
}

// Delete removes a snapshot record by UUID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE snapshot_uuid = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List returns snapshot summaries matching the given filter. The
// snapshot JSON is omitted from the rows to keep pages small.
func (s *Store) List(ctx context.Context, f ListFilter) ([]SnapshotRecord, int, error) {
	where, args := buildWhere(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM snapshots" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshots: %w", err)
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, snapshot_uuid, hostname, source, kernel, device_count, avg_frequency_mts, collected_at, stored_at, ''
		FROM snapshots` + where + ` ORDER BY collected_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		rec, err := scanRecordFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}

	return records, total, rows.Err()
}

// Purge deletes snapshot records older than the given duration.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE collected_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return result.RowsAffected()
}

func buildWhere(f ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Hostname != "" {
		conditions = append(conditions, "hostname = ?")
		args = append(args, f.Hostname)
	}
	if f.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, f.Source)
	}
	if f.CollectedAfter != nil {
		conditions = append(conditions, "collected_at >= ?")
		args = append(args, f.CollectedAfter.UTC().Format(time.RFC3339))
	}
	if f.CollectedBefore != nil {
		conditions = append(conditions, "collected_at <= ?")
		args = append(args, f.CollectedBefore.UTC().Format(time.RFC3339))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	where := " WHERE "
	for i, c := range conditions {
		if i > 0 {
			where += " AND "
		}
		where += c
	}
	return where, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	var collectedAt, storedAt string
	err := sc.Scan(&rec.ID, &rec.UUID, &rec.Hostname, &rec.Source, &rec.Kernel,
		&rec.DeviceCount, &rec.AvgFrequency, &collectedAt, &storedAt, &rec.SnapshotJSON)
	if err != nil {
		return nil, err
	}

	rec.CollectedAt, _ = time.Parse(time.RFC3339, collectedAt)
	rec.StoredAt, _ = time.Parse(time.RFC3339, storedAt)

	return &rec, nil
}

func scanRecord(row *sql.Row) (*SnapshotRecord, error) {
	return scan(row)
}

func scanRecordFromRows(rows *sql.Rows) (*SnapshotRecord, error) {
	return scan(rows)
}
