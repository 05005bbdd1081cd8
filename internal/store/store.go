package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/git-review/internal/diff"
)

// ErrStorage marks any persistence failure. Callers branch on it with
// errors.Is; the wrapped message carries the failing operation.
var ErrStorage = errors.New("review storage failure")

// Progress summarizes the review state of one scope.
type Progress struct {
	TotalHunks     int `json:"total_hunks"`
	Reviewed       int `json:"reviewed"`
	Unreviewed     int `json:"unreviewed"`
	Stale          int `json:"stale"`
	TotalFiles     int `json:"total_files"`
	FilesRemaining int `json:"files_remaining"`
}

// Complete reports whether every tracked hunk is reviewed and none is
// stale. An empty scope is complete.
func (p Progress) Complete() bool {
	return p.Unreviewed == 0 && p.Stale == 0
}

// Store is the review-state persistence contract. A scope is the diff
// range the hunks were parsed from (a base ref or ref range); hunks are
// keyed by (scope, file path, content hash).
type Store interface {
	// GetStatus returns the recorded status for one hunk identity,
	// or StatusUnreviewed when no record exists.
	GetStatus(ctx context.Context, scope, filePath, contentHash string) (diff.Status, error)

	// SetStatus upserts one hunk record. StatusReviewed stamps the
	// review time; any other status clears it.
	SetStatus(ctx context.Context, scope, filePath, contentHash string, status diff.Status) error

	// SyncWithDiff reconciles the scope with the current diff in one
	// transaction: unseen (file, hash) pairs are inserted as
	// unreviewed, existing records keep their status, and records
	// whose pair is absent from files are marked stale.
	SyncWithDiff(ctx context.Context, scope string, files []diff.File) error

	// ApproveAll marks every non-reviewed hunk in the scope as
	// reviewed and returns how many records changed.
	ApproveAll(ctx context.Context, scope string) (int, error)

	// ApproveFile is ApproveAll restricted to one file path.
	ApproveFile(ctx context.Context, scope, filePath string) (int, error)

	// Reset deletes every record in the scope.
	Reset(ctx context.Context, scope string) error

	// ListScopes returns every known scope in lexical order.
	ListScopes(ctx context.Context) ([]string, error)

	// Progress aggregates hunk and file counts for the scope. It is a
	// pure read; callers sync first when they need a fresh view.
	Progress(ctx context.Context, scope string) (Progress, error)
}

type sqliteStore struct {
	db *sqlx.DB
}

// NewStore returns the SQLite-backed Store over an open database.
func NewStore(db *DB) Store {
	return &sqliteStore{db: db.DB}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *sqliteStore) GetStatus(ctx context.Context, scope, filePath, contentHash string) (diff.Status, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM hunks WHERE scope = ? AND file_path = ? AND content_hash = ?`,
		scope, filePath, contentHash,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return diff.StatusUnreviewed, nil
	}
	if err != nil {
		return diff.StatusUnreviewed, storageErr("get status", err)
	}
	return diff.ParseStatus(raw)
}

func (s *sqliteStore) SetStatus(ctx context.Context, scope, filePath, contentHash string, status diff.Status) error {
	var reviewedAt any
	if status == diff.StatusReviewed {
		reviewedAt = now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hunks (scope, file_path, content_hash, status, reviewed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (scope, file_path, content_hash)
		 DO UPDATE SET status = excluded.status, reviewed_at = excluded.reviewed_at`,
		scope, filePath, contentHash, status.String(), reviewedAt, now(),
	)
	if err != nil {
		return storageErr("set status", err)
	}
	return nil
}

func (s *sqliteStore) SyncWithDiff(ctx context.Context, scope string, files []diff.File) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("begin sync", err)
	}
	defer func() { _ = tx.Rollback() }()

	type identity struct {
		path string
		hash string
	}
	current := make(map[identity]struct{})

	createdAt := now()
	for _, f := range files {
		for _, h := range f.Hunks {
			current[identity{f.Path, h.ContentHash}] = struct{}{}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO hunks (scope, file_path, content_hash, status, created_at)
				 VALUES (?, ?, ?, 'unreviewed', ?)
				 ON CONFLICT (scope, file_path, content_hash) DO NOTHING`,
				scope, f.Path, h.ContentHash, createdAt,
			)
			if err != nil {
				return storageErr("sync insert", err)
			}
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT file_path, content_hash FROM hunks WHERE scope = ? AND status != 'stale'`,
		scope,
	)
	if err != nil {
		return storageErr("sync scan", err)
	}
	var gone []identity
	for rows.Next() {
		var id identity
		if err := rows.Scan(&id.path, &id.hash); err != nil {
			rows.Close()
			return storageErr("sync scan", err)
		}
		if _, ok := current[id]; !ok {
			gone = append(gone, id)
		}
	}
	if err := rows.Close(); err != nil {
		return storageErr("sync scan", err)
	}

	for _, id := range gone {
		_, err := tx.ExecContext(ctx,
			`UPDATE hunks SET status = 'stale', reviewed_at = NULL
			 WHERE scope = ? AND file_path = ? AND content_hash = ?`,
			scope, id.path, id.hash,
		)
		if err != nil {
			return storageErr("sync stale", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit sync", err)
	}
	return nil
}

func (s *sqliteStore) ApproveAll(ctx context.Context, scope string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE hunks SET status = 'reviewed', reviewed_at = ?
		 WHERE scope = ? AND status != 'reviewed'`,
		now(), scope,
	)
	if err != nil {
		return 0, storageErr("approve all", err)
	}
	return rowsAffected(res)
}

func (s *sqliteStore) ApproveFile(ctx context.Context, scope, filePath string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE hunks SET status = 'reviewed', reviewed_at = ?
		 WHERE scope = ? AND file_path = ? AND status != 'reviewed'`,
		now(), scope, filePath,
	)
	if err != nil {
		return 0, storageErr("approve file", err)
	}
	return rowsAffected(res)
}

func (s *sqliteStore) Reset(ctx context.Context, scope string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM hunks WHERE scope = ?`, scope)
	if err != nil {
		return storageErr("reset", err)
	}
	return nil
}

func (s *sqliteStore) ListScopes(ctx context.Context) ([]string, error) {
	var scopes []string
	err := s.db.SelectContext(ctx, &scopes,
		`SELECT DISTINCT scope FROM hunks ORDER BY scope`)
	if err != nil {
		return nil, storageErr("list scopes", err)
	}
	return scopes, nil
}

func (s *sqliteStore) Progress(ctx context.Context, scope string) (Progress, error) {
	var p Progress

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM hunks WHERE scope = ? GROUP BY status`,
		scope,
	)
	if err != nil {
		return p, storageErr("progress", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return p, storageErr("progress", err)
		}
		status, err := diff.ParseStatus(raw)
		if err != nil {
			return p, err
		}
		switch status {
		case diff.StatusReviewed:
			p.Reviewed = count
		case diff.StatusUnreviewed:
			p.Unreviewed = count
		case diff.StatusStale:
			p.Stale = count
		}
		p.TotalHunks += count
	}
	if err := rows.Err(); err != nil {
		return p, storageErr("progress", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT file_path) FROM hunks WHERE scope = ?`,
		scope,
	).Scan(&p.TotalFiles)
	if err != nil {
		return p, storageErr("progress", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT file_path) FROM hunks WHERE scope = ? AND status != 'reviewed'`,
		scope,
	).Scan(&p.FilesRemaining)
	if err != nil {
		return p, storageErr("progress", err)
	}
	return p, nil
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("rows affected", err)
	}
	return int(n), nil
}
