package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// schema holds file hashes across uploads for longitudinal deduplication.
// Lookups take the lowest id, so the earliest stored file is always the
// original.
const schema = `
CREATE TABLE IF NOT EXISTS file_hashes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	hash       TEXT    NOT NULL,
	path       TEXT    NOT NULL,
	upload_id  TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_hashes_user_hash ON file_hashes(user_id, hash);
`

// SQLiteStore persists file hashes in a local sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and if needed initializes) the store at path
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedup store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize dedup store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Lookup implements Store
func (s *SQLiteStore) Lookup(ctx context.Context, userID int64, hash string) (FileRef, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, upload_id, hash FROM file_hashes
		 WHERE user_id = ? AND hash = ?
		 ORDER BY id LIMIT 1`, userID, hash)

	var ref FileRef
	err := row.Scan(&ref.Path, &ref.UploadID, &ref.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return FileRef{}, false, nil
	}
	if err != nil {
		return FileRef{}, false, err
	}
	return ref, true, nil
}

// Record implements Store
func (s *SQLiteStore) Record(ctx context.Context, userID int64, ref FileRef) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_hashes (user_id, hash, path, upload_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, ref.Hash, ref.Path, ref.UploadID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
