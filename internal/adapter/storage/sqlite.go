package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// blobKey is the fixed namespaced key the portfolio blob lives under.
const blobKey = "crypto-portfolio-v2"

// SQLiteStore persists the portfolio blob in a key-value table of a local
// SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	pollInterval time.Duration
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &SQLiteStore{db: db, pollInterval: defaultPollInterval}, nil
}

// Read implements domain.BlobStore.
func (s *SQLiteStore) Read(ctx context.Context) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE key = ?", blobKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read portfolio blob: %w", err)
	}
	return value, true, nil
}

// Write implements domain.BlobStore.
func (s *SQLiteStore) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		blobKey, data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to write portfolio blob: %w", err)
	}
	return nil
}

// Watch implements domain.BlobStore by polling the row's updated_at column.
func (s *SQLiteStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	last, _ := s.updatedAt(ctx)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				at, err := s.updatedAt(ctx)
				if err != nil || at == last {
					continue
				}
				last = at
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func (s *SQLiteStore) updatedAt(ctx context.Context) (int64, error) {
	var at sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM blobs WHERE key = ?", blobKey).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return at.Int64, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
