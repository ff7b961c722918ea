// ABOUTME: SQLite-backed activity log for authenticated requests
// ABOUTME: Writes are best-effort; a failed insert never fails a request

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_activity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	user_email TEXT NOT NULL,
	name TEXT,
	endpoint TEXT NOT NULL,
	provider TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_activity_user_id ON user_activity(user_id);
`

// Store implements interfaces.ActivityStore on a local SQLite file.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// NewStore opens (or creates) the activity database and its schema.
func NewStore(path string, logger interfaces.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: activity database path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent request logging.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create activity schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one activity row. Callers treat failures as non-fatal.
func (s *Store) Record(ctx context.Context, entry domain.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const query = `INSERT INTO user_activity (user_id, user_email, name, endpoint, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		entry.UserID,
		entry.UserEmail,
		nullable(entry.Name),
		entry.Endpoint,
		nullable(entry.Provider),
		createdAt,
	)
	if err != nil {
		s.logger.Warn("Activity log insert failed", map[string]interface{}{
			"user_id":  entry.UserID,
			"endpoint": entry.Endpoint,
			"error":    err.Error(),
		})
		return fmt.Errorf("sqlite: record activity: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ interfaces.ActivityStore = (*Store)(nil)
