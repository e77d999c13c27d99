package property

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on space_props.rev for change polling
const currentSchemaVersion = 1

// DefaultDBPollInterval is how often a DBStore looks for foreign writes.
const DefaultDBPollInterval = 250 * time.Millisecond

// DBStore is a Store backed by a SQLite file. Several processes opening the
// same file share one space; each polls the revision column to learn about
// writes made by the others.
type DBStore struct {
	db   *sql.DB
	user string

	notes        *notifier
	pollInterval time.Duration
	lastRev      int64

	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

type dbOptions struct {
	pollInterval time.Duration
	identity     IdentityGenerator
}

// DBOption configures OpenDB.
type DBOption func(*dbOptions)

// WithDBPollInterval overrides DefaultDBPollInterval.
func WithDBPollInterval(d time.Duration) DBOption {
	return func(o *dbOptions) {
		o.pollInterval = d
	}
}

// WithIdentity sets the generator used for the local participant's identity.
func WithIdentity(gen IdentityGenerator) DBOption {
	return func(o *dbOptions) {
		o.identity = gen
	}
}

// OpenDB creates or opens a SQLite space at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention between processes
//
// Only writes made after OpenDB returns produce change notifications.
func OpenDB(path string, opts ...DBOption) (*DBStore, error) {
	o := dbOptions{
		pollInterval: DefaultDBPollInterval,
		identity:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	var rev int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(rev), 0) FROM space_props`).Scan(&rev); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read revision: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DBStore{
		db:           db,
		user:         o.identity.Generate(),
		notes:        newNotifier(),
		pollInterval: o.pollInterval,
		lastRev:      rev,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	go s.poll(ctx)
	return s, nil
}

// Get implements Store.
func (s *DBStore) Get(ctx context.Context, key string) (Value, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope, value FROM space_props
		WHERE key = ?
		ORDER BY scope ASC
	`, key)
	if err != nil {
		return Value{}, false, fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	public := make(map[string]string, 1)
	protected := make(map[string]string, 1)
	for rows.Next() {
		var scope, value string
		if err := rows.Scan(&scope, &value); err != nil {
			return Value{}, false, fmt.Errorf("get %q: %w", key, err)
		}
		if Scope(scope) == ScopeProtected {
			protected[key] = value
		} else {
			public[key] = value
		}
	}
	if err := rows.Err(); err != nil {
		return Value{}, false, fmt.Errorf("get %q: %w", key, err)
	}

	v, ok := lookup(public, protected, key)
	return v, ok, nil
}

// SetPublic implements Store.
func (s *DBStore) SetPublic(ctx context.Context, key, value string) error {
	return s.set(ctx, ScopePublic, key, value)
}

// SetProtected writes key in the protected scope.
func (s *DBStore) SetProtected(ctx context.Context, key, value string) error {
	return s.set(ctx, ScopeProtected, key, value)
}

func (s *DBStore) set(ctx context.Context, scope Scope, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO space_props (key, scope, value, rev, updated_by)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(rev), 0) + 1 FROM space_props), ?)
		ON CONFLICT(key, scope) DO UPDATE SET
			value = excluded.value,
			rev = excluded.rev,
			updated_by = excluded.updated_by
	`, key, string(scope), value, s.user)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Changes implements Store.
func (s *DBStore) Changes() <-chan Change {
	return s.notes.C()
}

// LocalUser implements Store. A DBStore knows its identity from the start.
func (s *DBStore) LocalUser() (string, bool) {
	return s.user, true
}

// Close stops polling and closes the database connection.
func (s *DBStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		s.notes.Close()
		err = s.db.Close()
	})
	return err
}

// poll publishes the keys written since the last revision seen.
func (s *DBStore) poll(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		keys, rev, err := s.changedSince(ctx, s.lastRev)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("property poll failed", "error", err)
			}
			continue
		}
		if len(keys) > 0 {
			s.lastRev = rev
			s.notes.Publish(keys...)
		}
	}
}

func (s *DBStore) changedSince(ctx context.Context, since int64) ([]string, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, rev FROM space_props
		WHERE rev > ?
		ORDER BY rev ASC
	`, since)
	if err != nil {
		return nil, since, err
	}
	defer rows.Close()

	var keys []string
	last := since
	for rows.Next() {
		var key string
		var rev int64
		if err := rows.Scan(&key, &rev); err != nil {
			return nil, since, err
		}
		keys = append(keys, key)
		last = rev
	}
	return keys, last, rows.Err()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes the revision column used by change polling.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_space_props_rev ON space_props(rev)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *DBStore) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
