// Package state provides the persistent key-value store backing the
// shared counter.
//
// The store provides:
// - Persistent storage via SQLite with WAL mode
// - Typed buckets so future keys don't collide with the counter key
// - A change stream so the API layer can push resets to open clients
//
// Callers interact with plain get/set-by-key operations; serialization
// and change propagation live here. The driver is modernc.org/sqlite
// (pure Go, no CGO) so the binary cross-compiles.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"grimm.is/sincelast/internal/clock"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Common errors
var (
	ErrNotFound      = errors.New("key not found")
	ErrBucketExists  = errors.New("bucket already exists")
	ErrBucketMissing = errors.New("bucket does not exist")
	ErrStoreClosed   = errors.New("store is closed")
)

// ChangeType represents the type of state change.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Change represents a single state change published to subscribers.
type Change struct {
	ID        uint64     `json:"id"`
	Bucket    string     `json:"bucket"`
	Key       string     `json:"key"`
	Value     []byte     `json:"value,omitempty"` // nil for deletes
	Type      ChangeType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Version   uint64     `json:"version"` // Monotonic write version
}

// Store is the key-value storage interface.
type Store interface {
	// Bucket operations
	CreateBucket(name string) error
	ListBuckets() ([]string, error)

	// Key-value operations
	Get(bucket, key string) ([]byte, error)
	Set(bucket, key string, value []byte) error
	Delete(bucket, key string) error
	List(bucket string) (map[string][]byte, error)

	// Typed helpers
	GetJSON(bucket, key string, v interface{}) error
	SetJSON(bucket, key string, v interface{}) error

	// Change tracking
	Subscribe(ctx context.Context) <-chan Change
	CurrentVersion() uint64

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.RWMutex
	version uint64
	closed  bool
	clock   clock.Clock

	// Change subscribers
	subMu       sync.RWMutex
	subscribers map[uint64]chan Change
	nextSubID   uint64
}

// Options configures the SQLite store.
type Options struct {
	Path    string      // Database file path (":memory:" for in-memory)
	WALMode bool        // Enable WAL mode for better concurrency
	Clock   clock.Clock // Optional: time source (defaults to RealClock if nil)
}

// DefaultOptions returns sensible defaults.
func DefaultOptions(path string) Options {
	return Options{
		Path:    path,
		WALMode: true,
	}
}

// NewSQLiteStore creates a new SQLite-backed state store.
func NewSQLiteStore(opts Options) (*SQLiteStore, error) {
	dsn := opts.Path
	if opts.WALMode && opts.Path != ":memory:" {
		dsn += "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = &clock.RealClock{}
	}

	s := &SQLiteStore{
		db:          db,
		clock:       clk,
		subscribers: make(map[uint64]chan Change),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.loadVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load version: %w", err)
	}

	return s, nil
}

// initSchema creates the database tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
		-- Buckets table
		CREATE TABLE IF NOT EXISTS buckets (
			name TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL
		);

		-- Key-value store
		CREATE TABLE IF NOT EXISTS entries (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB,
			version INTEGER NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (bucket, key),
			FOREIGN KEY (bucket) REFERENCES buckets(name) ON DELETE CASCADE
		);

		-- Change log feeding the subscriber stream
		CREATE TABLE IF NOT EXISTS changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB,
			change_type TEXT NOT NULL,
			version INTEGER NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_changes_version ON changes(version);
	`

	_, err := s.db.Exec(schema)
	return err
}

// loadVersion loads the current version from the database.
func (s *SQLiteStore) loadVersion() error {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM changes").Scan(&version)
	if err != nil {
		return err
	}
	if version.Valid {
		s.version = uint64(version.Int64)
	}
	return nil
}

// CreateBucket creates a new bucket.
func (s *SQLiteStore) CreateBucket(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec("INSERT INTO buckets (name, created_at) VALUES (?, ?)", name, s.clock.Now())
	if err != nil {
		// Unique constraint violation
		return ErrBucketExists
	}
	return nil
}

// ListBuckets returns all bucket names.
func (s *SQLiteStore) ListBuckets() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT name FROM buckets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		buckets = append(buckets, name)
	}
	return buckets, rows.Err()
}

// Get retrieves a value by bucket and key.
func (s *SQLiteStore) Get(bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var value []byte
	err := s.db.QueryRow(
		"SELECT value FROM entries WHERE bucket = ? AND key = ?",
		bucket, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value, overwriting any prior value under the key.
func (s *SQLiteStore) Set(bucket, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	now := s.clock.Now()
	// Optimistic version increment (rolled back on error)
	s.version++
	version := s.version

	tx, err := s.db.Begin()
	if err != nil {
		s.version--
		return err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(
		"SELECT 1 FROM entries WHERE bucket = ? AND key = ?",
		bucket, key,
	).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		s.version--
		return err
	}
	isUpdate := err == nil

	_, err = tx.Exec(`
		INSERT INTO entries (bucket, key, value, version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, bucket, key, value, version, now)
	if err != nil {
		s.version--
		return err
	}

	changeType := ChangeInsert
	if isUpdate {
		changeType = ChangeUpdate
	}

	change := Change{
		Bucket:    bucket,
		Key:       key,
		Value:     value,
		Type:      changeType,
		Timestamp: now,
		Version:   version,
	}

	if err := s.recordChangeTx(tx, &change); err != nil {
		s.version--
		return err
	}

	if err := tx.Commit(); err != nil {
		s.version--
		return err
	}

	// Notify subscribers (after commit)
	s.notifySubscribers(change)

	return nil
}

// Delete removes a key.
func (s *SQLiteStore) Delete(bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"DELETE FROM entries WHERE bucket = ? AND key = ?",
		bucket, key,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	s.version++

	change := Change{
		Bucket:    bucket,
		Key:       key,
		Type:      ChangeDelete,
		Timestamp: s.clock.Now(),
		Version:   s.version,
	}

	if err := s.recordChangeTx(tx, &change); err != nil {
		s.version--
		return err
	}

	if err := tx.Commit(); err != nil {
		s.version--
		return err
	}

	s.notifySubscribers(change)

	return nil
}

// List returns all key-value pairs in a bucket.
func (s *SQLiteStore) List(bucket string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT key, value FROM entries WHERE bucket = ?", bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// GetJSON retrieves and unmarshals a JSON value.
func (s *SQLiteStore) GetJSON(bucket, key string, v interface{}) error {
	data, err := s.Get(bucket, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SetJSON marshals and stores a JSON value.
func (s *SQLiteStore) SetJSON(bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(bucket, key, data)
}

// recordChangeTx writes a change to the change log using an existing transaction.
func (s *SQLiteStore) recordChangeTx(tx *sql.Tx, change *Change) error {
	result, err := tx.Exec(`
		INSERT INTO changes (bucket, key, value, change_type, version, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, change.Bucket, change.Key, change.Value, change.Type, change.Version, change.Timestamp)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	change.ID = uint64(id)
	return nil
}

// notifySubscribers sends a change to all subscribers.
func (s *SQLiteStore) notifySubscribers(change Change) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			// Subscriber is slow, skip
		}
	}
}

// Subscribe returns a channel that receives all changes until ctx is done.
func (s *SQLiteStore) Subscribe(ctx context.Context) <-chan Change {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Change, 100)
	s.subscribers[id] = ch
	s.subMu.Unlock()

	// Cleanup on context cancellation
	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		defer s.subMu.Unlock()
		// Only close if the channel is still registered (prevents double-close)
		if _, exists := s.subscribers[id]; exists {
			delete(s.subscribers, id)
			close(ch)
		}
	}()

	return ch
}

// CurrentVersion returns the current write version.
func (s *SQLiteStore) CurrentVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	// Close all subscriber channels
	s.subMu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subMu.Unlock()

	return s.db.Close()
}
