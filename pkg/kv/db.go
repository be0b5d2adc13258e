package kv

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kvforge/llrbkv/pkg/llrb"
	"github.com/kvforge/llrbkv/pkg/log"
	"github.com/kvforge/llrbkv/pkg/metrics"
	"github.com/kvforge/llrbkv/pkg/store"
)

// DB is the embedded database handle: one backing file, one block store,
// one tree, reachable concurrently from a single goroutine at a time.
type DB struct {
	store *store.Store
	tree  *llrb.Tree

	connectionID    string
	logger          zerolog.Logger
	healthComponent string
	closed          bool
}

// Connect opens (creating if absent) the file at path and loads its
// current root. The returned DB is ready for Get/Set/Delete/Commit.
func Connect(path string, opts ...Option) (*DB, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	tree, err := llrb.Open(s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	connectionID := uuid.New().String()
	db := &DB{
		store:        s,
		tree:         tree,
		connectionID: connectionID,
		logger:       log.WithComponent("db").With().Str("connection_id", connectionID).Logger(),
	}
	for _, opt := range opts {
		opt(db)
	}

	if db.healthComponent != "" {
		metrics.RegisterComponent(db.healthComponent, true, "open")
	}

	db.logger.Info().Str("path", path).Msg("database connected")
	return db, nil
}

// ConnectionID returns the random identifier generated for this handle at
// Connect time, useful for correlating log lines from multiple handles
// open against the same file.
func (db *DB) ConnectionID() string {
	return db.connectionID
}

func (db *DB) assertOpen() error {
	if db.closed {
		return ErrClosed
	}
	return nil
}

// Get returns the value bound to key, or ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	if err := db.assertOpen(); err != nil {
		return nil, err
	}
	v, err := db.tree.Get(string(key))
	if err != nil {
		return nil, fmt.Errorf("llrbkv: get %q: %w", key, err)
	}
	return v, nil
}

// Set binds key to value in the in-memory root. The write is not durable
// until Commit.
func (db *DB) Set(key, value []byte) error {
	if err := db.assertOpen(); err != nil {
		return err
	}
	if err := db.tree.Set(string(key), value); err != nil {
		return fmt.Errorf("llrbkv: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the in-memory root, or returns ErrNotFound
// leaving the root unchanged.
func (db *DB) Delete(key []byte) error {
	if err := db.assertOpen(); err != nil {
		return err
	}
	if err := db.tree.Delete(string(key)); err != nil {
		return fmt.Errorf("llrbkv: delete %q: %w", key, err)
	}
	return nil
}

// Commit publishes the current in-memory root as the new durable root.
func (db *DB) Commit() error {
	if err := db.assertOpen(); err != nil {
		return err
	}
	if err := db.tree.Commit(); err != nil {
		return fmt.Errorf("llrbkv: commit: %w", err)
	}
	return nil
}

// RootKey returns the key at the current in-memory root, or ErrEmpty.
func (db *DB) RootKey() ([]byte, error) {
	if err := db.assertOpen(); err != nil {
		return nil, err
	}
	key, err := db.tree.RootKey()
	if err != nil {
		return nil, fmt.Errorf("llrbkv: root key: %w", err)
	}
	return []byte(key), nil
}

// Stats reports block-store-level counters for monitoring and the CLI's
// stats command. Called on a closed handle, or if the underlying reads
// fail, it returns a zero Stats rather than an error: it is a best-effort
// diagnostic, not part of the engine's error-carrying operations.
func (db *DB) Stats() Stats {
	if db.closed {
		return Stats{}
	}

	size, err := db.store.Size()
	if err != nil {
		db.logger.Warn().Err(err).Msg("stats: file size unavailable")
		return Stats{}
	}
	depth, err := db.tree.Depth()
	if err != nil {
		db.logger.Warn().Err(err).Msg("stats: tree depth unavailable")
		return Stats{}
	}

	return Stats{
		FileSizeBytes: size,
		TreeDepth:     depth,
	}
}

// Close releases the advisory lock if held and closes the backing file.
// Further Get/Set/Delete/Commit/RootKey calls on db return ErrClosed; a
// second Close returns nil.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	if db.healthComponent != "" {
		metrics.UpdateComponent(db.healthComponent, false, "closed")
	}
	if err := db.store.Close(); err != nil {
		return fmt.Errorf("llrbkv: close: %w", err)
	}
	return nil
}

// Stats is a point-in-time snapshot of block-store-level counters.
type Stats struct {
	FileSizeBytes int64
	TreeDepth     int
}
