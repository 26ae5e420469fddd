// Package storage is the node's persistence backend. Unlike a generic
// key-value store, it exposes the one operation a node actually needs —
// save/restore a store.Database's full contents at a given block height
// (spec §6's optional persistence format) — so the snapshot/height key
// layout lives inside the backend, not in a caller-side wrapper.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"harmonichain/store"
)

// snapshotKey and heightKey are the well-known keys a backend stores the
// latest persisted object-store snapshot and the block height it was taken
// at under.
var (
	snapshotKey = []byte("state/snapshot")
	heightKey   = []byte("state/height")
)

// ErrNoSnapshot is returned by LoadSnapshot when the backend has never had
// a snapshot saved to it — the expected state for a node starting from
// genesis.
var ErrNoSnapshot = fmt.Errorf("storage: no snapshot present")

// Database is a node's persistence backend: it can save and restore a
// store.Database's full contents at a given height (spec §6: "a node may
// persist ... a snapshot ... and resume without replaying from genesis").
type Database interface {
	SaveSnapshot(db *store.Database, height uint64) error
	LoadSnapshot(db *store.Database) (uint64, error)
	Close()
}

func encodeHeight(height uint64) []byte {
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], height)
	return h[:]
}

func decodeHeight(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("storage: snapshot height missing or malformed")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// --- In-memory backend (for testing) ---

// MemDB is an in-memory Database; it never touches disk.
type MemDB struct {
	snapshot []byte
	height   []byte
}

// NewMemDB constructs an empty in-memory Database.
func NewMemDB() *MemDB {
	return &MemDB{}
}

// SaveSnapshot serializes db's current table contents and holds the blob
// (and height) in memory.
func (m *MemDB) SaveSnapshot(db *store.Database, height uint64) error {
	blob, err := db.Snapshot()
	if err != nil {
		return fmt.Errorf("storage: snapshot: %w", err)
	}
	m.snapshot = blob
	m.height = encodeHeight(height)
	return nil
}

// LoadSnapshot restores the most recently saved snapshot into db.
func (m *MemDB) LoadSnapshot(db *store.Database) (uint64, error) {
	if m.snapshot == nil {
		return 0, ErrNoSnapshot
	}
	if err := db.LoadSnapshot(m.snapshot); err != nil {
		return 0, fmt.Errorf("storage: load snapshot: %w", err)
	}
	return decodeHeight(m.height)
}

// Close is a no-op for MemDB; there is nothing to release.
func (m *MemDB) Close() {}

// --- LevelDB backend (for mainnet) ---

// LevelDB is a persistent Database backed by goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (or creates) a LevelDB-backed Database at path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// SaveSnapshot serializes db's current table contents and writes them to
// the LevelDB backend alongside the height they were taken at.
func (l *LevelDB) SaveSnapshot(db *store.Database, height uint64) error {
	blob, err := db.Snapshot()
	if err != nil {
		return fmt.Errorf("storage: snapshot: %w", err)
	}
	if err := l.db.Put(snapshotKey, blob, nil); err != nil {
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	if err := l.db.Put(heightKey, encodeHeight(height), nil); err != nil {
		return fmt.Errorf("storage: write snapshot height: %w", err)
	}
	return nil
}

// LoadSnapshot reads the most recently saved snapshot from the LevelDB
// backend and restores it into db, returning the height it was taken at.
func (l *LevelDB) LoadSnapshot(db *store.Database) (uint64, error) {
	blob, err := l.db.Get(snapshotKey, nil)
	if err != nil {
		return 0, ErrNoSnapshot
	}
	if err := db.LoadSnapshot(blob); err != nil {
		return 0, fmt.Errorf("storage: load snapshot: %w", err)
	}
	h, err := l.db.Get(heightKey, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: snapshot height missing or malformed")
	}
	return decodeHeight(h)
}

// Close closes the underlying LevelDB connection.
func (l *LevelDB) Close() {
	l.db.Close()
}
