package store

import "bytes"

// namedTable is the minimal surface the Database needs from a registered
// Table, independent of its row type, for snapshot enumeration ordering and
// persistence.
type namedTable interface {
	Name() string
	EncodeRows(buf *bytes.Buffer) error
	DecodeRows(r *byteReader) error
}

// Database owns the full set of tables and the stack of open undo
// sessions. It is the object store of spec §4.3: a single-threaded,
// synchronous mutable resource (spec §5) — callers must not share a
// Database or its sessions across goroutines.
type Database struct {
	tables   []namedTable
	sessions []*Session
}

// New constructs an empty Database with no tables registered yet; callers
// register tables via NewTable(db, ...) immediately after construction.
func New() *Database {
	return &Database{}
}

func (db *Database) register(t namedTable) {
	db.tables = append(db.tables, t)
}

// Tables returns the registered tables in registration order, the order
// snapshot persistence walks them in (spec §6).
func (db *Database) Tables() []namedTable {
	out := make([]namedTable, len(db.tables))
	copy(out, db.tables)
	return out
}

// StartUndoSession pushes a new session scope onto the stack (spec §4.3).
func (db *Database) StartUndoSession() *Session {
	s := newSession(db)
	db.sessions = append(db.sessions, s)
	return s
}

// session returns the currently open (innermost) session, or a discarded
// sink session if none is open so direct, session-less mutation (e.g.
// genesis loading) never touches the session stack.
func (db *Database) session() *Session {
	if len(db.sessions) == 0 {
		return &Session{db: db}
	}
	return db.sessions[len(db.sessions)-1]
}

// popSession pops s off the stack (which must be the innermost session) and
// returns its new parent, or nil if the stack is now empty.
func (db *Database) popSession(s *Session) *Session {
	if len(db.sessions) == 0 || db.sessions[len(db.sessions)-1] != s {
		panic("store: session is not the innermost open session")
	}
	db.sessions = db.sessions[:len(db.sessions)-1]
	if len(db.sessions) == 0 {
		return nil
	}
	return db.sessions[len(db.sessions)-1]
}

// OpenSessionDepth reports how many undo sessions are currently nested,
// primarily for diagnostics and tests.
func (db *Database) OpenSessionDepth() int { return len(db.sessions) }

// Snapshot serializes every registered table, in registration order, as the
// concatenation spec §6 defines: a replay of genesis plus every committed
// block against an empty Database must reproduce byte-identical output.
// Snapshotting is only meaningful with no undo session open, since an open
// session's pending rollback functions are not part of the durable state.
func (db *Database) Snapshot() ([]byte, error) {
	if len(db.sessions) != 0 {
		return nil, errSnapshotWithOpenSession
	}
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(len(db.tables)))
	for _, t := range db.tables {
		writeString(&buf, t.Name())
		if err := t.EncodeRows(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// LoadSnapshot restores every registered table's rows from a buffer
// produced by Snapshot. Tables must already be registered (via NewTable) in
// the same order they were when the snapshot was taken; LoadSnapshot
// verifies each table's recorded name matches before decoding its rows.
func (db *Database) LoadSnapshot(data []byte) error {
	if len(db.sessions) != 0 {
		return errSnapshotWithOpenSession
	}
	r := &byteReader{data: data}
	count, err := readUvarint(r)
	if err != nil {
		return err
	}
	if int(count) != len(db.tables) {
		return errSnapshotTableCountMismatch(len(db.tables), int(count))
	}
	for _, t := range db.tables {
		name, err := readString(r)
		if err != nil {
			return err
		}
		if name != t.Name() {
			return errSnapshotTableNameMismatch(t.Name(), name)
		}
		if err := t.DecodeRows(r); err != nil {
			return err
		}
	}
	return nil
}
