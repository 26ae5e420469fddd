package store

import "github.com/google/uuid"

// undoEntry reverts exactly one create/modify/remove performed while a
// session was open. Entries close over the owning table's map directly so
// the session stack itself stays free of the generic row type (spec §4.3,
// §9's "stack of diffs" design note).
type undoEntry struct {
	table string
	undo  func()
}

// Session is a single scope of a reversible-mutation stack. Sessions nest
// LIFO: Undo() reverts this session's own entries in reverse order and pops
// it; Merge() folds its entries into the parent session (or commits them,
// if this was the outermost session) per spec §4.3.
type Session struct {
	ID      uuid.UUID
	db      *Database
	entries []undoEntry
	closed  bool
}

func newSession(db *Database) *Session {
	return &Session{ID: uuid.New(), db: db}
}

func (s *Session) push(table string, undo func()) {
	if s == nil || s.closed {
		return
	}
	s.entries = append(s.entries, undoEntry{table: table, undo: undo})
}

// Undo reverts every mutation recorded in this session, in reverse order,
// and pops it off the database's session stack. Undo is idempotent-safe to
// call at most once; calling it twice panics, since that would indicate a
// logic error in the caller's session bookkeeping.
func (s *Session) Undo() {
	if s.closed {
		panic("store: session already closed")
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		s.entries[i].undo()
	}
	s.entries = nil
	s.closed = true
	s.db.popSession(s)
}

// Merge folds this session's entries into its parent (the session
// immediately below it on the stack), or commits them permanently if this
// was the outermost session. Either way this session is popped and can no
// longer be undone directly; undoing the parent after a merge also reverts
// the merged child's entries.
func (s *Session) Merge() {
	if s.closed {
		panic("store: session already closed")
	}
	parent := s.db.popSession(s)
	if parent != nil {
		parent.entries = append(parent.entries, s.entries...)
	}
	s.entries = nil
	s.closed = true
}
