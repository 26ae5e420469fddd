package store

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"

	"harmonichain/primitives"
)

// Cloner is implemented by every row type storable in a Table. Clone must
// return a deep copy so that undo snapshots and about-to-modify projections
// are immune to later in-place mutation, following the Clone() idiom the
// teacher repo uses throughout its native/* value types (e.g.
// native/escrow/types.go's ArbitratorSet.Clone).
type Cloner[T any] interface {
	Clone() T
}

// Indexed is implemented by row types that have an identifier. WithObjectID
// returns a copy stamped with the given id rather than mutating in place,
// so the constraint only ever needs T's value method set (a pointer-receiver
// setter would make T fail to satisfy Table's generic constraint).
type Indexed[T any] interface {
	ObjectID() primitives.ObjectID
	WithObjectID(primitives.ObjectID) T
}

// Row is the combined constraint every table's element type must satisfy.
type Row[T any] interface {
	Cloner[T]
	Indexed[T]
}

// Table is a typed, identifier-keyed collection of rows of type T, the
// "table" of spec §3/§4.3. It is the sole source of truth for its rows;
// attached Index values are consulted by queries but never authoritative
// (spec §4.3).
type Table[T Row[T]] struct {
	name         string
	space        primitives.Space
	typ          primitives.Type
	db           *Database
	rows         map[primitives.ObjectID]T
	nextInstance uint64
	indices      []Index[T]
}

// NewTable registers a new table under the database for the given space and
// type tag.
func NewTable[T Row[T]](db *Database, name string, space primitives.Space, typ primitives.Type) *Table[T] {
	t := &Table[T]{
		name:  name,
		space: space,
		typ:   typ,
		db:    db,
		rows:  make(map[primitives.ObjectID]T),
	}
	db.register(t)
	return t
}

// Name returns the table's registered name (used by snapshot ordering).
func (t *Table[T]) Name() string { return t.name }

// AttachIndex registers a secondary index to observe this table's mutations.
// Indices must be attached before any row is created if they are expected
// to reflect every row (spec §4.3 invariant 5).
func (t *Table[T]) AttachIndex(idx Index[T]) {
	t.indices = append(t.indices, idx)
}

// Create allocates a new identifier, applies init to the zero value, inserts
// the row, and notifies attached indices. The created row's identifier is
// never reused even if the row is later removed (spec §3).
func (t *Table[T]) Create(init func(*T)) (primitives.ObjectID, error) {
	instance := t.nextInstance
	if instance > primitives.MaxInstance {
		return primitives.ObjectID{}, errTableFull(t.name)
	}
	id, err := primitives.NewObjectID(t.space, t.typ, instance)
	if err != nil {
		return primitives.ObjectID{}, err
	}
	t.nextInstance++

	var row T
	if init != nil {
		init(&row)
	}
	row = row.WithObjectID(id)
	t.rows[id] = row

	for _, idx := range t.indices {
		idx.ObjectInserted(id, row)
	}

	t.db.session().push(t.name, func() {
		delete(t.rows, id)
		for _, idx := range t.indices {
			idx.ObjectRemoved(id, row)
		}
		if t.nextInstance == instance+1 {
			t.nextInstance = instance
		}
	})
	return id, nil
}

// Get returns a copy of the row with the given identifier.
func (t *Table[T]) Get(id primitives.ObjectID) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return row.Clone(), true
}

// MustGet returns the row or panics; evaluators use this once an id has
// already been confirmed to exist (a dangling reference is an invariant
// violation per spec §3).
func (t *Table[T]) MustGet(id primitives.ObjectID) T {
	row, ok := t.Get(id)
	if !ok {
		panic("store: dangling reference to " + id.String() + " in table " + t.name)
	}
	return row
}

// Modify applies mutate to the row with the given identifier, running the
// about-to-modify/object-modified index hooks around it (spec §4.3's
// mutation protocol) and recording the prior value for undo.
func (t *Table[T]) Modify(id primitives.ObjectID, mutate func(*T)) error {
	row, ok := t.rows[id]
	if !ok {
		return errNotFound(t.name, id)
	}
	prior := row.Clone()
	for _, idx := range t.indices {
		idx.AboutToModify(id, prior)
	}

	updated := row.Clone()
	mutate(&updated)
	updated = updated.WithObjectID(id)
	t.rows[id] = updated

	for _, idx := range t.indices {
		idx.ObjectModified(id, updated)
	}

	t.db.session().push(t.name, func() {
		t.rows[id] = prior
		for _, idx := range t.indices {
			idx.AboutToModify(id, updated)
		}
		for _, idx := range t.indices {
			idx.ObjectModified(id, prior)
		}
	})
	return nil
}

// Remove deletes the row with the given identifier, notifying indices and
// recording the prior value so undo can reinsert it verbatim (but never at
// a fresh identifier: undo restores the exact same id).
func (t *Table[T]) Remove(id primitives.ObjectID) error {
	row, ok := t.rows[id]
	if !ok {
		return errNotFound(t.name, id)
	}
	delete(t.rows, id)
	for _, idx := range t.indices {
		idx.ObjectRemoved(id, row)
	}

	t.db.session().push(t.name, func() {
		t.rows[id] = row
		for _, idx := range t.indices {
			idx.ObjectInserted(id, row)
		}
	})
	return nil
}

// Len reports the number of live rows, primarily for diagnostics and tests.
func (t *Table[T]) Len() int { return len(t.rows) }

// EncodeRows appends every row, in ascending ObjectID order, to buf as a
// count-prefixed sequence of reflection-encoded row bodies. This is the
// per-table unit spec §6's snapshot format concatenates.
func (t *Table[T]) EncodeRows(buf *bytes.Buffer) error {
	rows := t.All()
	writeUvarint(buf, uint64(len(rows)))
	for _, row := range rows {
		if err := encodeRowValue(buf, reflect.ValueOf(row)); err != nil {
			return fmt.Errorf("store: encode table %s: %w", t.name, err)
		}
	}
	return nil
}

// DecodeRows replaces the table's contents with rows read from r, restoring
// each row's original ObjectID (never reassigning instances) and advancing
// nextInstance past the highest instance loaded, so subsequent Create calls
// cannot collide with a replayed row.
func (t *Table[T]) DecodeRows(r *byteReader) error {
	count, err := readUvarint(r)
	if err != nil {
		return fmt.Errorf("store: decode table %s: %w", t.name, err)
	}
	rows := make(map[primitives.ObjectID]T, count)
	var nextInstance uint64
	for i := uint64(0); i < count; i++ {
		var row T
		if err := decodeRowValue(r, reflect.ValueOf(&row).Elem()); err != nil {
			return fmt.Errorf("store: decode table %s: %w", t.name, err)
		}
		id := row.ObjectID()
		rows[id] = row
		if id.Instance >= nextInstance {
			nextInstance = id.Instance + 1
		}
	}
	t.rows = rows
	t.nextInstance = nextInstance
	for id, row := range t.rows {
		for _, idx := range t.indices {
			idx.ObjectInserted(id, row)
		}
	}
	return nil
}

// All returns every row in ascending primary-key (ObjectID) order, the only
// iteration order spec §4.3 permits at evaluator/snapshot boundaries.
func (t *Table[T]) All() []T {
	ids := make([]primitives.ObjectID, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id].Clone())
	}
	return out
}
