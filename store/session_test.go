package store

import (
	"testing"

	"harmonichain/primitives"
)

type widget struct {
	id   primitives.ObjectID
	name string
}

func (w widget) Clone() widget                             { return w }
func (w widget) ObjectID() primitives.ObjectID             { return w.id }
func (w widget) WithObjectID(id primitives.ObjectID) widget { w.id = id; return w }

func TestUndoIsolationReusesIdentifier(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)

	s1 := db.StartUndoSession()
	id1, err := widgets.Create(func(w *widget) { w.name = "first" })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id1.Instance != 0 {
		t.Fatalf("expected first instance 0, got %d", id1.Instance)
	}
	s1.Undo()

	if widgets.Len() != 0 {
		t.Fatalf("expected table empty after undo, got %d rows", widgets.Len())
	}

	s2 := db.StartUndoSession()
	id2, err := widgets.Create(func(w *widget) { w.name = "second" })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id2.Instance != 0 {
		t.Fatalf("expected instance to be reused as 0 after full undo, got %d", id2.Instance)
	}
	s2.Merge()

	row, ok := widgets.Get(id2)
	if !ok || row.name != "second" {
		t.Fatalf("expected merged row to persist, got %+v ok=%v", row, ok)
	}
}

func TestNestedSessionMergeThenUndo(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)

	outer := db.StartUndoSession()
	id, err := widgets.Create(func(w *widget) { w.name = "outer" })
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inner := db.StartUndoSession()
	if err := widgets.Modify(id, func(w *widget) { w.name = "inner" }); err != nil {
		t.Fatalf("modify: %v", err)
	}
	inner.Merge()

	row, _ := widgets.Get(id)
	if row.name != "inner" {
		t.Fatalf("expected inner mutation visible after merge, got %q", row.name)
	}

	outer.Undo()
	if widgets.Len() != 0 {
		t.Fatalf("expected outer undo to revert the merged inner mutation too, got %d rows", widgets.Len())
	}
}

func TestModifyRecordsPriorValueForUndo(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)

	s := db.StartUndoSession()
	id, _ := widgets.Create(func(w *widget) { w.name = "v1" })
	s.Merge()

	s2 := db.StartUndoSession()
	if err := widgets.Modify(id, func(w *widget) { w.name = "v2" }); err != nil {
		t.Fatalf("modify: %v", err)
	}
	s2.Undo()

	row, ok := widgets.Get(id)
	if !ok {
		t.Fatalf("expected row to still exist")
	}
	if row.name != "v1" {
		t.Fatalf("expected value reverted to v1, got %q", row.name)
	}
}

func TestRemoveThenUndoReinstatesRow(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)

	s := db.StartUndoSession()
	id, _ := widgets.Create(func(w *widget) { w.name = "v1" })
	s.Merge()

	s2 := db.StartUndoSession()
	if err := widgets.Remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if widgets.Len() != 0 {
		t.Fatalf("expected row removed")
	}
	s2.Undo()

	row, ok := widgets.Get(id)
	if !ok || row.name != "v1" {
		t.Fatalf("expected row reinstated, got %+v ok=%v", row, ok)
	}
}
