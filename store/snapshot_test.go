package store

import (
	"testing"

	"harmonichain/primitives"
)

func TestSnapshotRoundTrip(t *testing.T) {
	db := New()
	widgets := NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)

	if _, err := widgets.Create(func(w *widget) { w.name = "alpha" }); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := widgets.Create(func(w *widget) { w.name = "beta" }); err != nil {
		t.Fatalf("create: %v", err)
	}

	blob, err := db.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := New()
	restoredWidgets := NewTable[widget](restored, "widgets", primitives.SpaceProtocol, 1)

	if err := restored.LoadSnapshot(blob); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if restoredWidgets.Len() != 2 {
		t.Fatalf("expected 2 rows restored, got %d", restoredWidgets.Len())
	}
	rows := restoredWidgets.All()
	if rows[0].name != "alpha" || rows[1].name != "beta" {
		t.Fatalf("unexpected restored row order/content: %+v", rows)
	}

	// A row created after loading must not collide with a replayed instance.
	id, err := restoredWidgets.Create(func(w *widget) { w.name = "gamma" })
	if err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if id.Instance != 2 {
		t.Fatalf("expected next instance 2, got %d", id.Instance)
	}
}

func TestSnapshotRejectsOpenSession(t *testing.T) {
	db := New()
	NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)
	db.StartUndoSession()

	if _, err := db.Snapshot(); err == nil {
		t.Fatal("expected snapshot to reject an open undo session")
	}
}

func TestLoadSnapshotRejectsTableNameMismatch(t *testing.T) {
	db := New()
	NewTable[widget](db, "widgets", primitives.SpaceProtocol, 1)
	blob, err := db.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	other := New()
	NewTable[widget](other, "gadgets", primitives.SpaceProtocol, 1)
	if err := other.LoadSnapshot(blob); err == nil {
		t.Fatal("expected a table-name mismatch error")
	}
}
