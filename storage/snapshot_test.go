package storage

import (
	"testing"

	"harmonichain/primitives"
	"harmonichain/store"
)

type record struct {
	id    primitives.ObjectID
	label string
}

func (r record) Clone() record                             { return r }
func (r record) ObjectID() primitives.ObjectID              { return r.id }
func (r record) WithObjectID(id primitives.ObjectID) record { r.id = id; return r }

func TestSaveAndLoadSnapshot(t *testing.T) {
	db := store.New()
	records := store.NewTable[record](db, "records", primitives.SpaceProtocol, 1)
	if _, err := records.Create(func(r *record) { r.label = "first" }); err != nil {
		t.Fatalf("create: %v", err)
	}

	kv := NewMemDB()
	if err := kv.SaveSnapshot(db, 42); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	restored := store.New()
	restoredRecords := store.NewTable[record](restored, "records", primitives.SpaceProtocol, 1)

	height, err := kv.LoadSnapshot(restored)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if height != 42 {
		t.Fatalf("expected height 42, got %d", height)
	}
	if restoredRecords.Len() != 1 {
		t.Fatalf("expected 1 row restored, got %d", restoredRecords.Len())
	}
}

func TestLoadSnapshotNoneSaved(t *testing.T) {
	kv := NewMemDB()
	db := store.New()
	if _, err := kv.LoadSnapshot(db); err != ErrNoSnapshot {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}
