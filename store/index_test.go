package store

import (
	"reflect"
	"sort"
	"testing"

	"harmonichain/primitives"
)

type track struct {
	id     primitives.ObjectID
	genres []string
}

func (t track) Clone() track {
	out := t
	out.genres = append([]string(nil), t.genres...)
	return out
}
func (t track) ObjectID() primitives.ObjectID            { return t.id }
func (t track) WithObjectID(id primitives.ObjectID) track { t.id = id; return t }

func projectGenres(t track) []string { return t.genres }

func TestByGenreIndexReflectsMutationSequence(t *testing.T) {
	db := New()
	tracks := NewTable[track](db, "tracks", primitives.SpaceProtocol, 1)
	byGenre := NewOrderedMultiIndex[track, string](projectGenres)
	tracks.AttachIndex(byGenre)

	s := db.StartUndoSession()
	rock, _ := tracks.Create(func(tr *track) { tr.genres = []string{"rock", "indie"} })
	jazz, _ := tracks.Create(func(tr *track) { tr.genres = []string{"jazz"} })
	s.Merge()

	assertIDs(t, byGenre.Range("rock"), []primitives.ObjectID{rock})
	assertIDs(t, byGenre.Range("jazz"), []primitives.ObjectID{jazz})

	s2 := db.StartUndoSession()
	if err := tracks.Modify(rock, func(tr *track) { tr.genres = []string{"indie", "jazz"} }); err != nil {
		t.Fatalf("modify: %v", err)
	}
	assertIDs(t, byGenre.Range("rock"), nil)
	assertIDs(t, byGenre.Range("jazz"), []primitives.ObjectID{jazz, rock})
	assertIDs(t, byGenre.Range("indie"), []primitives.ObjectID{rock})
	s2.Undo()

	assertIDs(t, byGenre.Range("rock"), []primitives.ObjectID{rock})
	assertIDs(t, byGenre.Range("jazz"), []primitives.ObjectID{jazz})
	assertIDs(t, byGenre.Range("indie"), []primitives.ObjectID{rock})
}

func assertIDs(t *testing.T, got, want []primitives.ObjectID) {
	t.Helper()
	sort.Slice(got, func(i, j int) bool { return got[i].Less(got[j]) })
	sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
