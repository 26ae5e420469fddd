package store

import (
	"sort"

	"harmonichain/primitives"
)

// Index observes a Table's mutations through the four hooks spec §4.3
// defines. Indices are derived views: the table's map is the sole
// authoritative state, and an index must be able to reconstruct its
// projection from any sequence of these calls. The about-to-modify /
// object-modified pair lets an index compare the prior and current
// projection and re-link only the difference ("add minus remove equals
// empty after idempotent projection", spec §4.3).
type Index[T any] interface {
	ObjectInserted(id primitives.ObjectID, row T)
	AboutToModify(id primitives.ObjectID, row T)
	ObjectModified(id primitives.ObjectID, row T)
	ObjectRemoved(id primitives.ObjectID, row T)
}

// OrderedMultiIndex is a secondary index keyed by a set of projected keys
// per row (e.g. content's genre tags: spec §4.3's by-genre index). Each key
// maps to a set of object ids; Range sorts that set by ObjectID before
// iterating, so iteration order never depends on Go map order, satisfying
// spec §4.3's determinism requirement.
type OrderedMultiIndex[T any, K comparable] struct {
	project func(T) []K
	byKey   map[K]map[primitives.ObjectID]struct{}
	priorBy map[primitives.ObjectID][]K
}

// NewOrderedMultiIndex builds a multi-value index. project returns the set
// of keys a row belongs under (e.g. the union of two genre fields). Range
// iterates each key's bucket in primary ObjectID order.
func NewOrderedMultiIndex[T any, K comparable](project func(T) []K) *OrderedMultiIndex[T, K] {
	return &OrderedMultiIndex[T, K]{
		project: project,
		byKey:   make(map[K]map[primitives.ObjectID]struct{}),
		priorBy: make(map[primitives.ObjectID][]K),
	}
}

func (idx *OrderedMultiIndex[T, K]) link(id primitives.ObjectID, keys []K) {
	for _, k := range keys {
		set, ok := idx.byKey[k]
		if !ok {
			set = make(map[primitives.ObjectID]struct{})
			idx.byKey[k] = set
		}
		set[id] = struct{}{}
	}
}

func (idx *OrderedMultiIndex[T, K]) unlink(id primitives.ObjectID, keys []K) {
	for _, k := range keys {
		if set, ok := idx.byKey[k]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(idx.byKey, k)
			}
		}
	}
}

func diff[K comparable](oldKeys, newKeys []K) (added, removed []K) {
	oldSet := make(map[K]struct{}, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[k] = struct{}{}
	}
	newSet := make(map[K]struct{}, len(newKeys))
	for _, k := range newKeys {
		newSet[k] = struct{}{}
	}
	for _, k := range newKeys {
		if _, ok := oldSet[k]; !ok {
			added = append(added, k)
		}
	}
	for _, k := range oldKeys {
		if _, ok := newSet[k]; !ok {
			removed = append(removed, k)
		}
	}
	return added, removed
}

// ObjectInserted implements Index.
func (idx *OrderedMultiIndex[T, K]) ObjectInserted(id primitives.ObjectID, row T) {
	idx.link(id, idx.project(row))
}

// AboutToModify implements Index: captures the prior projection so
// ObjectModified can compute the minimal add/remove set.
func (idx *OrderedMultiIndex[T, K]) AboutToModify(id primitives.ObjectID, row T) {
	idx.priorBy[id] = idx.project(row)
}

// ObjectModified implements Index.
func (idx *OrderedMultiIndex[T, K]) ObjectModified(id primitives.ObjectID, row T) {
	prior := idx.priorBy[id]
	delete(idx.priorBy, id)
	current := idx.project(row)
	added, removed := diff(prior, current)
	idx.link(id, added)
	idx.unlink(id, removed)
}

// ObjectRemoved implements Index.
func (idx *OrderedMultiIndex[T, K]) ObjectRemoved(id primitives.ObjectID, row T) {
	idx.unlink(id, idx.project(row))
}

// Range returns every object id filed under key k, in ascending ObjectID
// order (the table's primary key comparator), matching the "exactly
// {c : g in genres(c)}" property of spec §8.
func (idx *OrderedMultiIndex[T, K]) Range(k K) []primitives.ObjectID {
	set, ok := idx.byKey[k]
	if !ok {
		return nil
	}
	out := make([]primitives.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// OrderedUniqueIndex is a secondary index keyed by a single optional
// projected key per row (spec §4.3's by-category index: each content has at
// most one album type).
type OrderedUniqueIndex[T any, K comparable] struct {
	project func(T) (K, bool)
	byKey   map[K]map[primitives.ObjectID]struct{}
	priorBy map[primitives.ObjectID]*K
}

// NewOrderedUniqueIndex builds a single-optional-key index.
func NewOrderedUniqueIndex[T any, K comparable](project func(T) (K, bool)) *OrderedUniqueIndex[T, K] {
	return &OrderedUniqueIndex[T, K]{
		project: project,
		byKey:   make(map[K]map[primitives.ObjectID]struct{}),
		priorBy: make(map[primitives.ObjectID]*K),
	}
}

func (idx *OrderedUniqueIndex[T, K]) link(id primitives.ObjectID, key *K) {
	if key == nil {
		return
	}
	set, ok := idx.byKey[*key]
	if !ok {
		set = make(map[primitives.ObjectID]struct{})
		idx.byKey[*key] = set
	}
	set[id] = struct{}{}
}

func (idx *OrderedUniqueIndex[T, K]) unlink(id primitives.ObjectID, key *K) {
	if key == nil {
		return
	}
	if set, ok := idx.byKey[*key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(idx.byKey, *key)
		}
	}
}

func projectPtr[T any, K comparable](project func(T) (K, bool), row T) *K {
	if k, ok := project(row); ok {
		v := k
		return &v
	}
	return nil
}

// ObjectInserted implements Index.
func (idx *OrderedUniqueIndex[T, K]) ObjectInserted(id primitives.ObjectID, row T) {
	idx.link(id, projectPtr(idx.project, row))
}

// AboutToModify implements Index.
func (idx *OrderedUniqueIndex[T, K]) AboutToModify(id primitives.ObjectID, row T) {
	idx.priorBy[id] = projectPtr(idx.project, row)
}

// ObjectModified implements Index.
func (idx *OrderedUniqueIndex[T, K]) ObjectModified(id primitives.ObjectID, row T) {
	prior := idx.priorBy[id]
	delete(idx.priorBy, id)
	current := projectPtr(idx.project, row)
	if prior != nil && current != nil && *prior == *current {
		return
	}
	idx.unlink(id, prior)
	idx.link(id, current)
}

// ObjectRemoved implements Index.
func (idx *OrderedUniqueIndex[T, K]) ObjectRemoved(id primitives.ObjectID, row T) {
	idx.unlink(id, projectPtr(idx.project, row))
}

// Range returns every object id filed under key k, in ascending ObjectID
// order.
func (idx *OrderedUniqueIndex[T, K]) Range(k K) []primitives.ObjectID {
	set, ok := idx.byKey[k]
	if !ok {
		return nil
	}
	out := make([]primitives.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
