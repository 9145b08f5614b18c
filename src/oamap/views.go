package oamap

import (
	"iter"
)

// A KeySet is a view of the keys of a map. It holds no state of its own; changes to the map
// are visible through it and removing a key from it removes the entry from the map.
type KeySet[K, V any] struct {
	m *Map[K, V]
}

// Keys returns the key view of this map. The same view is returned on every call.
func (m *Map[K, V]) Keys() *KeySet[K, V] {
	if m.keySet == nil {
		m.keySet = &KeySet[K, V]{m: m}
	}
	return m.keySet
}

// Len returns the number of keys in the map.
func (ks *KeySet[K, V]) Len() int { return ks.m.size }

// IsEmpty returns true if the map has no keys.
func (ks *KeySet[K, V]) IsEmpty() bool { return ks.m.size == 0 }

// Clear removes all entries from the map.
func (ks *KeySet[K, V]) Clear() { ks.m.Clear() }

// Contains returns true if the map has an entry for the given key.
func (ks *KeySet[K, V]) Contains(key K) bool { return ks.m.ContainsKey(key) }

// Remove removes the entry for the given key and returns true if there was one.
func (ks *KeySet[K, V]) Remove(key K) bool {
	_, removed := ks.m.Remove(key)
	return removed
}

// Iter returns a new iterator over the keys.
func (ks *KeySet[K, V]) Iter() *KeyIter[K, V] {
	return &KeyIter[K, V]{cursor: newCursor(ks.m)}
}

// All returns a sequence of all the keys.
func (ks *KeySet[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range ks.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Slice returns a copy of all the keys.
func (ks *KeySet[K, V]) Slice() []K {
	ret := make([]K, 0, ks.m.size)
	for k := range ks.All() {
		ret = append(ret, k)
	}
	return ret
}

// Values is a view of the values of a map.
type Values[K, V any] struct {
	m *Map[K, V]
}

// Values returns the value view of this map. The same view is returned on every call.
func (m *Map[K, V]) Values() *Values[K, V] {
	if m.values == nil {
		m.values = &Values[K, V]{m: m}
	}
	return m.values
}

// Len returns the number of values in the map.
func (vs *Values[K, V]) Len() int { return vs.m.size }

// IsEmpty returns true if the map has no values.
func (vs *Values[K, V]) IsEmpty() bool { return vs.m.size == 0 }

// Clear removes all entries from the map.
func (vs *Values[K, V]) Clear() { vs.m.Clear() }

// Contains returns true if any entry of the map has the given value.
func (vs *Values[K, V]) Contains(val V) bool { return vs.m.ContainsValue(val) }

// Remove removes one entry with the given value, if there is one, and returns true if it did.
func (vs *Values[K, V]) Remove(val V) bool {
	if idx := vs.m.indexOfValue(val); idx != -1 {
		vs.m.removeAt(idx)
		return true
	}
	return false
}

// Iter returns a new iterator over the values.
func (vs *Values[K, V]) Iter() *ValueIter[K, V] {
	return &ValueIter[K, V]{cursor: newCursor(vs.m)}
}

// All returns a sequence of all the values.
func (vs *Values[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range vs.m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of all the values.
func (vs *Values[K, V]) Slice() []V {
	ret := make([]V, 0, vs.m.size)
	for v := range vs.All() {
		ret = append(ret, v)
	}
	return ret
}

// An EntrySet is a view of the key/value pairs of a map.
type EntrySet[K, V any] struct {
	m *Map[K, V]
}

// Entries returns the entry view of this map. The same view is returned on every call.
func (m *Map[K, V]) Entries() *EntrySet[K, V] {
	if m.entrySet == nil {
		m.entrySet = &EntrySet[K, V]{m: m}
	}
	return m.entrySet
}

// Len returns the number of entries in the map.
func (es *EntrySet[K, V]) Len() int { return es.m.size }

// IsEmpty returns true if the map has no entries.
func (es *EntrySet[K, V]) IsEmpty() bool { return es.m.size == 0 }

// Clear removes all entries from the map.
func (es *EntrySet[K, V]) Clear() { es.m.Clear() }

// Contains returns true if the map has an entry for e.Key whose value equals e.Val.
func (es *EntrySet[K, V]) Contains(e Entry[K, V]) bool {
	return es.find(e) != -1
}

// Remove removes the entry for e.Key if its value equals e.Val, and returns true if it did.
func (es *EntrySet[K, V]) Remove(e Entry[K, V]) bool {
	if idx := es.find(e); idx != -1 {
		es.m.removeAt(idx)
		return true
	}
	return false
}

func (es *EntrySet[K, V]) find(e Entry[K, V]) int {
	if idx := es.m.findForLookup(e.Key); idx != -1 && es.m.valEqual(es.m.slots[idx].val, e.Val) {
		return idx
	}
	return -1
}

// Iter returns a new iterator over the entries.
func (es *EntrySet[K, V]) Iter() *EntryIter[K, V] {
	return &EntryIter[K, V]{cursor: newCursor(es.m)}
}

// All returns a sequence of copies of all the entries.
func (es *EntrySet[K, V]) All() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		for k, v := range es.m.All() {
			if !yield(Entry[K, V]{Key: k, Val: v}) {
				return
			}
		}
	}
}

// Slice returns copies of all the entries.
func (es *EntrySet[K, V]) Slice() []Entry[K, V] {
	ret := make([]Entry[K, V], 0, es.m.size)
	for e := range es.All() {
		ret = append(ret, e)
	}
	return ret
}
