// Package ordmap provides a generic map, similar to the builtin map but which retains insertion order.
//
// It's an oamap.Map whose values are nodes of a doubly linked list. The list is maintained by an
// observer on the underlying map, so entries removed by any route are unlinked.
package ordmap

import (
	"iter"

	"github.com/thought-machine/oamap/src/oamap"
)

// A Map is a generic map which supports ordering for iteration.
// It is not safe for concurrent use.
// The zero value is safe for use.
type Map[K comparable, V any] struct {
	m    *oamap.Map[K, *node[K, V]]
	list *list[K, V]
}

type node[K, V any] struct {
	Key        K
	Val        V
	prev, next *node[K, V]
}

// list is the observer that keeps the nodes linked in insertion order.
type list[K, V any] struct {
	head, tail *node[K, V]
}

func (l *list[K, V]) OnPut(key K, n *node[K, V], replaced bool) {
	if replaced {
		return
	}
	n.prev, n.next = l.tail, nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
}

func (l *list[K, V]) OnRemove(key K, n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *list[K, V]) OnClear() {
	l.head, l.tail = nil, nil
}

// New returns a new Map with the given capacity preallocated.
// If capacity is unknown, the zero value for Map can be used directly.
func New[K comparable, V any](size int) *Map[K, V] {
	m := &Map[K, V]{}
	m.init(size)
	return m
}

func (m *Map[K, V]) init(size int) {
	m.list = &list[K, V]{}
	m.m = oamap.MustNew(max(size, 0), oamap.ComparableHasher[K](), oamap.WithObserver[K, *node[K, V]](m.list))
}

// Len returns the number of keys currently in the map.
func (m *Map[K, V]) Len() int {
	if m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Contains returns true if the map contains an item with key K.
func (m *Map[K, V]) Contains(key K) bool {
	return m.m != nil && m.m.ContainsKey(key)
}

// Get returns the item with key K.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m.m != nil {
		if n, present := m.m.Get(key); present {
			return n.Val, true
		}
	}
	var v V
	return v, false
}

// Put stores a key/value pair, overwriting any existing item.
// Overwriting an item doesn't change its position in the order.
func (m *Map[K, V]) Put(key K, val V) {
	if m.m == nil {
		m.init(0)
	} else if n, present := m.m.Get(key); present {
		n.Val = val
		return
	}
	m.m.Put(key, &node[K, V]{Key: key, Val: val})
}

// Delete deletes the item with the given key from the map.
func (m *Map[K, V]) Delete(key K) {
	if m.m != nil {
		m.m.Remove(key)
	}
}

// Clear removes all items from the map.
func (m *Map[K, V]) Clear() {
	if m.m != nil {
		m.m.Clear()
	}
}

// Union returns a copy of this map combined with the given one.
// All keys in that map come after keys in this map (except where there are duplicates, then keys in that map overwrite).
func (m *Map[K, V]) Union(that *Map[K, V]) *Map[K, V] {
	ret := m.Copy()
	for k, v := range that.All() {
		ret.Put(k, v)
	}
	return ret
}

// Copy creates a shallow copy of this map.
func (m *Map[K, V]) Copy() *Map[K, V] {
	ret := New[K, V](m.Len())
	for k, v := range m.All() {
		ret.Put(k, v)
	}
	return ret
}

// Keys returns all the keys of the map, in order.
func (m *Map[K, V]) Keys() []K {
	ret := make([]K, 0, m.Len())
	for k := range m.All() {
		ret = append(ret, k)
	}
	return ret
}

// All returns an iterator over the items of the map, in order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for it := m.Iter(); !it.Done(); it.Next() {
			if !yield(it.Item()) {
				return
			}
		}
	}
}

// Iter returns an iterator on this map.
// These are typically used like:
//
//	for it := m.Iter(); !it.Done(); it.Next() {
//	    key := it.Key()
//	    val := it.Val()
//	    key, val = it.Item()
//	}
//
// Behaviour is undefined if the map is modified during iteration.
func (m *Map[K, V]) Iter() Iter[K, V] {
	if m.list == nil {
		return Iter[K, V]{}
	}
	return Iter[K, V]{n: m.list.head}
}

// An Iter is an iterator for a map.
type Iter[K comparable, V any] struct {
	n *node[K, V]
}

// Done returns true if this iterator has reached the end of the map.
func (it Iter[K, V]) Done() bool {
	return it.n == nil
}

// Next moves this iterator on to the next item.
func (it *Iter[K, V]) Next() {
	it.n = it.n.next
}

// Key returns the key at the iterator's current position.
// It will panic if the iterator has reached its end.
func (it Iter[K, V]) Key() K {
	return it.n.Key
}

// Val returns the value at the iterator's current position.
// It will panic if the iterator has reached its end.
func (it Iter[K, V]) Val() V {
	return it.n.Val
}

// Item returns the key and value at the iterator's current position.
// It will panic if the iterator has reached its end.
func (it Iter[K, V]) Item() (K, V) {
	return it.n.Key, it.n.Val
}
