package oamap

import (
	"errors"
	"iter"
)

// ErrExhausted is returned when an iterator is advanced past its last element.
var ErrExhausted = errors.New("no more elements")

// ErrIllegalState is returned by an iterator's Remove when there's no current element,
// i.e. before the first call to Next or immediately after a previous Remove.
var ErrIllegalState = errors.New("no current element to remove")

// An Entry is a detached copy of a key/value pair. Changing it has no effect on the map.
type Entry[K, V any] struct {
	Key K
	Val V
}

// A cursor walks the slots of a map, stopping on live ones.
type cursor[K, V any] struct {
	m       *Map[K, V]
	next    int
	current int
}

func newCursor[K, V any](m *Map[K, V]) cursor[K, V] {
	c := cursor[K, V]{m: m, current: -1}
	c.skip()
	return c
}

// skip moves next forward to the next live slot (or the end of the table).
func (c *cursor[K, V]) skip() {
	for c.next < len(c.m.slots) && !c.m.slots[c.next].live() {
		c.next++
	}
}

// HasNext returns true if there are more elements to iterate.
func (c *cursor[K, V]) HasNext() bool {
	return c.next < len(c.m.slots)
}

func (c *cursor[K, V]) advance() (int, error) {
	if !c.HasNext() {
		return -1, ErrExhausted
	}
	c.current = c.next
	c.next++
	c.skip()
	return c.current, nil
}

// Remove deletes the element most recently returned by Next from the map.
// It returns ErrIllegalState if that element has already been removed some other way.
func (c *cursor[K, V]) Remove() error {
	if c.current == -1 || c.current >= len(c.m.slots) || !c.m.slots[c.current].live() {
		return ErrIllegalState
	}
	c.m.removeAt(c.current)
	c.current = -1
	return nil
}

// A KeyIter iterates the keys of a map.
//
// It's typically used like:
//
//	for it := m.Keys().Iter(); it.HasNext(); {
//	    key, _ := it.Next()
//	    if shouldGo(key) {
//	        it.Remove()
//	    }
//	}
type KeyIter[K, V any] struct {
	cursor[K, V]
}

// Next returns the next key.
func (it *KeyIter[K, V]) Next() (K, error) {
	idx, err := it.advance()
	if err != nil {
		var k K
		return k, err
	}
	return it.m.keyAt(idx), nil
}

// A ValueIter iterates the values of a map.
type ValueIter[K, V any] struct {
	cursor[K, V]
}

// Next returns the next value.
func (it *ValueIter[K, V]) Next() (V, error) {
	idx, err := it.advance()
	if err != nil {
		var v V
		return v, err
	}
	return it.m.slots[idx].val, nil
}

// An EntryIter iterates the entries of a map.
type EntryIter[K, V any] struct {
	cursor[K, V]
}

// Next returns a copy of the next entry.
func (it *EntryIter[K, V]) Next() (Entry[K, V], error) {
	idx, err := it.advance()
	if err != nil {
		return Entry[K, V]{}, err
	}
	return Entry[K, V]{Key: it.m.keyAt(idx), Val: it.m.slots[idx].val}, nil
}

// All returns an iterator over all key/value pairs of the map, in no particular order.
// The map must not be modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.slots {
			if m.slots[i].live() && !yield(m.keyAt(i), m.slots[i].val) {
				return
			}
		}
	}
}
