package oamap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewsAreCached(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	assert.Same(t, m.Keys(), m.Keys())
	assert.Same(t, m.Values(), m.Values())
	assert.Same(t, m.Entries(), m.Entries())
}

func TestViewsReflectChanges(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	keys := m.Keys()
	values := m.Values()
	entries := m.Entries()
	assert.True(t, keys.IsEmpty())
	m.Put("a", 1)
	m.Put("b", 2)
	assert.Equal(t, 2, keys.Len())
	assert.Equal(t, 2, values.Len())
	assert.Equal(t, 2, entries.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, keys.Slice())
	assert.ElementsMatch(t, []int{1, 2}, values.Slice())
	assert.ElementsMatch(t, []Entry[string, int]{{"a", 1}, {"b", 2}}, entries.Slice())
	m.Remove("a")
	assert.False(t, keys.Contains("a"))
	assert.False(t, values.Contains(1))
	assert.False(t, entries.Contains(Entry[string, int]{"a", 1}))
}

func TestKeySetRemove(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	assert.True(t, m.Keys().Remove("a"))
	assert.False(t, m.Keys().Remove("a"))
	assert.True(t, m.IsEmpty())
}

func TestValuesRemoveRemovesOne(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	m.Put("b", 1)
	m.Put("c", 2)
	assert.True(t, m.Values().Remove(1))
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.ContainsValue(1))
	assert.True(t, m.Values().Remove(1))
	assert.False(t, m.Values().Remove(1))
	assert.Equal(t, []int{2}, m.Values().Slice())
}

func TestEntrySetMatchesValue(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	es := m.Entries()
	assert.True(t, es.Contains(Entry[string, int]{Key: "a", Val: 1}))
	assert.False(t, es.Contains(Entry[string, int]{Key: "a", Val: 2}))
	assert.False(t, es.Contains(Entry[string, int]{Key: "b", Val: 1}))
	assert.False(t, es.Remove(Entry[string, int]{Key: "a", Val: 2}))
	assert.Equal(t, 1, m.Len())
	assert.True(t, es.Remove(Entry[string, int]{Key: "a", Val: 1}))
	assert.Equal(t, 0, m.Len())
}

func TestViewClear(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	m.Values().Clear()
	assert.True(t, m.IsEmpty())
	m.Put("b", 1)
	m.Entries().Clear()
	assert.True(t, m.Keys().IsEmpty())
	m.Put("c", 1)
	m.Keys().Clear()
	assert.True(t, m.Entries().IsEmpty())
}

func TestViewSequences(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	m.Put("b", 2)
	var keys []string
	for k := range m.Keys().All() {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
	sum := 0
	for v := range m.Values().All() {
		sum += v
	}
	assert.Equal(t, 3, sum)
	n := 0
	for e := range m.Entries().All() {
		v, _ := m.Get(e.Key)
		assert.Equal(t, v, e.Val)
		n++
	}
	assert.Equal(t, 2, n)
}
