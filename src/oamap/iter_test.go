package oamap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterateEmpty(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	it := m.Keys().Iter()
	assert.False(t, it.HasNext())
	_, err := it.Next()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestIterateAll(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	m := MustNew[int, int](0, IntHasher[int])
	ref := map[int]int{}
	for i := 0; i < 5000; i++ {
		k := r.Int()
		m.Put(k, i)
		ref[k] = i
	}
	seen := map[int]int{}
	for it := m.Entries().Iter(); it.HasNext(); {
		e, err := it.Next()
		require.NoError(t, err)
		_, dupe := seen[e.Key]
		require.False(t, dupe, "key %d returned twice", e.Key)
		seen[e.Key] = e.Val
	}
	assert.Equal(t, ref, seen)

	seen = map[int]int{}
	for k, v := range m.All() {
		seen[k] = v
	}
	assert.Equal(t, ref, seen)
}

func TestIteratorExhausted(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	it := m.Values().Iter()
	v, err := it.Next()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, it.HasNext())
	_, err = it.Next()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestIteratorRemove(t *testing.T) {
	m := MustNew[int, int](0, IntHasher[int])
	for i := 0; i < 100; i++ {
		m.Put(i, i)
	}
	for it := m.Keys().Iter(); it.HasNext(); {
		k, err := it.Next()
		require.NoError(t, err)
		if k%2 == 0 {
			require.NoError(t, it.Remove())
		}
	}
	assert.Equal(t, 50, m.Len())
	for i := 0; i < 100; i++ {
		assert.Equal(t, i%2 == 1, m.ContainsKey(i))
	}
	assert.NoError(t, m.Verify())
}

func TestIteratorRemoveAll(t *testing.T) {
	m := MustNew[int, int](0, IntHasher[int])
	for i := 0; i < 100; i++ {
		m.Put(i, i)
	}
	n := 0
	for it := m.Values().Iter(); it.HasNext(); n++ {
		_, err := it.Next()
		require.NoError(t, err)
		require.NoError(t, it.Remove())
	}
	assert.Equal(t, 100, n)
	assert.True(t, m.IsEmpty())
}

func TestIteratorIllegalRemove(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	m.Put("b", 2)
	it := m.Entries().Iter()
	assert.ErrorIs(t, it.Remove(), ErrIllegalState, "remove before next")
	_, err := it.Next()
	require.NoError(t, err)
	assert.NoError(t, it.Remove())
	assert.ErrorIs(t, it.Remove(), ErrIllegalState, "remove twice")
	assert.Equal(t, 1, m.Len())
}

func TestIteratorRemoveAfterMapRemove(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	it := m.Keys().Iter()
	k, err := it.Next()
	require.NoError(t, err)
	m.Remove(k)
	assert.ErrorIs(t, it.Remove(), ErrIllegalState)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, m.Stats().Tombstones)
	assert.NoError(t, m.Verify())
}

func TestEntriesAreDetached(t *testing.T) {
	m := MustNew[string, int](0, StringHasher)
	m.Put("a", 1)
	it := m.Entries().Iter()
	e, err := it.Next()
	require.NoError(t, err)
	e.Val = 2
	v, _ := m.Get("a")
	assert.Equal(t, 1, v)
	// and the other way round
	m.Put("a", 3)
	assert.Equal(t, 2, e.Val)
}

func TestAllStopsEarly(t *testing.T) {
	m := MustNew[int, int](0, IntHasher[int])
	for i := 0; i < 10; i++ {
		m.Put(i, i)
	}
	n := 0
	for range m.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestIterateNilKey(t *testing.T) {
	m := MustNew[*int, string](0, func(p *int) uint32 { return IntHasher(*p) })
	one := 1
	m.Put(nil, "nil")
	m.Put(&one, "one")
	found := map[*int]string{}
	for it := m.Entries().Iter(); it.HasNext(); {
		e, err := it.Next()
		require.NoError(t, err)
		found[e.Key] = e.Val
	}
	assert.Equal(t, map[*int]string{nil: "nil", &one: "one"}, found)
}
