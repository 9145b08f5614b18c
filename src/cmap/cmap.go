// Package cmap contains a thread-safe concurrent awaitable map.
// It is optimised for large maps (e.g. tens of thousands of entries) in highly
// contended environments; for smaller maps a single oamap.Map behind a mutex may do better.
//
// Each shard is an open-addressing oamap.Map guarded by its own mutex. The low bits of a
// key's hash select the shard and the high bits are handed to the shard's map, so the two
// don't correlate. It is also specifically useful in cases where a caller wants to be able
// to await items entering the map (and not having to poll it to find out when another
// goroutine may insert them).
package cmap

import (
	"fmt"
	"sync"

	"github.com/thought-machine/oamap/src/metrics"
	"github.com/thought-machine/oamap/src/oamap"
)

// DefaultShardCount is a reasonable default shard count for large maps.
const DefaultShardCount = 1 << 8

// SmallShardCount is a shard count useful for relatively small maps.
const SmallShardCount = 4

var hits = metrics.NewCounter("cmap", "get_hits", "Number of gets that found an existing value")
var waits = metrics.NewCounter("cmap", "get_waits", "Number of gets that found someone else already waiting for the key")
var misses = metrics.NewCounter("cmap", "get_misses", "Number of gets that were the first to wait for the key")

// A Map is the top-level map type. All functions on it are threadsafe.
// It should be constructed via New() rather than creating an instance directly.
type Map[K comparable, V any] struct {
	shards []shard[K, V]
	mask   uint64
	hasher func(K) uint64
}

// New creates a new Map using the given hasher to hash items in it.
// The shard count must be a power of 2; it will panic if not.
// Higher shard counts will improve concurrency but consume more memory.
// The DefaultShardCount of 256 is reasonable for a large map.
func New[K comparable, V any](shardCount uint64, hasher func(K) uint64) *Map[K, V] {
	mask := shardCount - 1
	if shardCount == 0 || (shardCount&mask) != 0 {
		panic(fmt.Sprintf("Shard count %d is not a power of 2", shardCount))
	}
	inner := func(k K) uint32 { return uint32(hasher(k) >> 32) }
	m := &Map[K, V]{
		shards: make([]shard[K, V], shardCount),
		mask:   mask,
		hasher: hasher,
	}
	for i := range m.shards {
		m.shards[i].m = oamap.MustNew[K, awaitableValue[V]](0, inner)
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K, V] {
	return &m.shards[m.hasher(key)&m.mask]
}

// Add adds the new item to the map.
// It returns true if the item was inserted, false if it already existed (in which case it won't be inserted)
func (m *Map[K, V]) Add(key K, val V) bool {
	_, inserted := m.shard(key).Set(key, val, false)
	return inserted
}

// AddOrGet either adds a new item (if the key doesn't exist) or gets the existing one.
// It returns true if the item was inserted, false if it already existed (in which case it won't be inserted)
func (m *Map[K, V]) AddOrGet(key K, val V) (V, bool) {
	return m.shard(key).Set(key, val, false)
}

// Set is the equivalent of `map[key] = val`.
// It always overwrites any key that existed before.
func (m *Map[K, V]) Set(key K, val V) {
	m.shard(key).Set(key, val, true)
}

// Get returns the value corresponding to the given key, and true if it exists.
// Unlike GetOrWait it never registers an interest in the key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.shard(key).Lookup(key)
}

// GetOrWait returns the value or, if the key isn't present, a channel that it can be waited
// on for. The caller will need to call Get again after the channel closes.
// If the channel is non-nil, then val will have its zero value.
// The third return value is true if this is the first call that is awaiting this key.
// It's always false if the key exists.
func (m *Map[K, V]) GetOrWait(key K) (val V, wait <-chan struct{}, first bool) {
	return m.shard(key).Get(key)
}

// Delete removes the given key from the map, returning its value and true if it was present.
// Keys that are only being waited for are left alone.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	return m.shard(key).Delete(key)
}

// Len returns the number of values in the map.
// No particular consistency guarantees are made.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		n += m.shards[i].Len()
	}
	return n
}

// Values returns a slice of all the current values in the map.
// No particular consistency guarantees are made.
func (m *Map[K, V]) Values() []V {
	ret := []V{}
	for i := 0; i < len(m.shards); i++ {
		ret = m.shards[i].AppendValues(ret)
	}
	return ret
}

// Verify checks the internal consistency of every shard.
func (m *Map[K, V]) Verify() error {
	for i := range m.shards {
		if err := m.shards[i].Verify(); err != nil {
			return fmt.Errorf("shard %d: %w", i, err)
		}
	}
	return nil
}

// An awaitableValue represents a value in the map & an awaitable channel for it to exist.
type awaitableValue[V any] struct {
	Val  V
	Wait chan struct{}
}

// A shard is one of the individual shards of a map.
type shard[K comparable, V any] struct {
	l       sync.Mutex
	m       *oamap.Map[K, awaitableValue[V]]
	waiting int
}

// Set is the equivalent of `map[key] = val`.
// It returns the value now in the map, and true if the item was inserted, false if it was not
// (because an existing one was found and overwrite was false).
// Anyone waiting on the key is woken up.
func (s *shard[K, V]) Set(key K, val V, overwrite bool) (V, bool) {
	s.l.Lock()
	defer s.l.Unlock()
	if existing, present := s.m.Get(key); present {
		if existing.Wait == nil && !overwrite {
			return existing.Val, false
		} else if existing.Wait != nil {
			close(existing.Wait)
			s.waiting--
		}
	}
	s.m.Put(key, awaitableValue[V]{Val: val})
	return val, true
}

// Get returns the value for a key or, if not present, a channel that it can be waited
// on for.
// Exactly one of the target or channel will be returned.
// The third value is true if it is the first call that is waiting on this value.
func (s *shard[K, V]) Get(key K) (val V, wait <-chan struct{}, first bool) {
	s.l.Lock()
	defer s.l.Unlock()
	if v, present := s.m.Get(key); present {
		if v.Wait == nil {
			hits.Inc()
			return v.Val, nil, false
		}
		waits.Inc()
		return val, v.Wait, false
	}
	misses.Inc()
	ch := make(chan struct{})
	s.m.Put(key, awaitableValue[V]{Wait: ch})
	s.waiting++
	return val, ch, true
}

// Lookup returns the value for a key if it's present.
func (s *shard[K, V]) Lookup(key K) (V, bool) {
	s.l.Lock()
	defer s.l.Unlock()
	if v, present := s.m.Get(key); present && v.Wait == nil {
		return v.Val, true
	}
	var v V
	return v, false
}

// Signal closes the channel of anyone waiting on the key, storing a zero value for it.
// If nobody is waiting, the key is not inserted.
func (s *shard[K, V]) Signal(key K) {
	s.l.Lock()
	defer s.l.Unlock()
	if v, present := s.m.Get(key); present && v.Wait != nil {
		close(v.Wait)
		s.waiting--
		s.m.Put(key, awaitableValue[V]{})
	}
}

// Delete removes a present value.
func (s *shard[K, V]) Delete(key K) (V, bool) {
	s.l.Lock()
	defer s.l.Unlock()
	if v, present := s.m.Get(key); present && v.Wait == nil {
		s.m.Remove(key)
		return v.Val, true
	}
	var v V
	return v, false
}

// Len returns the number of values (not waiters) in this shard.
func (s *shard[K, V]) Len() int {
	s.l.Lock()
	defer s.l.Unlock()
	return s.m.Len() - s.waiting
}

// AppendValues appends a copy of all the values currently in the shard.
func (s *shard[K, V]) AppendValues(ret []V) []V {
	s.l.Lock()
	defer s.l.Unlock()
	for v := range s.m.Values().All() {
		if v.Wait == nil {
			ret = append(ret, v.Val)
		}
	}
	return ret
}

func (s *shard[K, V]) Verify() error {
	s.l.Lock()
	defer s.l.Unlock()
	waiting := 0
	for v := range s.m.Values().All() {
		if v.Wait != nil {
			waiting++
		}
	}
	if waiting != s.waiting {
		return fmt.Errorf("%d keys are awaited but %d are recorded", waiting, s.waiting)
	}
	return s.m.Verify()
}
