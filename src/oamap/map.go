// Package oamap provides an open-addressing hash map.
//
// Entries live in a single flat slice of slots. A key is located by mixing its hash with Mix
// and walking a triangular probe sequence over a power-of-two number of buckets. Deleted
// entries leave a tombstone behind which keeps probe sequences intact until the next rebuild;
// insertions reuse the first tombstone on their probe path.
//
// The table grows and shrinks on insertion according to an enlarge factor (default 0.8) and a
// shrink factor (default 0.3), so a map that has had most of its entries removed gives its
// memory back the next time something is put into it.
//
// A Map is not safe for concurrent use; see package cmap for a sharded, locked wrapper.
// Modifying a map while iterating over it, other than via the iterator's own Remove, is
// undefined behaviour.
package oamap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("oamap")

// DefaultCapacity is the number of buckets a map starts with, and the smallest it ever shrinks to.
const DefaultCapacity = 32

// DefaultEnlargeFactor is the default proportion of buckets (live or tombstoned) above which the table grows.
const DefaultEnlargeFactor = 0.8

// DefaultShrinkFactor is the default proportion of live buckets below which the table shrinks.
const DefaultShrinkFactor = 0.3

// ErrNegativeCapacity is returned when a map is constructed with a capacity less than zero.
var ErrNegativeCapacity = errors.New("capacity < 0")

// errZeroMap is the panic value for operations on a Map that wasn't built by a constructor.
var errZeroMap = errors.New("oamap: Map used without being constructed by New or NewFunc")

// ErrInvalidLoadFactor is returned when load factors are outside (0, 1) or the shrink factor
// isn't comfortably below the enlarge factor.
var ErrInvalidLoadFactor = errors.New("invalid load factor")

// nullKeyHash is the hash used for the nil key; user hashers never see nil.
const nullKeyHash = 0

// Slot control tags.
const (
	ctrlEmpty   uint8 = iota // never used since the last rebuild; terminates a probe
	ctrlDeleted              // tombstone
	ctrlFull                 // live entry
	ctrlNull                 // live entry for the nil key
)

type slot[K, V any] struct {
	ctrl uint8
	key  K
	val  V
}

func (s *slot[K, V]) live() bool {
	return s.ctrl >= ctrlFull
}

// A Hasher returns the raw hash code of a key. It need not be well distributed; the map mixes
// it before use. Keys that are equal must have equal hashes.
type Hasher[K any] func(K) uint32

// An Equaler reports whether two keys are equal.
type Equaler[K any] func(a, b K) bool

// An Observer is notified of changes to a map after they've happened.
// It's the extension point for containers layered on top of a Map (see package ordmap).
type Observer[K, V any] interface {
	// OnPut is called after a key is stored. replaced is true if it overwrote an existing entry.
	OnPut(key K, val V, replaced bool)
	// OnRemove is called after an entry is removed, whether via the map, a view or an iterator.
	OnRemove(key K, val V)
	// OnClear is called after the map is cleared.
	OnClear()
}

// An Option configures a map at construction time.
type Option[K, V any] func(*Map[K, V]) error

// WithLoadFactors sets the enlarge and shrink factors used by the resize policy.
func WithLoadFactors[K, V any](enlarge, shrink float64) Option[K, V] {
	return func(m *Map[K, V]) error {
		if enlarge <= 0 || enlarge >= 1 || shrink < 0 || shrink*2 >= enlarge {
			return fmt.Errorf("%w: enlarge %v, shrink %v", ErrInvalidLoadFactor, enlarge, shrink)
		}
		m.enlargeFactor = enlarge
		m.shrinkFactor = shrink
		return nil
	}
}

// WithObserver registers an observer that is told about every mutation of the map.
func WithObserver[K, V any](observer Observer[K, V]) Option[K, V] {
	return func(m *Map[K, V]) error {
		m.observer = observer
		return nil
	}
}

// WithValueEqual sets the function used to compare values in ContainsValue and the views.
// By default values are compared with == where their type allows it, or reflect.DeepEqual otherwise.
func WithValueEqual[K, V any](equal func(a, b V) bool) Option[K, V] {
	return func(m *Map[K, V]) error {
		m.valEqual = equal
		return nil
	}
}

// A Map is an open-addressing hash map from K to V.
// It must be constructed via New or NewFunc; the zero value has no hasher and panics on use.
type Map[K, V any] struct {
	slots            []slot[K, V]
	size             int
	numDeletes       int
	shrinkThreshold  int
	enlargeThreshold int
	shrinkFactor     float64
	enlargeFactor    float64

	hash     Hasher[K]
	equal    Equaler[K]
	isNil    func(K) bool
	valEqual func(a, b V) bool
	observer Observer[K, V]

	keySet   *KeySet[K, V]
	values   *Values[K, V]
	entrySet *EntrySet[K, V]
}

// New creates a new map for a comparable key type. Keys are compared with ==.
// capacity is the initial number of buckets; it's rounded up to a power of two and is never
// less than DefaultCapacity. It returns ErrNegativeCapacity if capacity is negative.
func New[K comparable, V any](capacity int, hash Hasher[K], opts ...Option[K, V]) (*Map[K, V], error) {
	return NewFunc(capacity, hash, func(a, b K) bool { return a == b }, opts...)
}

// NewFunc creates a new map for any key type, using the given functions to hash and compare keys.
// Neither function is ever called with a nil key.
func NewFunc[K, V any](capacity int, hash Hasher[K], equal Equaler[K], opts ...Option[K, V]) (*Map[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCapacity, capacity)
	}
	m := &Map[K, V]{
		hash:          hash,
		equal:         equal,
		isNil:         nilChecker[K](),
		valEqual:      defaultValueEqual[V](),
		enlargeFactor: DefaultEnlargeFactor,
		shrinkFactor:  DefaultShrinkFactor,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	buckets := DefaultCapacity
	for buckets < capacity {
		buckets <<= 1
	}
	m.slots = make([]slot[K, V], buckets)
	m.setThresholds(buckets)
	return m, nil
}

// MustNew is like New but panics on error. It's intended for package-level variables
// and tests where the arguments are constant.
func MustNew[K comparable, V any](capacity int, hash Hasher[K], opts ...Option[K, V]) *Map[K, V] {
	m, err := New(capacity, hash, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMap creates a new map containing all the entries of a builtin map.
func FromMap[K comparable, V any](src map[K]V, hash Hasher[K], opts ...Option[K, V]) (*Map[K, V], error) {
	m, err := New(0, hash, opts...)
	if err != nil {
		return nil, err
	}
	PutMap(m, src)
	return m, nil
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}

// IsEmpty returns true if the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.size == 0
}

// Get returns the value stored for the given key, and true if it was present.
// A stored zero or nil value is distinguished from an absent key by the second return value.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if idx := m.findForLookup(key); idx != -1 {
		return m.slots[idx].val, true
	}
	var v V
	return v, false
}

// ContainsKey returns true if the map has an entry for the given key.
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.findForLookup(key) != -1
}

// ContainsValue returns true if any entry in the map has the given value.
// It runs in time proportional to the number of buckets.
func (m *Map[K, V]) ContainsValue(val V) bool {
	return m.indexOfValue(val) != -1
}

func (m *Map[K, V]) indexOfValue(val V) int {
	for i := range m.slots {
		if s := &m.slots[i]; s.live() && m.valEqual(s.val, val) {
			return i
		}
	}
	return -1
}

// Put stores a value for the given key, overwriting any existing one.
// It returns the previous value and true if there was one.
func (m *Map[K, V]) Put(key K, val V) (V, bool) {
	m.maybeResize(1)
	return m.put(key, val)
}

func (m *Map[K, V]) put(key K, val V) (old V, replaced bool) {
	null := m.isNull(key)
	idx := m.findForInsertion(key, null, m.slots)
	s := &m.slots[idx]
	if s.live() {
		old, replaced = s.val, true
	} else {
		if s.ctrl == ctrlDeleted {
			m.numDeletes--
		}
		m.size++
		if null {
			var zero K
			s.ctrl, s.key = ctrlNull, zero
		} else {
			s.ctrl, s.key = ctrlFull, key
		}
	}
	s.val = val
	if m.observer != nil {
		m.observer.OnPut(key, val, replaced)
	}
	return old, replaced
}

// PutAll copies every entry of another map into this one, overwriting existing keys.
// The table is resized at most once, up front.
func (m *Map[K, V]) PutAll(other *Map[K, V]) {
	if other == m || other.size == 0 {
		return
	}
	m.maybeResize(other.size)
	for i := range other.slots {
		if s := &other.slots[i]; s.live() {
			m.put(other.keyAt(i), s.val)
		}
	}
}

// PutMap copies every entry of a builtin map into m, overwriting existing keys.
// The table is resized at most once, up front.
func PutMap[K comparable, V any](m *Map[K, V], src map[K]V) {
	if len(src) == 0 {
		return
	}
	m.maybeResize(len(src))
	for k, v := range src {
		m.put(k, v)
	}
}

// Remove deletes the entry for the given key, returning its value and true if it was present.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	idx := m.findForLookup(key)
	if idx == -1 {
		var v V
		return v, false
	}
	return m.removeAt(idx), true
}

// removeAt tombstones the live slot at idx and returns its value.
func (m *Map[K, V]) removeAt(idx int) V {
	s := &m.slots[idx]
	key, val := m.keyAt(idx), s.val
	var zk K
	var zv V
	s.ctrl, s.key, s.val = ctrlDeleted, zk, zv
	m.size--
	m.numDeletes++
	if m.observer != nil {
		m.observer.OnRemove(key, val)
	}
	return val
}

// Clear removes all entries from the map.
// The table keeps its current size; it shrinks on the next Put if appropriate.
func (m *Map[K, V]) Clear() {
	if m.size == 0 && m.numDeletes == 0 {
		return
	}
	clear(m.slots)
	m.size = 0
	m.numDeletes = 0
	if m.observer != nil {
		m.observer.OnClear()
	}
}

// Copy returns a shallow copy of this map. Observers are not copied.
func (m *Map[K, V]) Copy() *Map[K, V] {
	return &Map[K, V]{
		slots:            append([]slot[K, V](nil), m.slots...),
		size:             m.size,
		numDeletes:       m.numDeletes,
		shrinkThreshold:  m.shrinkThreshold,
		enlargeThreshold: m.enlargeThreshold,
		shrinkFactor:     m.shrinkFactor,
		enlargeFactor:    m.enlargeFactor,
		hash:             m.hash,
		equal:            m.equal,
		isNil:            m.isNil,
		valEqual:         m.valEqual,
	}
}

// keyAt returns the key stored in the live slot at idx, restoring the nil key.
func (m *Map[K, V]) keyAt(idx int) K {
	if m.slots[idx].ctrl == ctrlNull {
		var k K
		return k
	}
	return m.slots[idx].key
}

func (m *Map[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for k, v := range m.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v=%v", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

// nilChecker returns a function reporting whether a key is nil, or nil if K can't hold nil.
// Slices are left to the hasher and equaler, which may well consider nil and empty equal.
func nilChecker[K any]() func(K) bool {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Interface:
		return func(k K) bool { return any(k) == nil }
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return func(k K) bool { return reflect.ValueOf(k).IsNil() }
	}
	return nil
}

// defaultValueEqual compares values with == where that can't panic, or reflect.DeepEqual otherwise.
func defaultValueEqual[V any]() func(a, b V) bool {
	if t := reflect.TypeFor[V](); t.Kind() != reflect.Interface && t.Comparable() {
		return func(a, b V) bool { return any(a) == any(b) }
	}
	return func(a, b V) bool { return reflect.DeepEqual(a, b) }
}
