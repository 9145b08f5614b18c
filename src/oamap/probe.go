package oamap

// isNull returns true if key is the nil key.
func (m *Map[K, V]) isNull(key K) bool {
	return m.isNil != nil && m.isNil(key)
}

// start returns the first bucket of the probe sequence for a key.
func (m *Map[K, V]) start(key K, null bool, mask int) int {
	if null {
		return int(Mix(nullKeyHash)) & mask
	}
	return int(Mix(m.hash(key))) & mask
}

// matches returns true if the live slot s holds the given key.
func (m *Map[K, V]) matches(s *slot[K, V], key K, null bool) bool {
	if null {
		return s.ctrl == ctrlNull
	}
	return s.ctrl == ctrlFull && m.equal(s.key, key)
}

// findForLookup returns the index of the slot holding key, or -1 if it isn't present.
// Tombstones are skipped; the first empty slot ends the search.
func (m *Map[K, V]) findForLookup(key K) int {
	if m.slots == nil {
		panic(errZeroMap)
	}
	null := m.isNull(key)
	mask := len(m.slots) - 1
	idx := m.start(key, null, mask)
	for probes := 1; ; probes++ {
		s := &m.slots[idx]
		if s.ctrl == ctrlEmpty {
			return -1
		} else if s.ctrl != ctrlDeleted && m.matches(s, key, null) {
			return idx
		}
		idx = (idx + probes) & mask
	}
}

// findForInsertion returns the index of the slot in slots that key should be written to.
// That's the slot already holding the key if there is one; otherwise the first tombstone on
// the probe path, or failing that the empty slot that ended it.
func (m *Map[K, V]) findForInsertion(key K, null bool, slots []slot[K, V]) int {
	mask := len(slots) - 1
	idx := m.start(key, null, mask)
	deleted := -1
	for probes := 1; ; probes++ {
		s := &slots[idx]
		switch s.ctrl {
		case ctrlEmpty:
			if deleted != -1 {
				return deleted
			}
			return idx
		case ctrlDeleted:
			if deleted == -1 {
				deleted = idx
			}
		default:
			if m.matches(s, key, null) {
				return idx
			}
		}
		idx = (idx + probes) & mask
	}
}

// probeLength returns the number of slots a lookup for the live slot at idx visits,
// or -1 if idx isn't on its key's probe sequence at all.
func (m *Map[K, V]) probeLength(idx int) int {
	s := &m.slots[idx]
	mask := len(m.slots) - 1
	i := m.start(s.key, s.ctrl == ctrlNull, mask)
	for n := 1; n <= len(m.slots); n++ {
		if i == idx {
			return n
		}
		i = (i + n) & mask
	}
	return -1
}
