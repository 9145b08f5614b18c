package oamap

import (
	"github.com/thought-machine/oamap/src/metrics"
)

var grows = metrics.NewCounter("map", "grows", "Number of times a map's table has been enlarged")
var shrinks = metrics.NewCounter("map", "shrinks", "Number of times a map's table has been shrunk")
var rehashes = metrics.NewCounter("map", "rehashes", "Number of same-size rebuilds to clear out tombstones")
// logRebuildsFrom is the smallest table whose rebuilds are logged.
var logRebuildsFrom = 1 << 20

var rebuildBuckets = metrics.NewHistogram("map", "rebuild_buckets", "Bucket count of tables after a rebuild", metrics.ExponentialBuckets(DefaultCapacity, 4, 10))

// setThresholds recomputes both thresholds for the given bucket count.
func (m *Map[K, V]) setThresholds(buckets int) {
	m.shrinkThreshold = int(m.shrinkFactor * float64(buckets))
	m.enlargeThreshold = int(m.enlargeFactor * float64(buckets))
}

// maybeResize is called before inserting up to delta new entries. It shrinks the table if it's
// very sparse, then grows it (or rebuilds it at the same size to clear tombstones) if the
// insertion would take the number of used buckets past the enlarge factor.
func (m *Map[K, V]) maybeResize(delta int) {
	if m.slots == nil {
		panic(errZeroMap)
	}
	if m.shrinkThreshold > 0 && m.size < m.shrinkThreshold {
		m.maybeShrink()
	}
	buckets := len(m.slots)
	needed := m.minBuckets(m.size+m.numDeletes+delta, 0)
	if needed <= buckets && m.size+delta <= m.enlargeThreshold {
		return
	}
	resizeTo := m.minBuckets(m.size+delta, buckets)
	if resizeTo < needed {
		// Tombstones alone are forcing this rebuild. If the live entries would already be
		// over the shrink factor of double the size, go straight there rather than
		// rebuilding again shortly.
		if target := int(m.shrinkFactor * float64(resizeTo<<1)); m.size+delta >= target {
			resizeTo <<= 1
		}
	}
	m.rebuild(resizeTo)
}

// minBuckets returns the smallest valid bucket count of at least wanted that holds n entries
// below the enlarge factor.
func (m *Map[K, V]) minBuckets(n, wanted int) int {
	size := DefaultCapacity
	for size < wanted || float64(n) >= float64(size)*m.enlargeFactor {
		size <<= 1
	}
	return size
}

// maybeShrink halves the table until the live entries are above the shrink factor.
func (m *Map[K, V]) maybeShrink() {
	buckets := len(m.slots)
	if m.size >= m.shrinkThreshold || buckets <= DefaultCapacity {
		return
	}
	for buckets > DefaultCapacity && float64(m.size) < float64(buckets)*m.shrinkFactor {
		buckets >>= 1
	}
	m.rebuild(buckets)
}

// rebuild rehashes every live entry into a fresh table of the given number of buckets.
func (m *Map[K, V]) rebuild(buckets int) {
	old := len(m.slots)
	slots := make([]slot[K, V], buckets)
	for i := range m.slots {
		if s := &m.slots[i]; s.live() {
			slots[m.findForInsertion(s.key, s.ctrl == ctrlNull, slots)] = *s
		}
	}
	if max(old, buckets) >= logRebuildsFrom {
		log.Debug("Rebuilt map from %d to %d buckets (%d entries, %d tombstones dropped)", old, buckets, m.size, m.numDeletes)
	}
	m.slots = slots
	m.numDeletes = 0
	m.setThresholds(buckets)
	switch {
	case buckets > old:
		grows.Inc()
	case buckets < old:
		shrinks.Inc()
	default:
		rehashes.Inc()
	}
	rebuildBuckets.Observe(float64(buckets))
}
