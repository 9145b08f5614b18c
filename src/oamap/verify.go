package oamap

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Stats describes the internal state of a map.
type Stats struct {
	Len              int
	Buckets          int
	Tombstones       int
	ShrinkThreshold  int
	EnlargeThreshold int
	// MaxProbe is the largest number of slots visited to find any present key.
	MaxProbe int
}

// Stats returns a summary of the map's internal state. It takes time proportional to the
// number of buckets.
func (m *Map[K, V]) Stats() Stats {
	stats := Stats{
		Len:              m.size,
		Buckets:          len(m.slots),
		Tombstones:       m.numDeletes,
		ShrinkThreshold:  m.shrinkThreshold,
		EnlargeThreshold: m.enlargeThreshold,
	}
	for i := range m.slots {
		if m.slots[i].live() {
			stats.MaxProbe = max(stats.MaxProbe, m.probeLength(i))
		}
	}
	return stats
}

// Verify checks the internal consistency of the map and returns an error describing every
// problem it finds. It's intended for tests and debugging; it takes time proportional to the
// number of buckets.
func (m *Map[K, V]) Verify() error {
	var err error
	buckets := len(m.slots)
	if buckets < DefaultCapacity || buckets&(buckets-1) != 0 {
		err = multierror.Append(err, fmt.Errorf("bucket count %d is not a power of two >= %d", buckets, DefaultCapacity))
	}
	var live, deleted, empty int
	for i := range m.slots {
		switch m.slots[i].ctrl {
		case ctrlEmpty:
			empty++
		case ctrlDeleted:
			deleted++
		default:
			live++
		}
	}
	// Lookups only terminate if there's at least one empty slot.
	if empty > 0 {
		for i := range m.slots {
			if !m.slots[i].live() {
				continue
			}
			if n := m.probeLength(i); n == -1 {
				err = multierror.Append(err, fmt.Errorf("entry %v at %d is not on its probe sequence", m.keyAt(i), i))
			} else if found := m.findForLookup(m.keyAt(i)); found != i {
				err = multierror.Append(err, fmt.Errorf("entry %v at %d is found at %d", m.keyAt(i), i, found))
			}
		}
	}
	if live != m.size {
		err = multierror.Append(err, fmt.Errorf("size is %d but %d entries are live", m.size, live))
	}
	if deleted != m.numDeletes {
		err = multierror.Append(err, fmt.Errorf("tombstone count is %d but %d slots are deleted", m.numDeletes, deleted))
	}
	if empty == 0 {
		err = multierror.Append(err, fmt.Errorf("no empty slots remain"))
	}
	if m.shrinkThreshold != int(m.shrinkFactor*float64(buckets)) || m.enlargeThreshold != int(m.enlargeFactor*float64(buckets)) {
		err = multierror.Append(err, fmt.Errorf("thresholds %d/%d don't match %d buckets", m.shrinkThreshold, m.enlargeThreshold, buckets))
	}
	return err
}
