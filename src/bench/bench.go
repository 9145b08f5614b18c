// Package bench runs configurable insert / delete workloads against oamap.Map and cmap.Map,
// checking them against the builtin map as it goes.
package bench

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/oamap/src/cmap"
	"github.com/thought-machine/oamap/src/core"
	"github.com/thought-machine/oamap/src/metrics"
	"github.com/thought-machine/oamap/src/oamap"
)

var log = logging.MustGetLogger("bench")

var operations = metrics.NewCounter("bench", "operations", "Number of puts and removes performed by workers")
var opsPerSecond = metrics.NewGauge("bench", "ops_per_second", "Throughput of the most recent workload")
var liveEntries = metrics.NewGauge("bench", "live_entries", "Number of entries in the shared map at the end of the most recent workload")

// Run runs the workload described by the given config until it completes or the context is
// cancelled. Every worker owns one map; they also all write through to a single shared
// concurrent map.
func Run(ctx context.Context, config *core.Configuration) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Workload.KeyType {
	case core.KeyTypeInt:
		return run(ctx, config, intKeys())
	case core.KeyTypeUUID:
		return run(ctx, config, uuidKeys())
	default:
		return run(ctx, config, stringKeys())
	}
}

func run[K comparable](ctx context.Context, config *core.Configuration, keys keyGen[K]) (*Result, error) {
	start := time.Now()
	shared := cmap.New[K, int](config.Workload.Shards, keys.shardHash)
	result := &Result{
		KeyType: config.Workload.KeyType,
		Workers: make([]WorkerResult, config.Workload.Workers),
	}
	g, ctx := errgroup.WithContext(ctx)
	for w := range result.Workers {
		g.Go(func() error {
			res, err := runWorker(ctx, w, config, keys, shared)
			result.Workers[w] = res
			return err
		})
	}
	err := g.Wait()
	result.Duration = time.Since(start)
	for _, w := range result.Workers {
		result.Ops += w.Ops
	}
	if verr := shared.Verify(); verr != nil {
		err = multierror.Append(err, fmt.Errorf("shared map: %w", verr))
	}
	result.SharedLen = shared.Len()
	result.RSS = rss()
	operations.Add(result.Ops)
	opsPerSecond.Set(result.OpsPerSecond())
	liveEntries.Set(float64(result.SharedLen))
	log.Info("Completed %d operations in %s", result.Ops, result.Duration)
	return result, err
}

func runWorker[K comparable](ctx context.Context, w int, config *core.Configuration, keys keyGen[K], shared *cmap.Map[K, int]) (WorkerResult, error) {
	result := WorkerResult{Worker: w}
	r := rand.New(rand.NewSource(config.Workload.Seed + int64(w)))
	m, err := oamap.New(config.Map.InitialCapacity, keys.hash, oamap.WithLoadFactors[K, int](config.Map.EnlargeFactor, config.Map.ShrinkFactor))
	if err != nil {
		return result, err
	}
	ref := map[K]int{}
	for round := 0; round < config.Workload.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for i := 0; i < config.Workload.Keys; i++ {
			k := keys.next(r)
			m.Put(k, i)
			ref[k] = i
			shared.Set(k, i)
		}
		result.Ops += config.Workload.Keys
		for it := m.Keys().Iter(); it.HasNext(); {
			k, err := it.Next()
			if err != nil {
				return result, err
			}
			if r.Float64() >= config.Workload.DeleteRatio {
				continue
			} else if err := it.Remove(); err != nil {
				return result, err
			}
			delete(ref, k)
			shared.Delete(k)
			result.Ops++
		}
		if err := check(m, ref); err != nil {
			return result, fmt.Errorf("worker %d, round %d: %w", w, round, err)
		}
		log.Debug("Worker %d completed round %d, %d entries", w, round, m.Len())
	}
	result.Stats = m.Stats()
	return result, nil
}

// check verifies the map's internal state and that it holds exactly the same entries as ref.
func check[K comparable](m *oamap.Map[K, int], ref map[K]int) error {
	var err error
	if verr := m.Verify(); verr != nil {
		err = multierror.Append(err, verr)
	}
	if m.Len() != len(ref) {
		err = multierror.Append(err, fmt.Errorf("map has %d entries, expected %d", m.Len(), len(ref)))
	}
	for k, v := range ref {
		if actual, present := m.Get(k); !present {
			err = multierror.Append(err, fmt.Errorf("missing key %v", k))
		} else if actual != v {
			err = multierror.Append(err, fmt.Errorf("key %v has value %d, expected %d", k, actual, v))
		}
	}
	return err
}
