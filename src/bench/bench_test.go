package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/oamap/src/core"
)

func smallConfig(keyType string) *core.Configuration {
	config := core.DefaultConfiguration()
	config.Workload.Workers = 3
	config.Workload.Keys = 2000
	config.Workload.Rounds = 3
	config.Workload.KeyType = keyType
	config.Workload.Shards = 4
	return config
}

func TestRunKeyTypes(t *testing.T) {
	for _, keyType := range []string{core.KeyTypeInt, core.KeyTypeString, core.KeyTypeUUID} {
		t.Run(keyType, func(t *testing.T) {
			result, err := Run(context.Background(), smallConfig(keyType))
			require.NoError(t, err)
			assert.Equal(t, keyType, result.KeyType)
			assert.Len(t, result.Workers, 3)
			for _, w := range result.Workers {
				// Every put counts, plus about half of them are removed again.
				assert.Greater(t, w.Ops, 6000)
				assert.Less(t, w.Ops, 12000)
				assert.Greater(t, w.Stats.Len, 0)
				assert.Less(t, w.Stats.Len, 6000)
			}
			assert.Equal(t, result.Workers[0].Ops+result.Workers[1].Ops+result.Workers[2].Ops, result.Ops)
			assert.Greater(t, result.SharedLen, 0)
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(context.Background(), smallConfig(core.KeyTypeInt))
	require.NoError(t, err)
	b, err := Run(context.Background(), smallConfig(core.KeyTypeInt))
	require.NoError(t, err)
	for i := range a.Workers {
		assert.Equal(t, a.Workers[i].Ops, b.Workers[i].Ops)
		assert.Equal(t, a.Workers[i].Stats.Len, b.Workers[i].Stats.Len)
	}
}

func TestRunNoDeletes(t *testing.T) {
	config := smallConfig(core.KeyTypeString)
	config.Workload.DeleteRatio = 0
	result, err := Run(context.Background(), config)
	require.NoError(t, err)
	for _, w := range result.Workers {
		assert.Equal(t, 6000, w.Ops)
		assert.Equal(t, 6000, w.Stats.Len)
		assert.Equal(t, 0, w.Stats.Tombstones)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smallConfig(core.KeyTypeInt))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunInvalidConfig(t *testing.T) {
	config := smallConfig(core.KeyTypeInt)
	config.Workload.Workers = 0
	_, err := Run(context.Background(), config)
	assert.Error(t, err)
}

func TestResultString(t *testing.T) {
	result, err := Run(context.Background(), smallConfig(core.KeyTypeInt))
	require.NoError(t, err)
	s := result.String()
	assert.Contains(t, s, "operations on int keys")
	assert.Contains(t, s, "worker 2:")
	assert.Contains(t, result.Dump(), "SharedLen")
	assert.Greater(t, result.OpsPerSecond(), 0.0)
}
