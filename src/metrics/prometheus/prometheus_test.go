package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/oamap/src/core"
	"github.com/thought-machine/oamap/src/metrics"
)

var testCounter = metrics.NewCounter("test", "things", "Number of things")
var testGauge = metrics.NewGauge("test", "level", "Current level")
var testHistogram = metrics.NewHistogram("test", "sizes", "Sizes of things", metrics.ExponentialBuckets(1, 2, 4))

func TestRegisterWith(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterWith(reg, reg)
	testCounter.Inc()
	testCounter.Add(2)
	testGauge.Set(7)
	testHistogram.Observe(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
		for _, m := range fam.Metric {
			require.Len(t, m.Label, 1)
			assert.Equal(t, "version", m.Label[0].GetName())
			assert.Equal(t, core.Version, m.Label[0].GetValue())
		}
		switch fam.GetName() {
		case "oamap_test_things":
			assert.Equal(t, 3.0, fam.Metric[0].Counter.GetValue())
		case "oamap_test_level":
			assert.Equal(t, 7.0, fam.Metric[0].Gauge.GetValue())
		case "oamap_test_sizes":
			assert.Equal(t, uint64(1), fam.Metric[0].Histogram.GetSampleCount())
		}
	}
	assert.True(t, found["oamap_test_things"])
	assert.True(t, found["oamap_test_level"])
	assert.True(t, found["oamap_test_sizes"])
}

func TestPush(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Contains(t, r.URL.Path, "/metrics/job/oamap")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	RegisterWith(reg, reg)
	testCounter.Inc()
	config := core.DefaultConfiguration()
	metrics.Push(config)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "no gateway configured")
	config.Metrics.PrometheusGatewayURL = srv.URL
	metrics.Push(config)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}
