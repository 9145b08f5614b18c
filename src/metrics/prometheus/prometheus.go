// Package prometheus provides an implementation of metrics using Prometheus as a backend.
package prometheus

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/oamap/src/core"
	"github.com/thought-machine/oamap/src/metrics"
)

var log = logging.MustGetLogger("prometheus")

// Namespace is the Prometheus namespace all our metrics are registered under.
const Namespace = "oamap"

// Register registers this implementation as the active one, using the default registry.
func Register() {
	RegisterWith(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// RegisterWith registers this implementation as the active one, using the given registry.
func RegisterWith(registerer prometheus.Registerer, gatherer prometheus.Gatherer) {
	metrics.SetImplementation(&prom{
		registerer: prometheus.WrapRegistererWith(prometheus.Labels{
			"version": core.Version,
		}, registerer),
		gatherer: gatherer,
	})
}

// prom is the concrete implementation of metrics using Prometheus
type prom struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// Push performs a single push of all registered metrics to the pushgateway (if configured).
func (p *prom) Push(config *core.Configuration) {
	if family, err := p.gatherer.Gather(); err == nil {
		for _, fam := range family {
			for _, metric := range fam.Metric {
				if metric.Counter != nil {
					log.Debug("Metric recorded: %s: %0.0f", *fam.Name, *metric.Counter.Value)
				} else if metric.Gauge != nil {
					log.Debug("Metric recorded: %s: %0.2f", *fam.Name, *metric.Gauge.Value)
				}
			}
		}
	}
	if config.Metrics.PrometheusGatewayURL == "" {
		return
	}
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = time.Duration(config.Metrics.Timeout)
	client.RetryMax = 2
	client.Logger = nil
	if err := push.New(config.Metrics.PrometheusGatewayURL, "oamap").
		Client(client.StandardClient()).
		Gatherer(p.gatherer).Format(expfmt.NewFormat(expfmt.TypeTextPlain)).
		Push(); err != nil {
		log.Warning("Error pushing Prometheus metrics: %s", err)
	}
}

// RegisterCounter registers a new counter with Prometheus
func (p *prom) RegisterCounter(counter *metrics.Counter) metrics.Incrementer {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: counter.Subsystem,
		Name:      counter.Name,
		Help:      counter.Help,
	})
	p.registerer.MustRegister(c)
	return c
}

// RegisterGauge registers a new gauge with Prometheus
func (p *prom) RegisterGauge(gauge *metrics.Gauge) metrics.Setter {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: gauge.Subsystem,
		Name:      gauge.Name,
		Help:      gauge.Help,
	})
	p.registerer.MustRegister(g)
	return g
}

// RegisterHistogram registers a new histogram with Prometheus
func (p *prom) RegisterHistogram(hist *metrics.Histogram) metrics.Observer {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: hist.Subsystem,
		Name:      hist.Name,
		Help:      hist.Help,
		Buckets:   hist.Buckets,
	})
	p.registerer.MustRegister(h)
	return h
}
