// Package main implements oamap_bench, a tool for running workloads against our maps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	_ "go.uber.org/automaxprocs"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/oamap/src/bench"
	"github.com/thought-machine/oamap/src/cli"
	"github.com/thought-machine/oamap/src/core"
	"github.com/thought-machine/oamap/src/metrics"
	"github.com/thought-machine/oamap/src/metrics/prometheus"
)

var log = logging.MustGetLogger("oamap_bench")

var opts = struct {
	Usage     string
	Verbosity cli.Verbosity `short:"v" long:"verbosity" default:"notice" description:"Verbosity of output (higher number = more output)"`
	Config    []string      `short:"c" long:"config" default:".oamapconfig" description:"Config files to read, in order. Missing files are skipped."`
	Timeout   cli.Duration  `long:"timeout" default:"10m" description:"Maximum time to run the workload for"`
	Dump      bool          `long:"dump" description:"Dump the full result structure rather than a summary"`

	Workload struct {
		Workers int    `short:"w" long:"workers" description:"Number of concurrent workers. Overrides the config file."`
		Keys    int    `short:"k" long:"keys" description:"Number of keys each worker inserts per round. Overrides the config file."`
		Rounds  int    `short:"r" long:"rounds" description:"Number of rounds each worker runs. Overrides the config file."`
		KeyType string `long:"key_type" choice:"int" choice:"string" choice:"uuid" description:"Type of keys to generate. Overrides the config file."`
	} `group:"Options overriding the workload"`

	Metrics struct {
		Push       bool   `long:"push_metrics" description:"Register Prometheus metrics and push them once the workload completes"`
		GatewayURL string `long:"gateway_url" description:"URL of the Prometheus pushgateway. Overrides the config file."`
	} `group:"Options controlling metrics"`
}{
	Usage: `
oamap_bench runs randomised insert / delete workloads against oamap's open-addressing maps.

Each worker owns a map, which it checks against a builtin map after every round; all workers
also write through to one shared concurrent map. Any inconsistency found is reported as an error.
`,
}

func main() {
	cli.ParseFlagsOrDie("oamap_bench", &opts)
	cli.InitLogging(opts.Verbosity)
	config, err := core.ReadConfigFiles(opts.Config)
	if err != nil {
		log.Fatalf("Error reading config: %s", err)
	}
	applyOverrides(config)
	if opts.Metrics.Push {
		prometheus.Register()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Timeout))
	defer cancel()

	result, err := bench.Run(ctx, config)
	if err != nil {
		log.Fatalf("Workload failed: %s", err)
	}
	if opts.Dump {
		fmt.Print(result.Dump())
	} else {
		fmt.Print(result.String())
	}
	if opts.Metrics.Push {
		metrics.Push(config)
	}
}

func applyOverrides(config *core.Configuration) {
	if opts.Workload.Workers > 0 {
		config.Workload.Workers = opts.Workload.Workers
	}
	if opts.Workload.Keys > 0 {
		config.Workload.Keys = opts.Workload.Keys
	}
	if opts.Workload.Rounds > 0 {
		config.Workload.Rounds = opts.Workload.Rounds
	}
	if opts.Workload.KeyType != "" {
		config.Workload.KeyType = opts.Workload.KeyType
	}
	if opts.Metrics.GatewayURL != "" {
		config.Metrics.PrometheusGatewayURL = opts.Metrics.GatewayURL
	}
}
