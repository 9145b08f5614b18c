// Package core contains the configuration shared by our tools.
package core

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/please-build/gcfg"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/oamap/src/cli"
)

var log = logging.MustGetLogger("core")

// Version is the version of this repo's tools, reported as a metrics label.
const Version = "1.0.0"

// ConfigFileName is the file name we read configuration from by default.
const ConfigFileName = ".oamapconfig"

// Key types understood by the workload runner.
const (
	KeyTypeInt    = "int"
	KeyTypeString = "string"
	KeyTypeUUID   = "uuid"
)

var keyTypes = []string{KeyTypeInt, KeyTypeString, KeyTypeUUID}

// Configuration is the overall config for our tools.
// It's read from gcfg-style ini files, for example:
//
//	[map]
//	initialcapacity = 1024
//	enlargefactor = 0.75
//
//	[workload]
//	workers = 8
//	keytype = uuid
type Configuration struct {
	Map struct {
		InitialCapacity int     `help:"Initial number of buckets in each map. Rounded up to a power of two."`
		EnlargeFactor   float64 `help:"Proportion of used buckets above which a map's table grows."`
		ShrinkFactor    float64 `help:"Proportion of live buckets below which a map's table shrinks."`
	}
	Workload struct {
		Workers     int     `help:"Number of workers to run concurrently, each with its own map."`
		Keys        int     `help:"Number of keys each worker inserts per round."`
		Rounds      int     `help:"Number of insert / delete rounds each worker runs."`
		DeleteRatio float64 `help:"Proportion of keys deleted at the end of each round."`
		KeyType     string  `help:"Type of keys to generate; one of int, string or uuid."`
		Seed        int64   `help:"Seed for the random number generator. Each worker adds its index to it."`
		Shards      uint64  `help:"Number of shards in the shared concurrent map. Must be a power of two."`
	}
	Metrics struct {
		PrometheusGatewayURL string       `help:"URL of a Prometheus pushgateway to push metrics to. Metrics aren't pushed if unset."`
		Timeout              cli.Duration `help:"Timeout when pushing metrics."`
	}
}

// DefaultConfiguration returns the default configuration.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Map.InitialCapacity = 32
	config.Map.EnlargeFactor = 0.8
	config.Map.ShrinkFactor = 0.3
	config.Workload.Workers = 4
	config.Workload.Keys = 100000
	config.Workload.Rounds = 5
	config.Workload.DeleteRatio = 0.5
	config.Workload.KeyType = KeyTypeString
	config.Workload.Seed = 42
	config.Workload.Shards = 1 << 6
	config.Metrics.Timeout = cli.Duration(2 * time.Second)
	return config
}

// ReadConfigFiles reads all the config files in order, later ones overriding earlier ones.
// Files that don't exist are skipped.
func ReadConfigFiles(filenames []string) (*Configuration, error) {
	config := DefaultConfiguration()
	for _, filename := range filenames {
		if err := readConfigFile(config, filename); err != nil {
			return config, err
		}
	}
	return config, config.Validate()
}

func readConfigFile(config *Configuration, filename string) error {
	log.Debug("Attempting to read config from %s...", filename)
	if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
		return nil // It's not an error to not have the file at all.
	} else if gcfg.FatalOnly(err) != nil {
		return err
	} else if err != nil {
		log.Warning("Error in config file: %s", err)
	}
	log.Debug("Read config from %s", filename)
	return nil
}

// Validate checks the configuration for values that don't make sense, and returns an error
// describing all of them.
func (config *Configuration) Validate() error {
	var err error
	if config.Map.InitialCapacity < 0 {
		err = multierror.Append(err, fmt.Errorf("map.initialcapacity must not be negative, was %d", config.Map.InitialCapacity))
	}
	if config.Map.EnlargeFactor <= 0 || config.Map.EnlargeFactor >= 1 {
		err = multierror.Append(err, fmt.Errorf("map.enlargefactor must be between 0 and 1, was %v", config.Map.EnlargeFactor))
	}
	if config.Map.ShrinkFactor < 0 || config.Map.ShrinkFactor*2 >= config.Map.EnlargeFactor {
		err = multierror.Append(err, fmt.Errorf("map.shrinkfactor must be less than half of map.enlargefactor, was %v", config.Map.ShrinkFactor))
	}
	if config.Workload.Workers < 1 {
		err = multierror.Append(err, fmt.Errorf("workload.workers must be at least 1, was %d", config.Workload.Workers))
	}
	if config.Workload.Keys < 1 || config.Workload.Rounds < 1 {
		err = multierror.Append(err, fmt.Errorf("workload.keys and workload.rounds must be at least 1"))
	}
	if config.Workload.DeleteRatio < 0 || config.Workload.DeleteRatio > 1 {
		err = multierror.Append(err, fmt.Errorf("workload.deleteratio must be between 0 and 1, was %v", config.Workload.DeleteRatio))
	}
	switch config.Workload.KeyType {
	case KeyTypeInt, KeyTypeString, KeyTypeUUID:
	default:
		err = multierror.Append(err, fmt.Errorf("unknown workload.keytype %q%s", config.Workload.KeyType, suggest(config.Workload.KeyType, keyTypes)))
	}
	if shards := config.Workload.Shards; shards == 0 || shards&(shards-1) != 0 {
		err = multierror.Append(err, fmt.Errorf("workload.shards must be a power of two, was %d", shards))
	}
	return err
}

// suggest returns a ", did you mean x?" suffix naming the closest option to the given value, or
// an empty string if none are close.
func suggest(value string, options []string) string {
	best, bestDistance := "", len(value)/2+1
	for _, option := range options {
		if d := levenshtein.DistanceForStrings([]rune(value), []rune(option), levenshtein.DefaultOptions); d < bestDistance {
			best, bestDistance = option, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", did you mean %s?", best)
}
