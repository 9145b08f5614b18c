package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/oamap/src/cli"
)

func TestDefaultConfigurationIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfiguration().Validate())
}

func TestReadConfigFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	require.NoError(t, os.WriteFile(first, []byte(`
[map]
initialcapacity = 1024
enlargefactor = 0.7

[workload]
workers = 8
keytype = uuid
`), 0644))
	require.NoError(t, os.WriteFile(second, []byte(`
[workload]
workers = 2

[metrics]
prometheusgatewayurl = http://localhost:9091
timeout = 5
`), 0644))
	config, err := ReadConfigFiles([]string{first, filepath.Join(dir, "missing"), second})
	require.NoError(t, err)
	assert.Equal(t, 1024, config.Map.InitialCapacity)
	assert.Equal(t, 0.7, config.Map.EnlargeFactor)
	assert.Equal(t, 0.3, config.Map.ShrinkFactor)
	assert.Equal(t, 2, config.Workload.Workers)
	assert.Equal(t, KeyTypeUUID, config.Workload.KeyType)
	assert.Equal(t, "http://localhost:9091", config.Metrics.PrometheusGatewayURL)
	assert.Equal(t, cli.Duration(5*time.Second), config.Metrics.Timeout)
}

func TestReadConfigFilesSyntaxError(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(filename, []byte("[map\ninitialcapacity = 3\n"), 0644))
	_, err := ReadConfigFiles([]string{filename})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	config := DefaultConfiguration()
	config.Map.InitialCapacity = -1
	config.Map.ShrinkFactor = 0.5
	config.Workload.KeyType = "float"
	config.Workload.Shards = 3
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialcapacity")
	assert.Contains(t, err.Error(), "shrinkfactor")
	assert.Contains(t, err.Error(), `unknown workload.keytype "float"`)
	assert.Contains(t, err.Error(), "workload.shards")
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, ", did you mean string?", suggest("strng", keyTypes))
	assert.Equal(t, ", did you mean uuid?", suggest("uid", keyTypes))
	assert.Equal(t, "", suggest("float", keyTypes))
	config := DefaultConfiguration()
	config.Workload.KeyType = "ints"
	assert.Contains(t, config.Validate().Error(), "did you mean int?")
}
