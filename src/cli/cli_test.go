package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalFlag("3m"))
	assert.Equal(t, Duration(3*time.Minute), d)
	require.NoError(t, d.UnmarshalText([]byte("15")))
	assert.Equal(t, Duration(15*time.Second), d)
	assert.Equal(t, "15s", d.String())
	assert.Error(t, d.UnmarshalFlag("15x"))
	assert.Error(t, d.UnmarshalFlag("fifteen"))
}

func TestParseFlags(t *testing.T) {
	opts := struct {
		Usage   string
		Workers int      `short:"w" long:"workers" default:"2"`
		Timeout Duration `long:"timeout" default:"5"`
	}{}
	_, extra, err := ParseFlags("test", &opts, []string{"test", "-w", "7", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, extra)
	assert.Equal(t, 7, opts.Workers)
	assert.Equal(t, Duration(5*time.Second), opts.Timeout)

	_, _, err = ParseFlags("test", &opts, []string{"test", "--nope"})
	assert.Error(t, err)
}

func TestGetUsage(t *testing.T) {
	assert.Equal(t, "hello", getUsage(&struct{ Usage string }{Usage: "hello"}))
	assert.Equal(t, "", getUsage(&struct{ Usage int }{}))
	assert.Equal(t, "", getUsage(42))
}
