package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(Options{Service: "site", Level: "loud"})
	assert.ErrorContains(t, err, "not supported")
}

func TestInitRequiresService(t *testing.T) {
	err := Init(Options{Level: "info"})
	assert.Error(t, err)
}

func TestInitWritesRollingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Service: "site", Level: "debug", FilePath: dir, MaxSize: 1, MaxAge: 1}))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("hello")
	log.Error().Msg("boom")

	info, err := os.ReadFile(filepath.Join(dir, "site.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "hello")
	assert.NotContains(t, string(info), "boom")

	errLog, err := os.ReadFile(filepath.Join(dir, "site.error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "boom")
}

func TestPrometheusHookCountsLevels(t *testing.T) {
	hook := NewPrometheusHook("site")
	before := testutil.ToFloat64(counter.WithLabelValues("warn"))

	hook.Run(nil, zerolog.WarnLevel, "")
	hook.Run(nil, zerolog.NoLevel, "")

	assert.Equal(t, before+1, testutil.ToFloat64(counter.WithLabelValues("warn")))
}
