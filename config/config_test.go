// SPDX-License-Identifier: MIT

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mlmtest/config"
	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/sscp"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, sscp.Hierarchical, cfg.Analysis.Scheme)
	assert.Equal(t, pvalue.DefaultMaxSteps, cfg.Analysis.PValue.MaxSteps)
}

func TestParse_YAMLThenEnv(t *testing.T) {
	t.Parallel()

	data := []byte(`
log:
  level: debug
  format: json
server:
  addr: ":9090"
  request_timeout: 5s
analysis:
  scheme: III
  method: hellinger
  transform: log1p
  workers: 2
  pvalue:
    initial_accuracy: 1e-10
    max_steps: 3
`)
	cfg, err := config.Parse(data, map[string]string{
		"MLMTEST_ANALYSIS_SCHEME":          "I",
		"MLMTEST_ANALYSIS_PVALUE_LIMIT":    "1000",
		"MLMTEST_SERVER_MAX_BODY_BYTES":    "1024",
		"MLMTEST_UNRELATED":                "x",
		"MLMTEST_ANALYSIS_TOLERANCE":       "1e-6",
		"MLMTEST_SERVER_WRITE_TIMEOUT":     "1m",
		"MLMTEST_ANALYSIS_PVALUE_MAX_STEP": "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, sscp.Sequential, cfg.Analysis.Scheme)
	assert.Equal(t, distance.Hellinger, cfg.Analysis.Method)
	assert.Equal(t, distance.Log1p, cfg.Analysis.Transform)
	assert.Equal(t, 1e-6, cfg.Analysis.Tolerance)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, 1e-10, cfg.Analysis.PValue.InitialAccuracy)
	assert.Equal(t, 1000, cfg.Analysis.PValue.Limit)
	assert.Equal(t, 3, cfg.Analysis.PValue.MaxSteps)
	assert.Len(t, cfg.Analysis.Options(), 4)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("analysis: [1"), map[string]string{})
	assert.Error(t, err)

	_, err = config.Parse([]byte("analysis:\n  scheme: IV\n"), map[string]string{})
	assert.Error(t, err)

	_, err = config.Parse(nil, map[string]string{"MLMTEST_LOG_FORMAT": "xml"})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Parse(nil, map[string]string{"MLMTEST_ANALYSIS_TOLERANCE": "1.5"})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Parse(nil, map[string]string{"MLMTEST_ANALYSIS_PVALUE_LIMIT": "0"})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Parse(nil, map[string]string{"MLMTEST_ANALYSIS_WORKERS": "many"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*config.Config){
		"level":     func(c *config.Config) { c.Log.Level = "loud" },
		"addr":      func(c *config.Config) { c.Server.Addr = "" },
		"body":      func(c *config.Config) { c.Server.MaxBodyBytes = 0 },
		"scheme":    func(c *config.Config) { c.Analysis.Scheme = 0 },
		"k":         func(c *config.Config) { c.Analysis.K = -1 },
		"accuracy":  func(c *config.Config) { c.Analysis.PValue.InitialAccuracy = 0 },
		"max steps": func(c *config.Config) { c.Analysis.PValue.MaxSteps = -1 },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlmtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  k: 3\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.K)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLog_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := config.Log{Level: "warn", Format: "json"}.Logger(&buf)
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Str("term", "site").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"term":"site"`)

	_, err = config.Log{Level: "nope"}.Logger(&buf)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
