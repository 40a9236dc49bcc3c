package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
policy: edf
quantum: 3
context_switch_cost: -2
heuristic:
  quantum: 1
  weights:
    slack: -1
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "edf", cfg.Policy)
	assert.Equal(t, int64(3), cfg.Quantum)
	assert.Equal(t, int64(2), cfg.BaseQuantum, "unset fields keep defaults")
	assert.Equal(t, DefaultContextSwitchCost, cfg.ContextSwitchCost, "negative cost is clamped")
	assert.Equal(t, int64(1), cfg.Heuristic.Quantum)
	assert.Equal(t, map[string]float64{"slack": -1}, cfg.Heuristic.Weights)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("quantum: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TASKSIM_POLICY":              "srtf",
		"TASKSIM_QUANTUM":             "5",
		"TASKSIM_BASE_QUANTUM":        "3",
		"TASKSIM_CONTEXT_SWITCH_COST": "0.25",
		"TASKSIM_LOG_LEVEL":           "warn",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "srtf", cfg.Policy)
	assert.Equal(t, int64(5), cfg.Quantum)
	assert.Equal(t, int64(3), cfg.BaseQuantum)
	assert.Equal(t, 0.25, cfg.ContextSwitchCost)
	assert.Equal(t, "warn", cfg.Log.Level)

	env["TASKSIM_QUANTUM"] = "two"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TASKSIM_DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=rr\n"), 0o644))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "rr", os.Getenv(key))
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quantum, cfg.BaseQuantum, cfg.Heuristic.Quantum = 4, 3, 0
	oracle := OracleFunc(func(Features) float64 { return 1 })

	assert.Equal(t, Options{Quantum: 4}, cfg.Options(RoundRobin, nil))
	assert.Equal(t, Options{BaseQuantum: 3}, cfg.Options(DynamicRoundRobin, nil))

	opts := cfg.Options(Heuristic, oracle)
	assert.Equal(t, int64(0), opts.Quantum)
	assert.NotNil(t, opts.Oracle)
}
