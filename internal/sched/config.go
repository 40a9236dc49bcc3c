package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	yaml "github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config mirrors config.yml
type Config struct {
	Policy            string          `yaml:"policy" json:"policy"`                           // fifo (by default)
	Quantum           int64           `yaml:"quantum" json:"quantum"`                         // 2 (by default), rr and edf
	BaseQuantum       int64           `yaml:"base_quantum" json:"base_quantum"`               // 2 (by default), rr-dynamic
	ContextSwitchCost float64         `yaml:"context_switch_cost" json:"context_switch_cost"` // 0.1 (by default)
	Heuristic         HeuristicConfig `yaml:"heuristic" json:"heuristic"`
	Log               LogConfig       `yaml:"log" json:"-"`
}

// HeuristicConfig selects the oracle of the heuristic policy. Script wins
// over ScriptFile, which wins over Weights. With none set, the oracle
// prefers the shortest job.
type HeuristicConfig struct {
	Quantum    int64              `yaml:"quantum" json:"quantum"` // 0 = run the chosen task to completion
	Script     string             `yaml:"script" json:"script,omitempty"`
	ScriptFile string             `yaml:"script_file" json:"script_file,omitempty"`
	Weights    map[string]float64 `yaml:"weights" json:"weights,omitempty"`
}

// LogConfig holds the logging flags.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig is used when no config file is found.
func DefaultConfig() Config {
	return Config{
		Policy:            FIFO.String(),
		Quantum:           2,
		BaseQuantum:       2,
		ContextSwitchCost: DefaultContextSwitchCost,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads YAML and overrides defaults; empty path or a missing file means
// defaults only.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from TASKSIM_* variables found through lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TASKSIM_POLICY"); ok && v != "" {
		c.Policy = v
	}
	if v, ok := lookup("TASKSIM_QUANTUM"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TASKSIM_QUANTUM: %w", err)
		}
		c.Quantum = n
	}
	if v, ok := lookup("TASKSIM_BASE_QUANTUM"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TASKSIM_BASE_QUANTUM: %w", err)
		}
		c.BaseQuantum = n
	}
	if v, ok := lookup("TASKSIM_CONTEXT_SWITCH_COST"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TASKSIM_CONTEXT_SWITCH_COST: %w", err)
		}
		c.ContextSwitchCost = f
	}
	if v, ok := lookup("TASKSIM_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	c.clamp()
	return nil
}

// sanity clamps. Quantum values are left alone so NewPolicy can reject them.
func (c *Config) clamp() {
	if c.Policy == "" {
		c.Policy = FIFO.String()
	}
	if c.ContextSwitchCost < 0 {
		c.ContextSwitchCost = DefaultContextSwitchCost
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Options returns the policy options for kind. The oracle is supplied by the
// caller because building it may need a script runtime.
func (c Config) Options(kind Kind, oracle Oracle) Options {
	switch kind {
	case DynamicRoundRobin:
		return Options{BaseQuantum: c.BaseQuantum}
	case Heuristic:
		return Options{Quantum: c.Heuristic.Quantum, Oracle: oracle}
	default:
		return Options{Quantum: c.Quantum}
	}
}
