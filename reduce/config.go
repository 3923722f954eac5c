// Package reduce wires the reduction pipeline together: configuration,
// parsing, transforms, the search engine, and output bookkeeping.
package reduce

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/treduce/internal/hdd"
)

// Config is the structured configuration surface of a reduction run. It is
// usually loaded from a YAML file and overridden by CLI flags.
type Config struct {
	// Test is the argv of the interestingness test command. The candidate
	// file path is appended as the last argument; exit status 0 marks the
	// candidate interesting.
	Test []string `yaml:"test"`

	// Variant selects the algorithm: "hdd" (default) or "hddr".
	Variant string `yaml:"variant"`

	// Star enables fixpoint iteration per phase. Default true.
	Star *bool `yaml:"star"`

	// Granularity is the initial number of ddmin chunks; values below 2
	// are clamped to 2.
	Granularity int `yaml:"granularity"`

	// Workers bounds concurrent candidate tests within one round.
	Workers int `yaml:"workers"`

	// Format selects the input adapter: "go", "json" or "lines".
	Format string `yaml:"format"`

	// Encoding is the IANA charset name of the input (and output). Default
	// utf-8.
	Encoding string `yaml:"encoding"`

	// BuildHiddenTokens keeps whitespace/comment tokens in the tree so
	// unparsing reproduces the input byte for byte.
	BuildHiddenTokens bool `yaml:"build-hidden-tokens"`

	// Replacements is the path of a YAML table overriding minimal
	// replacements per rule/token kind.
	Replacements string `yaml:"replacements"`

	Transforms TransformConfig `yaml:"transforms"`

	// Phases lists the reduction phases in order. Empty means a single
	// full prune phase.
	Phases []PhaseConfig `yaml:"phases"`

	// Timeout bounds one test command invocation; candidates exceeding it
	// count as not interesting. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`

	// KeepArtifacts retains the materialized candidate files after the run.
	KeepArtifacts bool `yaml:"keep-artifacts"`

	// CacheFile persists verdicts across runs of a deterministic test.
	CacheFile string `yaml:"cache-file"`
}

// TransformConfig toggles the tree preparation passes.
type TransformConfig struct {
	// Squeeze collapses singleton rule chains. Default true.
	Squeeze *bool `yaml:"squeeze"`
	// FlattenRecursion rewrites left/right-recursive chains flat.
	FlattenRecursion bool `yaml:"flatten-recursion"`
	// SkipUnremovable hides nodes whose pruning cannot change the output.
	// Default true.
	SkipUnremovable *bool `yaml:"skip-unremovable"`
	// SkipWhitespace hides whitespace-only tokens from the search.
	SkipWhitespace bool `yaml:"skip-whitespace"`
}

// PhaseConfig is one phase of the search.
type PhaseConfig struct {
	Name string `yaml:"name"`
	// Operators names the reduction operators of the phase: "prune",
	// "hoist", or both.
	Operators []string `yaml:"operators"`
	// Coarse restricts the phase to nodes with an empty replacement,
	// trading completeness for early cheap wins.
	Coarse bool `yaml:"coarse"`
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("reduce: opening config: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("reduce: parsing config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Variant == "" {
		c.Variant = "hdd"
	}
	if c.Format == "" {
		c.Format = "lines"
	}
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.Granularity < 2 {
		c.Granularity = 2
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
}

// PhasePreset expands the named algorithm preset into a phase list. The
// presets mirror the classic HDD variants: "full" prunes everywhere,
// "coarse" only where subtrees vanish without filler, "coarse-full" runs
// both in sequence, and "hoist" appends a hoisting phase after a full
// prune.
func PhasePreset(name string) ([]PhaseConfig, error) {
	switch name {
	case "", "full":
		return []PhaseConfig{{Name: "prune", Operators: []string{"prune"}}}, nil
	case "coarse":
		return []PhaseConfig{{Name: "coarse-prune", Operators: []string{"prune"}, Coarse: true}}, nil
	case "coarse-full":
		return []PhaseConfig{
			{Name: "coarse-prune", Operators: []string{"prune"}, Coarse: true},
			{Name: "prune", Operators: []string{"prune"}},
		}, nil
	case "hoist":
		return []PhaseConfig{
			{Name: "prune", Operators: []string{"prune"}},
			{Name: "prune-hoist", Operators: []string{"prune", "hoist"}},
		}, nil
	default:
		return nil, fmt.Errorf("reduce: unknown phase preset %q", name)
	}
}

// engineOptions translates the configuration into engine options,
// validating the phase list once.
func (c Config) engineOptions() (hdd.Options, error) {
	opts := hdd.Options{
		Star:           true,
		Granularity:    c.Granularity,
		Workers:        c.Workers,
		WithWhitespace: !c.BuildHiddenTokens,
	}
	if c.Star != nil {
		opts.Star = *c.Star
	}
	switch c.Variant {
	case "hdd":
		opts.Variant = hdd.HDD
	case "hddr":
		opts.Variant = hdd.HDDR
	default:
		return opts, fmt.Errorf("reduce: unknown variant %q", c.Variant)
	}

	phases := c.Phases
	if len(phases) == 0 {
		phases, _ = PhasePreset("full")
	}
	for _, pc := range phases {
		ph := hdd.Phase{Name: pc.Name}
		for _, op := range pc.Operators {
			switch op {
			case "prune":
				ph.Prune = true
			case "hoist":
				ph.Hoist = true
			default:
				return opts, fmt.Errorf("reduce: unknown operator %q in phase %q", op, pc.Name)
			}
		}
		if pc.Coarse {
			ph.Filter = hdd.Coarse
		}
		opts.Phases = append(opts.Phases, ph)
	}
	return opts, nil
}

// squeeze reports the effective squeeze flag.
func (t TransformConfig) squeeze() bool {
	return t.Squeeze == nil || *t.Squeeze
}

// skipUnremovable reports the effective skip-unremovable flag.
func (t TransformConfig) skipUnremovable() bool {
	return t.SkipUnremovable == nil || *t.SkipUnremovable
}
