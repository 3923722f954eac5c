// Package parser turns input text into the reduction tree. The engine only
// ever sees the Adapter interface; built-in adapters cover Go source, JSON,
// and flat line-based inputs, and external parsers can be plugged in behind
// the same interface.
package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/treduce/internal/tree"
)

// Options carries the per-run parse configuration.
type Options struct {
	// Filename of the input, for diagnostics only.
	Filename string

	// StartRule selects the grammar entry point for adapters that have one.
	StartRule string

	// Replacements overrides the default minimal replacement per rule or
	// token kind name.
	Replacements map[string]string

	// HiddenTokens builds whitespace/comment tokens into the tree, making
	// unparse reproduce the input byte for byte. When false, the unparser
	// synthesizes single spaces between non-adjacent tokens instead.
	HiddenTokens bool
}

// replacement resolves the minimal replacement for a kind name, falling
// back to the adapter's default.
func (o Options) replacement(name, fallback string) string {
	if r, ok := o.Replacements[name]; ok {
		return r
	}
	return fallback
}

// Adapter parses source bytes into a reduction tree.
type Adapter interface {
	Name() string
	Parse(src []byte, opts Options) (*tree.Node, error)
}

// ByName returns the built-in adapter with the given name.
func ByName(name string) (Adapter, error) {
	switch name {
	case "go":
		return Go{}, nil
	case "json":
		return JSON{}, nil
	case "lines":
		return Lines{}, nil
	default:
		return nil, fmt.Errorf("parser: unknown input format %q (supported: go, json, lines)", name)
	}
}

// LoadReplacements reads a rule/token replacement table from a YAML (or
// JSON) file mapping kind names to their minimal replacement text.
func LoadReplacements(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: reading replacements: %w", err)
	}
	table := make(map[string]string)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parser: decoding replacements %s: %w", path, err)
	}
	return table, nil
}
