package hdd

import (
	"errors"
	"fmt"

	"github.com/gnolang/treduce/internal/tree"
)

// Variant selects the outer search strategy.
type Variant int8

const (
	// HDD runs each configured phase once (to its own fixpoint when star
	// mode is on) and stops.
	HDD Variant = iota
	// HDDR keeps re-running the whole phase list from the root until a full
	// pass over all phases commits nothing, recovering opportunities that
	// earlier coarse commits hid at ancestor levels.
	HDDR
)

func (v Variant) String() string {
	if v == HDDR {
		return "hddr"
	}
	return "hdd"
}

// Filter restricts which nodes participate in a phase. A nil Filter admits
// every node.
type Filter func(*tree.Node) bool

// Coarse admits only nodes whose declared replacement is the empty string,
// the core of the coarse HDD variant: whole subtrees can be dropped without
// leaving filler text behind, trading completeness for early cheap wins.
func Coarse(n *tree.Node) bool { return n.Replacement == "" }

// Phase is one stage of the reduction: an operator set plus an optional
// node filter.
type Phase struct {
	Name   string
	Prune  bool
	Hoist  bool
	Filter Filter
}

func (p Phase) validate() error {
	if !p.Prune && !p.Hoist {
		return fmt.Errorf("phase %q enables no operator", p.Name)
	}
	return nil
}

// Options configures an Engine. The zero value is not usable; call
// (*Options).applyDefaults via New.
type Options struct {
	Variant Variant

	// Phases run in order; each runs to its own fixpoint (when Star is on)
	// before the next one starts on its output tree.
	Phases []Phase

	// Star enables the fixpoint iteration: a full traversal of the tree
	// repeats from the root as long as it commits at least one change.
	Star bool

	// Granularity is the initial number of chunks per ddmin round. Values
	// below 2 are clamped up to 2.
	Granularity int

	// WithWhitespace makes the unparser synthesize separating spaces
	// between non-adjacent tokens; it must be true unless hidden tokens
	// were built into the tree.
	WithWhitespace bool

	// Workers bounds how many candidates of one partition/complement round
	// are tested concurrently. 1 tests strictly in order.
	Workers int
}

func (o *Options) applyDefaults() error {
	if len(o.Phases) == 0 {
		o.Phases = []Phase{{Name: "prune", Prune: true}}
	}
	for i := range o.Phases {
		if o.Phases[i].Name == "" {
			o.Phases[i].Name = fmt.Sprintf("phase_%d", i)
		}
		if err := o.Phases[i].validate(); err != nil {
			return err
		}
	}
	if o.Granularity < 2 {
		o.Granularity = 2
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return nil
}

// Stats summarizes one reduction run.
type Stats struct {
	// Tests is the number of oracle invocations, cache hits excluded.
	Tests int
	// CacheHits is the number of candidates answered from the cache.
	CacheHits int
	// Skipped is the number of candidates never tested because their text
	// was identical to the current tree.
	Skipped int
	// Commits is the number of confirmed-interesting candidates applied to
	// the tree.
	Commits int
	// Passes is the number of full phase-list passes (always 1 for HDD).
	Passes int
}

// ErrTesterFailure wraps a tester execution error; it aborts the whole
// reduction and is never interpreted as a verdict.
var ErrTesterFailure = errors.New("hdd: tester execution failed")

// ErrInternal marks an invariant violation inside the engine, reported
// distinctly from any reduction verdict.
var ErrInternal = errors.New("hdd: internal invariant violation")
