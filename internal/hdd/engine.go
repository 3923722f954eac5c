package hdd

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/cache"
	"github.com/gnolang/treduce/internal/tester"
	"github.com/gnolang/treduce/internal/tree"
)

// Engine drives the reduction. Tester and cache are injected once at
// construction; the engine owns no process-execution machinery of its own.
type Engine struct {
	tester tester.Tester
	cache  cache.Cache
	logger *zap.Logger
	opts   Options
}

// New validates opts and returns a ready engine. cache may be nil, in which
// case every candidate is re-tested. logger may be nil.
func New(t tester.Tester, c cache.Cache, logger *zap.Logger, opts Options) (*Engine, error) {
	if t == nil {
		return nil, fmt.Errorf("hdd: nil tester")
	}
	if err := opts.applyDefaults(); err != nil {
		return nil, fmt.Errorf("hdd: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{tester: t, cache: c, logger: logger, opts: opts}, nil
}

// Reduce shrinks the tree in place and returns the final unparsed text.
// Every committed step was confirmed interesting by the tester, so an
// interrupted run always leaves the last committed tree in a valid state.
func (e *Engine) Reduce(ctx context.Context, root *tree.Node) (string, Stats, error) {
	rs := &run{
		engine: e,
		root:   root,
		text:   tree.Unparse(root, e.opts.WithWhitespace),
	}

	switch e.opts.Variant {
	case HDDR:
		for pass := 0; ; pass++ {
			rs.stats.Passes++
			committed, err := rs.runPhases(ctx, fmt.Sprintf("pass_%d", pass))
			if err != nil {
				return "", rs.snapshot(), err
			}
			if !committed {
				break
			}
		}
	default:
		rs.stats.Passes++
		if _, err := rs.runPhases(ctx, "pass_0"); err != nil {
			return "", rs.snapshot(), err
		}
	}

	return rs.text, rs.snapshot(), nil
}

// snapshot folds the atomic counters into the sequential stats.
func (rs *run) snapshot() Stats {
	st := rs.stats
	st.Tests = int(rs.tests.Load())
	st.CacheHits = int(rs.cacheHits.Load())
	return st
}

// run holds the mutable state of one Reduce invocation. The search is a
// sequential state machine; only candidate testing within one round may
// fan out to the tester concurrently.
type run struct {
	engine *Engine
	root   *tree.Node
	text   string
	stats  Stats
	seq    int

	// Tester and cache counters are bumped from round workers and so need
	// to be atomic; everything else in the run is engine-owned sequential
	// state.
	tests     atomic.Int64
	cacheHits atomic.Int64
}

func (rs *run) runPhases(ctx context.Context, ns string) (bool, error) {
	committed := false
	for pi, ph := range rs.engine.opts.Phases {
		phaseNS := fmt.Sprintf("%s/phase_%d_%s", ns, pi, ph.Name)
		changed, err := rs.runPhase(ctx, ph, phaseNS)
		if err != nil {
			return committed, err
		}
		committed = committed || changed
		if err := rs.checkInvariants(); err != nil {
			return committed, err
		}
	}
	return committed, nil
}

// runPhase traverses the tree level by level, top down, applying the
// phase's operators, and repeats from the root until a full traversal
// commits nothing (star mode) or once (star disabled).
func (rs *run) runPhase(ctx context.Context, ph Phase, ns string) (bool, error) {
	e := rs.engine
	phaseChanged := false
	for iter := 0; ; iter++ {
		e.logger.Info("phase traversal",
			zap.String("phase", ph.Name),
			zap.Int("iteration", iter),
			zap.Int("height", tree.Height(rs.root)),
			zap.Int("nodes", tree.Size(rs.root)),
		)

		changed := false
		for level := 0; ; level++ {
			if err := ctx.Err(); err != nil {
				return phaseChanged, err
			}
			levelNodes := tree.CollectLevel(rs.root, level)
			if len(levelNodes) == 0 {
				break
			}
			sc := scope{ns: ns, iter: iter, level: level}

			if ph.Prune {
				eligible := pruneEligible(levelNodes, ph.Filter)
				if len(eligible) > 0 {
					e.logger.Debug("pruning level",
						zap.Int("level", level),
						zap.Int("eligible", len(eligible)),
					)
					ch, err := rs.pruneLevel(ctx, eligible, sc)
					if err != nil {
						return phaseChanged, err
					}
					changed = changed || ch
				}
			}
			if ph.Hoist {
				ch, err := rs.hoistLevel(ctx, hoistEligible(levelNodes, ph.Filter), sc)
				if err != nil {
					return phaseChanged, err
				}
				changed = changed || ch
			}
		}

		phaseChanged = phaseChanged || changed
		if !e.opts.Star || !changed {
			return phaseChanged, nil
		}
	}
}

// pruneEligible selects the level's nodes that the prune operator may
// target: kept, removable, admitted by the phase filter, and actually able
// to change the output.
func pruneEligible(levelNodes []tree.LevelNode, filter Filter) []*tree.Node {
	var out []*tree.Node
	for _, ln := range levelNodes {
		n := ln.Node
		if !n.Kept() || !n.Removable || ln.Parent == nil {
			continue
		}
		if filter != nil && !filter(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// hoistEligible selects the rule nodes the hoist operator may target. The
// root has no parent slot to fill and is never hoisted away.
func hoistEligible(levelNodes []tree.LevelNode, filter Filter) []tree.LevelNode {
	var out []tree.LevelNode
	for _, ln := range levelNodes {
		if ln.Parent == nil || ln.Node.Kind != tree.Rule || !ln.Node.Kept() {
			continue
		}
		if filter != nil && !filter(ln.Node) {
			continue
		}
		out = append(out, ln)
	}
	return out
}

// checkInvariants re-verifies the tree structure and that the tracked text
// still matches the tree, which must hold after every committed step.
func (rs *run) checkInvariants() error {
	if err := rs.root.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if got := tree.Unparse(rs.root, rs.engine.opts.WithWhitespace); got != rs.text {
		return fmt.Errorf("%w: tree text diverged from last committed candidate", ErrInternal)
	}
	return nil
}

// scope names the point of the search a candidate belongs to; it prefixes
// candidate IDs so materialized files of different phases and levels never
// collide.
type scope struct {
	ns    string
	iter  int
	level int
}

func (sc scope) candidateID(kind string, seq int) string {
	return fmt.Sprintf("%s/iter_%d/level_%d/%s_%d", sc.ns, sc.iter, sc.level, kind, seq)
}
