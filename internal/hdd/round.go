package hdd

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/treduce/internal/cache"
	"github.com/gnolang/treduce/internal/tester"
	"github.com/gnolang/treduce/internal/tree"
)

// candidate is one unparsed reduction candidate awaiting a verdict.
type candidate struct {
	id   string
	text string
}

// newPruneCandidate builds the candidate that prunes the given nodes, or
// nil when the result would be textually identical to the current tree
// (such candidates are never tested).
func (rs *run) newPruneCandidate(sc scope, kind string, removed []*tree.Node) *candidate {
	rm := make(map[uint64]bool, len(removed))
	for _, n := range removed {
		rm[n.ID] = true
	}
	text := tree.UnparseCandidate(rs.root, rs.engine.opts.WithWhitespace, rm, nil, nil)
	if text == rs.text {
		return nil
	}
	rs.seq++
	return &candidate{id: sc.candidateID(kind, rs.seq), text: text}
}

// newHoistCandidate builds the candidate that replaces node by its
// descendant sub, or nil when the text would not change.
func (rs *run) newHoistCandidate(sc scope, node, sub *tree.Node) *candidate {
	text := tree.UnparseCandidate(rs.root, rs.engine.opts.WithWhitespace, nil, sub, &node.ID)
	if text == rs.text {
		return nil
	}
	rs.seq++
	return &candidate{id: sc.candidateID("hoist", rs.seq), text: text}
}

// firstInteresting returns the index of the lowest-indexed interesting
// candidate, or -1. With a single worker candidates are tested strictly in
// order, stopping at the first hit. With several workers the candidates of
// the round are tested concurrently; the applied result is still the
// lowest-indexed interesting one, and verdicts of outvoted candidates are
// only recorded into the cache.
func (rs *run) firstInteresting(ctx context.Context, cands []*candidate) (int, error) {
	if len(cands) == 0 {
		return -1, nil
	}
	if rs.engine.opts.Workers <= 1 || len(cands) == 1 {
		for i, c := range cands {
			v, err := rs.testCandidate(ctx, c)
			if err != nil {
				return -1, err
			}
			if v == tester.Interesting {
				return i, nil
			}
		}
		return -1, nil
	}

	var mu sync.Mutex
	best := len(cands)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rs.engine.opts.Workers)
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			mu.Lock()
			outvoted := i > best
			mu.Unlock()
			if outvoted {
				// A lower-indexed candidate already won; this one's verdict
				// could never be applied.
				return nil
			}
			v, err := rs.testCandidate(gctx, c)
			if err != nil {
				return err
			}
			if v == tester.Interesting {
				mu.Lock()
				if i < best {
					best = i
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return -1, err
	}
	if best == len(cands) {
		return -1, nil
	}
	return best, nil
}

// testCandidate resolves one candidate's verdict, consulting the cache
// first. It is safe for concurrent use within a round.
func (rs *run) testCandidate(ctx context.Context, c *candidate) (tester.Verdict, error) {
	e := rs.engine
	fp := cache.Fingerprint(c.text)
	if e.cache != nil {
		if v, ok := e.cache.Get(fp); ok {
			rs.cacheHits.Add(1)
			return v, nil
		}
	}

	v, err := e.tester.Test(ctx, tester.Candidate{ID: c.id, Text: c.text})
	if err != nil {
		return v, fmt.Errorf("%w: candidate %s: %v", ErrTesterFailure, c.id, err)
	}
	rs.tests.Add(1)
	if e.cache != nil {
		e.cache.Put(fp, v)
	}
	e.logger.Debug("tested candidate",
		zap.String("candidate", c.id),
		zap.Stringer("verdict", v),
		zap.Int("size", len(c.text)),
	)
	return v, nil
}
