package hdd

import (
	"context"

	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/tree"
)

// pruneLevel runs the generalized ddmin state machine over the eligible
// nodes of one tree level. config is the ordered sequence of nodes still
// kept; each step tries to prune a contiguous chunk of it (or everything
// but one chunk), committing the first confirmed-interesting candidate and
// resetting the granularity.
func (rs *run) pruneLevel(ctx context.Context, nodes []*tree.Node, sc scope) (bool, error) {
	config := nodes
	granularity := rs.engine.opts.Granularity
	changed := false

	for len(config) > 0 {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		// A single remaining node cannot be partitioned; probe once whether
		// it can be pruned outright before giving up on this level.
		if len(config) == 1 {
			cand := rs.newPruneCandidate(sc, "empty", config)
			if cand == nil {
				break
			}
			idx, err := rs.firstInteresting(ctx, []*candidate{cand})
			if err != nil {
				return changed, err
			}
			if idx < 0 {
				break
			}
			rs.commitPrune(config, cand)
			changed = true
			break
		}

		if granularity > len(config) {
			granularity = len(config)
		}
		chunks := split(config, granularity)

		// Try deleting one chunk at a time, in source order.
		entries := rs.pruneRound(sc, "del", chunks, func(chunk []*tree.Node) []*tree.Node {
			return chunk
		})
		idx, err := rs.firstInterestingEntries(ctx, entries)
		if err != nil {
			return changed, err
		}
		if idx >= 0 {
			rs.commitPrune(entries[idx].removed, entries[idx].cand)
			config = subtract(config, entries[idx].removed)
			granularity = 2
			changed = true
			continue
		}

		// Then try keeping only one chunk, deleting its complement. With
		// two chunks the complements coincide with the chunks already tried.
		if granularity > 2 {
			entries = rs.pruneRound(sc, "keep", chunks, func(chunk []*tree.Node) []*tree.Node {
				return subtract(config, chunk)
			})
			idx, err = rs.firstInterestingEntries(ctx, entries)
			if err != nil {
				return changed, err
			}
			if idx >= 0 {
				rs.commitPrune(entries[idx].removed, entries[idx].cand)
				config = subtract(config, entries[idx].removed)
				granularity = 2
				changed = true
				continue
			}
		}

		if granularity >= len(config) {
			break
		}
		granularity = min(2*granularity, len(config))
	}

	return changed, nil
}

// roundEntry pairs a candidate with the nodes it prunes so the winner can
// be committed.
type roundEntry struct {
	removed []*tree.Node
	cand    *candidate
}

func (rs *run) pruneRound(sc scope, kind string, chunks [][]*tree.Node, removedOf func([]*tree.Node) []*tree.Node) []roundEntry {
	var entries []roundEntry
	for _, chunk := range chunks {
		removed := removedOf(chunk)
		cand := rs.newPruneCandidate(sc, kind, removed)
		if cand == nil {
			rs.stats.Skipped++
			continue
		}
		entries = append(entries, roundEntry{removed: removed, cand: cand})
	}
	return entries
}

func (rs *run) firstInterestingEntries(ctx context.Context, entries []roundEntry) (int, error) {
	cands := make([]*candidate, len(entries))
	for i := range entries {
		cands[i] = entries[i].cand
	}
	return rs.firstInteresting(ctx, cands)
}

func (rs *run) commitPrune(removed []*tree.Node, cand *candidate) {
	for _, n := range removed {
		n.Prune()
	}
	rs.text = cand.text
	rs.stats.Commits++
	rs.engine.logger.Info("committed prune",
		zap.String("candidate", cand.id),
		zap.Int("pruned", len(removed)),
		zap.Int("size", len(cand.text)),
	)
}

// split partitions config into n contiguous chunks of near-equal length.
func split(config []*tree.Node, n int) [][]*tree.Node {
	chunks := make([][]*tree.Node, 0, n)
	base, rem := len(config)/n, len(config)%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, config[start:start+size])
		start += size
	}
	return chunks
}

// subtract returns config without the nodes in removed, preserving order.
func subtract(config, removed []*tree.Node) []*tree.Node {
	drop := make(map[uint64]bool, len(removed))
	for _, n := range removed {
		drop[n.ID] = true
	}
	out := make([]*tree.Node, 0, len(config)-len(removed))
	for _, n := range config {
		if !drop[n.ID] {
			out = append(out, n)
		}
	}
	return out
}
