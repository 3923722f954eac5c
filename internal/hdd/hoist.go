package hdd

import (
	"context"

	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/tree"
)

// hoistLevel tries to replace each eligible rule node of the level by one
// of its same-rule descendants, collapsing nested same-category structures
// (redundant parentheses, wrapper expressions) that pruning cannot reach
// without destroying the parent's required slot. A successful hoist is
// retried on the substitute until no descendant works, so chains collapse
// to their innermost element within one traversal.
func (rs *run) hoistLevel(ctx context.Context, nodes []tree.LevelNode, sc scope) (bool, error) {
	changed := false
	for _, ln := range nodes {
		node := ln.Node
		for node.Kept() {
			if err := ctx.Err(); err != nil {
				return changed, err
			}
			descs := sameRuleDescendants(node)
			if len(descs) == 0 {
				break
			}

			var cands []*candidate
			var subs []*tree.Node
			for _, d := range descs {
				cand := rs.newHoistCandidate(sc, node, d)
				if cand == nil {
					rs.stats.Skipped++
					continue
				}
				cands = append(cands, cand)
				subs = append(subs, d)
			}
			if len(cands) == 0 {
				break
			}

			idx, err := rs.firstInteresting(ctx, cands)
			if err != nil {
				return changed, err
			}
			if idx < 0 {
				break
			}

			sub := subs[idx]
			ln.Parent.Children[ln.Index] = sub
			rs.text = cands[idx].text
			rs.stats.Commits++
			changed = true
			rs.engine.logger.Info("committed hoist",
				zap.String("candidate", cands[idx].id),
				zap.String("rule", node.Name),
				zap.Int("size", len(rs.text)),
			)
			node = sub
		}
	}
	return changed, nil
}

// sameRuleDescendants collects the kept descendants of n expanding the same
// rule, in pre-order, which keeps the earliest-in-source candidate first.
func sameRuleDescendants(n *tree.Node) []*tree.Node {
	var out []*tree.Node
	var walk func(*tree.Node)
	walk = func(c *tree.Node) {
		if !c.Kept() {
			return
		}
		if c != n && c.Kind == tree.Rule && c.Name == n.Name {
			out = append(out, c)
		}
		for _, ch := range c.Children {
			walk(ch)
		}
	}
	walk(n)
	return out
}
