// Package hdd implements hierarchical delta debugging over a parse tree.
//
// The engine walks the tree level by level and, at each level, runs a
// generalized minimizing pass over the nodes eligible for an operator.
// Two operators are supported:
//
// Prune: mark a set of nodes as removed so they unparse to their minimal
// replacement instead of their subtree.
//
// Hoist: replace a node with one of its same-rule descendants, collapsing
// recursive wrappers without changing the surrounding structure.
//
// A Phase combines operators with a node filter; running a coarse prune
// phase (only nodes whose replacement is empty) before a full one usually
// pays for itself on large inputs. The Options.Variant field selects
// between a single pass over the phase list (HDD) and repeating the whole
// list until no phase commits a change (HDDR).
//
// Candidate texts are produced without mutating the tree; a change is
// applied to the tree only after the tester has accepted it. Every
// candidate is keyed by a fingerprint of its content in a Cache, so a
// text is handed to the tester at most once per run.
//
// Usage:
//
//	engine, err := hdd.New(myTester, cache.NewMemory(), logger, hdd.Options{
//	    Phases: []hdd.Phase{{Name: "prune", Prune: true}},
//	    Star:   true,
//	})
//	if err != nil {
//	    // handle error
//	}
//	minimal, stats, err := engine.Reduce(ctx, root)
package hdd
