// Package transform contains the tree-to-tree rewrites that prepare a parse
// tree for efficient reduction. Each pass consumes a tree and returns the
// (possibly new) root; callers must not keep references into the input tree
// afterwards.
package transform

import "github.com/gnolang/treduce/internal/tree"

// Squeeze collapses every maximal chain of rule nodes that each have exactly
// one child which is itself a rule node, keeping only the deepest node of
// the chain. Shorter trees mean fewer levels for the engine to traverse.
// The pass is idempotent.
func Squeeze(root *tree.Node) *tree.Node {
	if root.Kind == tree.Rule {
		root = squeezeChain(root)
	}
	for i, c := range root.Children {
		root.Children[i] = Squeeze(c)
	}
	return root
}

func squeezeChain(n *tree.Node) *tree.Node {
	for n.Kind == tree.Rule && len(n.Children) == 1 && n.Children[0].Kind == tree.Rule {
		n = n.Children[0]
	}
	return n
}
