package transform

import "github.com/gnolang/treduce/internal/tree"

// FlattenRecursion rewrites chains produced by left- or right-recursive
// rules into a single node holding all repeated elements as direct
// siblings. One level-wise reduction pass can then drop many repetitions at
// once instead of one per recursion depth.
//
// A chain is recognized by a rule node whose first or last child expands
// the same rule. Children are flattened bottom-up first, so each lift pulls
// in an already flat expansion.
func FlattenRecursion(root *tree.Node) *tree.Node {
	for i, c := range root.Children {
		root.Children[i] = FlattenRecursion(c)
	}
	if root.Kind != tree.Rule {
		return root
	}
	for {
		if !liftEdgeChild(root) {
			break
		}
	}
	return root
}

// liftEdgeChild replaces a same-rule first or last child by that child's
// own children. Left recursion is preferred when both edges match, keeping
// the lift order deterministic.
func liftEdgeChild(n *tree.Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	if first := n.Children[0]; sameRule(n, first) {
		lifted := make([]*tree.Node, 0, len(first.Children)+len(n.Children)-1)
		lifted = append(lifted, first.Children...)
		lifted = append(lifted, n.Children[1:]...)
		n.Children = lifted
		adoptSpan(n)
		return true
	}
	if last := n.Children[len(n.Children)-1]; sameRule(n, last) {
		n.Children = append(n.Children[:len(n.Children)-1], last.Children...)
		adoptSpan(n)
		return true
	}
	return false
}

func sameRule(parent, child *tree.Node) bool {
	return child.Kind == tree.Rule && child.Name == parent.Name && len(child.Children) > 0
}

// adoptSpan widens the node's span to cover its new children.
func adoptSpan(n *tree.Node) {
	if len(n.Children) == 0 {
		return
	}
	n.Start = n.Children[0].Start
	n.End = n.Children[len(n.Children)-1].End
}
