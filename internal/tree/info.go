package tree

// Height returns the number of levels of kept nodes, counting the root as
// the first level. An entirely pruned tree has height 0.
func Height(n *Node) int {
	if !n.Kept() {
		return 0
	}
	h := 0
	for _, c := range n.Children {
		if ch := Height(c); ch > h {
			h = ch
		}
	}
	return h + 1
}

// Shape returns the number of kept nodes per level, root first.
func Shape(n *Node) []int {
	var shape []int
	var walk func(*Node, int)
	walk = func(n *Node, level int) {
		if !n.Kept() {
			return
		}
		for len(shape) <= level {
			shape = append(shape, 0)
		}
		shape[level]++
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(n, 0)
	return shape
}

// Count returns the number of kept nodes per kind.
func Count(n *Node) map[Kind]int {
	counts := make(map[Kind]int)
	n.Walk(func(n *Node) bool {
		counts[n.Kind]++
		return true
	})
	return counts
}

// Size returns the total number of kept nodes.
func Size(n *Node) int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}

// LevelNode is a kept node together with its traversal context. The parent
// reference is recomputed on every collection rather than stored in the
// node, keeping the tree free of back-pointers.
type LevelNode struct {
	Node   *Node
	Parent *Node
	// Index is the node's position in Parent.Children. -1 for the root.
	Index int
}

// CollectLevel gathers the kept nodes at the given depth below the root
// (level 0 is the root itself), in source order. The subtrees of pruned
// nodes are not descended into.
func CollectLevel(root *Node, level int) []LevelNode {
	var nodes []LevelNode
	var walk func(n, parent *Node, index, current int)
	walk = func(n, parent *Node, index, current int) {
		if !n.Kept() {
			return
		}
		if current == level {
			nodes = append(nodes, LevelNode{Node: n, Parent: parent, Index: index})
			return
		}
		for i, c := range n.Children {
			walk(c, n, i, current+1)
		}
	}
	walk(root, nil, -1, 0)
	return nodes
}
