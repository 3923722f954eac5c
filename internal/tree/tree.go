// Package tree defines the node model that the hierarchical reducer works
// with. A tree is built once by a parser adapter, reshaped by the transform
// passes, and then shrunk by the reduction engine.
//
// Nodes form a closed set of kinds (Root, Rule, Token) discriminated by the
// Kind tag; every consumer switches exhaustively over it. The tree is a
// single-owner structure: a parent exclusively owns its children and no node
// stores a pointer back to its parent. Ancestor information, where needed,
// is carried explicitly during traversal.
package tree

import (
	"fmt"
	"sync/atomic"
)

// Kind discriminates the node variants.
type Kind int8

const (
	// Root is the single designated entry node wrapping the parsed input.
	Root Kind = iota
	// Rule is a grammar nonterminal expansion.
	Rule
	// Token is a terminal carrying a span of the original source.
	Token
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Rule:
		return "rule"
	case Token:
		return "token"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// State tracks whether a node still contributes its own expansion to the
// unparsed output or has been pruned down to its replacement text.
type State int8

const (
	// Keep means the node unparses normally.
	Keep State = iota
	// Pruned means the node unparses to its Replacement and its subtree is
	// no longer visited by the engine.
	Pruned
)

// Position is a line/column location in the original input. Lines and
// columns are 1-based; the zero value means "unknown".
type Position struct {
	Line int
	Col  int
}

func (p Position) known() bool { return p.Line != 0 || p.Col != 0 }

// Node is one node of the reduction tree. The meaning of the fields depends
// on Kind: Name and Alt are set for Rule nodes, Text and Hidden for Token
// nodes, and Root nodes carry children only.
type Node struct {
	Kind Kind

	// ID is a stable identifier unique within a process, used for logging
	// and candidate path naming.
	ID uint64

	// Name is the grammar rule name (Rule) or the token kind name (Token).
	Name string

	// Alt is the index of the rule alternative this expansion came from,
	// when the adapter knows it. -1 when unknown.
	Alt int

	// Text is the literal source text of a Token node.
	Text string

	// Hidden marks whitespace/comment tokens.
	Hidden bool

	// Replacement is the minimal text substituted for the node when it is
	// pruned. The default, the empty string, deletes the node outright.
	Replacement string

	// Removable is cleared by transforms for nodes that must never be
	// targeted by the reduction operators. Such nodes are still unparsed.
	Removable bool

	// State is flipped to Pruned when the engine commits a removal.
	State State

	// Start and End delimit the node's span in the original input.
	Start Position
	End   Position

	// Children are ordered in source order. Only Root and Rule nodes have
	// children.
	Children []*Node
}

var idCounter atomic.Uint64

// nextID hands out process-unique node identifiers.
func nextID() uint64 { return idCounter.Add(1) }

// NewRoot returns a Root node owning the given children.
func NewRoot(children ...*Node) *Node {
	return &Node{Kind: Root, ID: nextID(), Alt: -1, Children: children}
}

// NewRule returns a Rule node for the named nonterminal.
func NewRule(name string, replacement string, children ...*Node) *Node {
	return &Node{
		Kind:        Rule,
		ID:          nextID(),
		Name:        name,
		Alt:         -1,
		Replacement: replacement,
		Removable:   true,
		Children:    children,
	}
}

// NewToken returns a Token node with the given literal text.
func NewToken(name, text, replacement string, start, end Position) *Node {
	return &Node{
		Kind:        Token,
		ID:          nextID(),
		Name:        name,
		Alt:         -1,
		Text:        text,
		Replacement: replacement,
		Removable:   true,
		Start:       start,
		End:         end,
	}
}

// NewHiddenToken returns a whitespace/comment Token node.
func NewHiddenToken(name, text string, start, end Position) *Node {
	n := NewToken(name, text, "", start, end)
	n.Hidden = true
	return n
}

// AddChild appends child to n, keeping source order.
func (n *Node) AddChild(child *Node) { n.Children = append(n.Children, child) }

// Kept reports whether the node still unparses its own expansion.
func (n *Node) Kept() bool { return n.State == Keep }

// Prune flips the node to the Pruned state. The engine calls this only
// after the corresponding candidate was confirmed interesting.
func (n *Node) Prune() { n.State = Pruned }

// Walk calls fn for every kept node in pre-order, skipping the subtrees of
// pruned nodes. fn returning false prunes the walk below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !n.Kept() {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Check verifies the structural invariants of the tree: token nodes are
// leaves, node IDs are unique, and every node carries a known kind. A
// violation is an internal error, never a reduction verdict.
func (n *Node) Check() error {
	seen := make(map[uint64]struct{})
	return n.check(seen)
}

func (n *Node) check(seen map[uint64]struct{}) error {
	switch n.Kind {
	case Root, Rule, Token:
	default:
		return fmt.Errorf("tree: node %d has invalid kind %d", n.ID, n.Kind)
	}
	if _, dup := seen[n.ID]; dup {
		return fmt.Errorf("tree: duplicate node id %d", n.ID)
	}
	seen[n.ID] = struct{}{}
	if n.Kind == Token && len(n.Children) > 0 {
		return fmt.Errorf("tree: token node %d (%s) has children", n.ID, n.Name)
	}
	for _, c := range n.Children {
		if c == nil {
			return fmt.Errorf("tree: node %d has a nil child", n.ID)
		}
		if err := c.check(seen); err != nil {
			return err
		}
	}
	return nil
}
