package tree

import "strings"

// Unparse reconstructs the textual form of the tree. Kept rule nodes
// concatenate their children, kept token nodes contribute their literal
// text, and pruned nodes contribute their replacement text.
//
// When withWhitespace is true, a single space is synthesized between two
// adjacent non-hidden emissions whose source spans are non-contiguous. This
// keeps candidates readable when whitespace tokens were not built into the
// tree. Hidden tokens present in the tree are always emitted verbatim and
// never synthesized around.
func Unparse(n *Node, withWhitespace bool) string {
	return UnparseCandidate(n, withWhitespace, nil, nil, nil)
}

// UnparseCandidate reconstructs the text of a hypothetical tree without
// mutating the real one. Nodes whose ID is in pruned unparse as their
// replacement text, exactly as if they had been pruned. When hoisted is
// non-nil, the node with ID hoistID is unparsed as the hoisted subtree
// instead of its own expansion. Both operators of the engine are expressed
// through this single entry point, keeping candidate generation pure.
func UnparseCandidate(n *Node, withWhitespace bool, pruned map[uint64]bool, hoisted *Node, hoistID *uint64) string {
	u := unparser{
		ws:      withWhitespace,
		pruned:  pruned,
		hoisted: hoisted,
	}
	if hoistID != nil {
		u.hoistID = *hoistID
		u.hoist = true
	}
	u.walk(n)
	return u.b.String()
}

type unparser struct {
	b       strings.Builder
	ws      bool
	pruned  map[uint64]bool
	hoisted *Node
	hoistID uint64
	hoist   bool

	last       Position
	hasLast    bool
	lastHidden bool
}

func (u *unparser) walk(n *Node) {
	if u.hoist && n.ID == u.hoistID {
		u.walk(u.hoisted)
		return
	}
	if !n.Kept() || (u.pruned != nil && u.pruned[n.ID]) {
		u.emit(n.Replacement, n.Start, n.End, false)
		return
	}
	switch n.Kind {
	case Token:
		u.emit(n.Text, n.Start, n.End, n.Hidden)
	case Root, Rule:
		for _, c := range n.Children {
			u.walk(c)
		}
	}
}

// emit appends text, synthesizing a separating space when whitespace
// synthesis is on and the previous non-hidden emission does not butt up
// against this one in the original source. Empty emissions leave the
// position tracking untouched so that the surviving neighbors are judged
// against each other.
func (u *unparser) emit(text string, start, end Position, hidden bool) {
	if text == "" {
		return
	}
	if u.ws && u.hasLast && !hidden && !u.lastHidden && u.separated(start) {
		u.b.WriteByte(' ')
	}
	u.b.WriteString(text)
	u.last = end
	u.hasLast = true
	u.lastHidden = hidden
}

// separated reports whether the span starting at start is non-contiguous
// with the previously emitted span. Unknown positions are treated as
// contiguous; synthesizing nothing is always safe for them because the
// adapters that omit positions also keep their whitespace tokens.
func (u *unparser) separated(start Position) bool {
	if !start.known() || !u.last.known() {
		return false
	}
	return start != u.last
}
