package transform

import (
	"strings"

	"github.com/gnolang/treduce/internal/tree"
)

// SkipWhitespace excludes pure-whitespace and comment tokens from candidate
// generation. The tokens stay in the tree and keep unparsing verbatim; they
// are merely never targeted for removal, which shrinks the search space on
// inputs that build hidden tokens into the tree.
func SkipWhitespace(root *tree.Node) *tree.Node {
	root.Walk(func(n *tree.Node) bool {
		if n.Kind == tree.Token && (n.Hidden || strings.TrimSpace(n.Text) == "") {
			n.Removable = false
		}
		return true
	})
	return root
}
