package transform

import "github.com/gnolang/treduce/internal/tree"

// SkipUnremovable clears the removable flag of nodes whose pruning cannot
// change the unparsed output, so the engine never wastes a test on them.
// Typical cases are syntactically required punctuation, where the minimal
// replacement declared by the grammar equals the token text itself.
//
// withWhitespace must mirror the unparser setting of the run: when a space
// is synthesized between non-adjacent tokens, removing a lone space token
// is undone by the synthesis, so such tokens are unremovable too.
func SkipUnremovable(root *tree.Node, withWhitespace bool) *tree.Node {
	root.Walk(func(n *tree.Node) bool {
		if n.Kind == tree.Token && n.Removable {
			if n.Replacement == n.Text {
				n.Removable = false
			}
			if withWhitespace && n.Text == " " && n.Replacement == "" {
				n.Removable = false
			}
		}
		return true
	})
	return root
}
