package transform

import (
	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/tree"
)

// Flags selects which passes the pipeline applies.
type Flags struct {
	FlattenRecursion bool
	Squeeze          bool
	SkipUnremovable  bool
	SkipWhitespace   bool

	// WithWhitespace mirrors the unparser setting of the run; it decides
	// which tokens SkipUnremovable may safely leave removable.
	WithWhitespace bool
}

// Apply runs the enabled passes in their fixed order and returns the
// resulting root. The order matters: flattening first exposes chains for
// squeezing, and the skip passes run on the final shape of the tree.
func Apply(logger *zap.Logger, root *tree.Node, flags Flags) *tree.Node {
	if flags.FlattenRecursion {
		root = FlattenRecursion(root)
		logTree(logger, "tree after recursion flattening", root)
	}
	if flags.Squeeze {
		root = Squeeze(root)
		logTree(logger, "tree after squeezing", root)
	}
	if flags.SkipUnremovable {
		root = SkipUnremovable(root, flags.WithWhitespace)
		logTree(logger, "tree after skipping unremovable nodes", root)
	}
	if flags.SkipWhitespace {
		root = SkipWhitespace(root)
		logTree(logger, "tree after skipping whitespace tokens", root)
	}
	return root
}

func logTree(logger *zap.Logger, msg string, root *tree.Node) {
	if logger == nil {
		return
	}
	logger.Debug(msg,
		zap.Int("height", tree.Height(root)),
		zap.Ints("shape", tree.Shape(root)),
		zap.Int("nodes", tree.Size(root)),
	)
}
