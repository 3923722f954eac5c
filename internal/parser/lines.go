package parser

import (
	"strings"

	"github.com/gnolang/treduce/internal/tree"
)

// Lines is the fallback adapter for inputs without a structured format: one
// token per line, newline included. With a flat tree the hierarchical
// search degenerates to plain line-based ddmin.
type Lines struct{}

// Name implements Adapter.
func (Lines) Name() string { return "lines" }

// Parse implements Adapter.
func (Lines) Parse(src []byte, opts Options) (*tree.Node, error) {
	root := tree.NewRoot()
	repl := opts.replacement("line", "")
	for i, line := range strings.SplitAfter(string(src), "\n") {
		if line == "" {
			// SplitAfter yields a final empty element when the input ends
			// with a newline.
			continue
		}
		start := tree.Position{Line: i + 1, Col: 1}
		var end tree.Position
		if strings.HasSuffix(line, "\n") {
			end = tree.Position{Line: i + 2, Col: 1}
		} else {
			end = tree.Position{Line: i + 1, Col: len(line) + 1}
		}
		root.AddChild(tree.NewToken("line", line, repl, start, end))
	}
	return root, nil
}
