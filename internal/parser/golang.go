package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/gnolang/treduce/internal/tree"
)

// Go parses Go source into a reduction tree: one rule node per AST node,
// one token node per scanned token, interleaved by source position so the
// tree unparses back to the program text.
type Go struct{}

// Name implements Adapter.
func (Go) Name() string { return "go" }

// Parse implements Adapter.
func (g Go) Parse(src []byte, opts Options) (*tree.Node, error) {
	filename := opts.Filename
	if filename == "" {
		filename = "input.go"
	}

	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filename, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parser: go: %w", err)
	}

	toks, err := scanGo(filename, src)
	if err != nil {
		return nil, err
	}
	if opts.HiddenTokens {
		// With whitespace preserved the original newlines keep terminating
		// statements, so materialized auto-semicolons would only distort
		// the byte-exact reconstruction.
		kept := toks[:0]
		for _, t := range toks {
			if t.off != t.end {
				kept = append(kept, t)
			}
		}
		toks = kept
	}

	b := &goBuilder{
		src:  string(src),
		fset: fset,
		file: fset.File(file.Pos()),
		toks: toks,
		opts: opts,
	}
	root := tree.NewRoot()
	root.AddChild(b.build(file))
	b.flushTokens(root, len(src))
	if opts.HiddenTokens && b.last < len(src) {
		// Trailing whitespace after the last token, typically the final
		// newline.
		root.AddChild(tree.NewHiddenToken("WS", b.src[b.last:], b.pos(b.last), b.pos(len(src))))
	}
	return root, nil
}

// goTok is one scanned token with byte offsets into the source.
type goTok struct {
	name string
	text string
	off  int
	end  int
}

// scanGo tokenizes the source. Comments are left out of the token stream;
// in hidden-token mode they travel inside the whitespace gaps instead.
// Semicolons inserted by the scanner at line ends are materialized as real
// ";" tokens so that unparsing without the original newlines still yields a
// valid program.
func scanGo(filename string, src []byte) ([]goTok, error) {
	fset := token.NewFileSet()
	f := fset.AddFile(filename, fset.Base(), len(src))

	var s scanner.Scanner
	var scanErr error
	s.Init(f, src, func(pos token.Position, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("parser: go: %s: %s", pos, msg)
		}
	}, 0)

	var toks []goTok
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if scanErr != nil {
			return nil, scanErr
		}
		text := lit
		if text == "" {
			text = tok.String()
		}
		off := f.Offset(pos)
		if tok == token.SEMICOLON && lit == "\n" {
			// Auto-inserted semicolon: zero width in the source, ";" in the
			// unparsed output.
			toks = append(toks, goTok{name: "SEMICOLON", text: ";", off: off, end: off})
			continue
		}
		toks = append(toks, goTok{name: strings.ToUpper(tok.String()), text: text, off: off, end: off + len(text)})
	}
	return toks, nil
}

type goBuilder struct {
	src  string
	fset *token.FileSet
	file *token.File
	toks []goTok
	opts Options
	ti   int
	last int // offset one past the previously emitted token
}

// build recursively converts an AST node and the tokens inside its span
// into a rule node.
func (b *goBuilder) build(n ast.Node) *tree.Node {
	name := goNodeName(n)
	rule := tree.NewRule(name, b.opts.replacement(name, goRuleReplacements[name]))
	rule.Start = b.pos(b.file.Offset(n.Pos()))
	rule.End = b.pos(b.file.Offset(n.End()))

	for _, child := range directChildren(n) {
		b.flushTokens(rule, b.file.Offset(child.Pos()))
		rule.AddChild(b.build(child))
	}
	b.flushTokens(rule, b.file.Offset(n.End()))
	return rule
}

// flushTokens appends the pending tokens that start before limit to parent,
// preceded by their whitespace gaps when hidden tokens are requested.
func (b *goBuilder) flushTokens(parent *tree.Node, limit int) {
	for b.ti < len(b.toks) && b.toks[b.ti].off < limit {
		t := b.toks[b.ti]
		b.ti++
		if b.opts.HiddenTokens && t.off > b.last {
			gap := b.src[b.last:t.off]
			parent.AddChild(tree.NewHiddenToken("WS", gap, b.pos(b.last), b.pos(t.off)))
		}
		fallback := ""
		if goFixedToken(t.name, t.text) {
			fallback = t.text
		}
		parent.AddChild(tree.NewToken(t.name, t.text, b.opts.replacement(t.name, fallback), b.pos(t.off), b.pos(t.end)))
		if t.end > b.last {
			b.last = t.end
		}
	}
}

func (b *goBuilder) pos(off int) tree.Position {
	p := b.file.Position(b.file.Pos(off))
	return tree.Position{Line: p.Line, Col: p.Column}
}

// goFixedToken reports whether the token's text is grammar-mandated
// (keywords, operators, punctuation), making the text its own minimal
// replacement. Identifiers and literals default to an empty replacement.
func goFixedToken(name, text string) bool {
	switch name {
	case "IDENT", "INT", "FLOAT", "IMAG", "CHAR", "STRING":
		return false
	}
	return text != ""
}

// goRuleReplacements declares minimal replacements for the rule kinds where
// deleting the whole subtree must leave filler behind to stay parseable.
var goRuleReplacements = map[string]string{
	"BlockStmt":  "{}",
	"StructType": "struct{}",
}

// goNodeName names a rule after its AST node type.
func goNodeName(n ast.Node) string {
	name := fmt.Sprintf("%T", n)
	name = strings.TrimPrefix(name, "*ast.")
	return strings.TrimPrefix(name, "ast.")
}

// directChildren returns the immediate AST children of n in source order.
func directChildren(n ast.Node) []ast.Node {
	var out []ast.Node
	root := true
	ast.Inspect(n, func(c ast.Node) bool {
		if c == nil {
			return false
		}
		if root {
			root = false
			return true
		}
		out = append(out, c)
		return false
	})
	return out
}
