package parser

import (
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/treduce/internal/tree"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"go", "json", "lines"} {
		a, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
	_, err := ByName("xml")
	assert.Error(t, err)
}

func TestLines(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		src := "alpha\nbeta\ngamma\n"
		root, err := Lines{}.Parse([]byte(src), Options{})
		require.NoError(t, err)
		require.NoError(t, root.Check())
		assert.Len(t, root.Children, 3)
		assert.Equal(t, src, tree.Unparse(root, false))
	})

	t.Run("NoTrailingNewline", func(t *testing.T) {
		src := "alpha\nbeta"
		root, err := Lines{}.Parse([]byte(src), Options{})
		require.NoError(t, err)
		assert.Len(t, root.Children, 2)
		assert.Equal(t, src, tree.Unparse(root, false))
	})

	t.Run("Positions", func(t *testing.T) {
		root, err := Lines{}.Parse([]byte("a\nb\n"), Options{})
		require.NoError(t, err)
		require.Len(t, root.Children, 2)
		assert.Equal(t, tree.Position{Line: 1, Col: 1}, root.Children[0].Start)
		assert.Equal(t, tree.Position{Line: 2, Col: 1}, root.Children[0].End)
		assert.Equal(t, tree.Position{Line: 2, Col: 1}, root.Children[1].Start)
	})

	t.Run("PruningDropsLines", func(t *testing.T) {
		root, err := Lines{}.Parse([]byte("a\nb\nc\n"), Options{})
		require.NoError(t, err)
		root.Children[1].Prune()
		assert.Equal(t, "a\nc\n", tree.Unparse(root, false))
	})
}

func TestJSON(t *testing.T) {
	src := `{"a": [1, true], "b": null}`

	t.Run("HiddenTokensRoundTrip", func(t *testing.T) {
		root, err := JSON{}.Parse([]byte(src), Options{HiddenTokens: true})
		require.NoError(t, err)
		require.NoError(t, root.Check())
		assert.Equal(t, src, tree.Unparse(root, false), "hidden tokens make unparse byte-exact")
	})

	t.Run("Structure", func(t *testing.T) {
		root, err := JSON{}.Parse([]byte(src), Options{})
		require.NoError(t, err)
		require.Len(t, root.Children, 1)
		obj := root.Children[0]
		assert.Equal(t, "object", obj.Name)
		assert.Equal(t, "{}", obj.Replacement)

		var members, arrays int
		root.Walk(func(n *tree.Node) bool {
			switch n.Name {
			case "member":
				members++
			case "array":
				arrays++
			}
			return true
		})
		assert.Equal(t, 2, members)
		assert.Equal(t, 1, arrays)
	})

	t.Run("MemberPruning", func(t *testing.T) {
		root, err := JSON{}.Parse([]byte(src), Options{HiddenTokens: true})
		require.NoError(t, err)
		root.Walk(func(n *tree.Node) bool {
			if n.Name != "member" {
				return true
			}
			for _, c := range n.Children {
				if c.Text == `"b"` {
					n.Prune()
				}
			}
			return true
		})
		assert.Equal(t, `{"a": [1, true], }`, tree.Unparse(root, false))
	})

	t.Run("ReplacementOverride", func(t *testing.T) {
		root, err := JSON{}.Parse([]byte(src), Options{
			Replacements: map[string]string{"object": "null"},
		})
		require.NoError(t, err)
		assert.Equal(t, "null", root.Children[0].Replacement)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := JSON{}.Parse([]byte(`{"a": 1} trailing`), Options{})
		assert.Error(t, err)
		_, err = JSON{}.Parse([]byte(`"unterminated`), Options{})
		assert.Error(t, err)
		_, err = JSON{}.Parse([]byte(`@`), Options{})
		assert.Error(t, err)
		_, err = JSON{}.Parse([]byte(`{"a"}`), Options{})
		assert.Error(t, err)
		_, err = JSON{}.Parse([]byte(``), Options{})
		assert.Error(t, err)
	})
}

const goSrc = `package main

import "fmt"

func main() {
	x := 1
	fmt.Println(x)
}
`

func TestGo(t *testing.T) {
	t.Run("HiddenTokensRoundTrip", func(t *testing.T) {
		root, err := Go{}.Parse([]byte(goSrc), Options{HiddenTokens: true})
		require.NoError(t, err)
		require.NoError(t, root.Check())
		assert.Equal(t, goSrc, tree.Unparse(root, false), "hidden tokens make unparse byte-exact")
	})

	t.Run("SynthesizedUnparseStaysValid", func(t *testing.T) {
		root, err := Go{}.Parse([]byte(goSrc), Options{})
		require.NoError(t, err)
		require.NoError(t, root.Check())

		// Without whitespace tokens the materialized semicolons must keep
		// the flattened output parseable.
		flat := tree.Unparse(root, true)
		fset := token.NewFileSet()
		_, err = goparser.ParseFile(fset, "flat.go", flat, goparser.SkipObjectResolution)
		assert.NoError(t, err, "unparsed output: %s", flat)
	})

	t.Run("Structure", func(t *testing.T) {
		root, err := Go{}.Parse([]byte(goSrc), Options{})
		require.NoError(t, err)
		require.Len(t, root.Children, 1)
		file := root.Children[0]
		assert.Equal(t, "File", file.Name)

		var names []string
		root.Walk(func(n *tree.Node) bool {
			if n.Kind == tree.Rule {
				names = append(names, n.Name)
			}
			return true
		})
		assert.Contains(t, names, "FuncDecl")
		assert.Contains(t, names, "BlockStmt")
		assert.Contains(t, names, "CallExpr")
	})

	t.Run("BlockReplacement", func(t *testing.T) {
		root, err := Go{}.Parse([]byte(goSrc), Options{})
		require.NoError(t, err)
		root.Walk(func(n *tree.Node) bool {
			if n.Name == "BlockStmt" {
				assert.Equal(t, "{}", n.Replacement)
			}
			return true
		})
	})

	t.Run("TokenReplacements", func(t *testing.T) {
		root, err := Go{}.Parse([]byte(goSrc), Options{})
		require.NoError(t, err)
		root.Walk(func(n *tree.Node) bool {
			if n.Kind != tree.Token {
				return true
			}
			switch n.Name {
			case "IDENT", "INT", "STRING":
				assert.Empty(t, n.Replacement, "token %s %q", n.Name, n.Text)
			case "FUNC", "PACKAGE", "IMPORT":
				assert.Equal(t, n.Text, n.Replacement)
			}
			return true
		})
	})

	t.Run("SyntaxError", func(t *testing.T) {
		_, err := Go{}.Parse([]byte("package main\n\nfunc {"), Options{})
		assert.Error(t, err)
	})
}

func TestLoadReplacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("object: \"null\"\nNUMBER: \"0\"\n"), 0o644))

	table, err := LoadReplacements(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"object": "null", "NUMBER": "0"}, table)

	_, err = LoadReplacements(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
