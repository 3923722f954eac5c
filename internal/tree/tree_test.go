package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Run("ValidTree", func(t *testing.T) {
		root := NewRoot(
			NewRule("expr", "",
				NewToken("NUM", "1", "", Position{1, 1}, Position{1, 2}),
				NewToken("PLUS", "+", "+", Position{1, 2}, Position{1, 3}),
				NewToken("NUM", "2", "", Position{1, 3}, Position{1, 4}),
			),
		)
		assert.NoError(t, root.Check())
	})

	t.Run("TokenWithChildren", func(t *testing.T) {
		tok := NewToken("NUM", "1", "", Position{}, Position{})
		tok.Children = []*Node{NewToken("NUM", "2", "", Position{}, Position{})}
		root := NewRoot(tok)
		assert.Error(t, root.Check())
	})

	t.Run("DuplicateID", func(t *testing.T) {
		a := NewToken("A", "a", "", Position{}, Position{})
		b := NewToken("B", "b", "", Position{}, Position{})
		b.ID = a.ID
		root := NewRoot(a, b)
		assert.Error(t, root.Check())
	})

	t.Run("NilChild", func(t *testing.T) {
		root := NewRoot()
		root.Children = []*Node{nil}
		assert.Error(t, root.Check())
	})
}

func TestConstructors(t *testing.T) {
	root := NewRoot()
	rule := NewRule("stmt", ";")
	tok := NewToken("IDENT", "x", "", Position{1, 1}, Position{1, 2})
	hidden := NewHiddenToken("WS", " ", Position{1, 2}, Position{1, 3})

	assert.False(t, root.Removable, "the root must never be a prune target")
	assert.True(t, rule.Removable)
	assert.Equal(t, ";", rule.Replacement)
	assert.True(t, tok.Removable)
	assert.True(t, hidden.Hidden)
	assert.Empty(t, hidden.Replacement)

	ids := map[uint64]bool{root.ID: true, rule.ID: true, tok.ID: true, hidden.ID: true}
	assert.Len(t, ids, 4, "ids must be unique")
}

func TestWalkSkipsPruned(t *testing.T) {
	kept := NewToken("A", "a", "", Position{}, Position{})
	inner := NewToken("B", "b", "", Position{}, Position{})
	pruned := NewRule("dead", "", inner)
	pruned.Prune()
	root := NewRoot(kept, pruned)

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return true
	})
	assert.Equal(t, []string{"", "A"}, visited)
	assert.False(t, pruned.Kept())
	assert.True(t, inner.Kept(), "pruning is not propagated into the subtree")
}

func TestInfo(t *testing.T) {
	root := NewRoot(
		NewRule("expr", "",
			NewToken("NUM", "1", "", Position{}, Position{}),
			NewToken("PLUS", "+", "+", Position{}, Position{}),
			NewToken("NUM", "2", "", Position{}, Position{}),
		),
		NewToken("EOF", "", "", Position{}, Position{}),
	)

	assert.Equal(t, 3, Height(root))
	assert.Equal(t, []int{1, 2, 3}, Shape(root))
	assert.Equal(t, 6, Size(root))

	counts := Count(root)
	assert.Equal(t, 1, counts[Root])
	assert.Equal(t, 1, counts[Rule])
	assert.Equal(t, 4, counts[Token])
}

func TestCollectLevel(t *testing.T) {
	n1 := NewToken("NUM", "1", "", Position{}, Position{})
	n2 := NewToken("NUM", "2", "", Position{}, Position{})
	expr := NewRule("expr", "", n1, n2)
	top := NewToken("EOF", "", "", Position{}, Position{})
	root := NewRoot(expr, top)

	level0 := CollectLevel(root, 0)
	require.Len(t, level0, 1)
	assert.Same(t, root, level0[0].Node)
	assert.Nil(t, level0[0].Parent)
	assert.Equal(t, -1, level0[0].Index)

	level1 := CollectLevel(root, 1)
	require.Len(t, level1, 2)
	assert.Same(t, expr, level1[0].Node)
	assert.Same(t, root, level1[0].Parent)
	assert.Equal(t, 0, level1[0].Index)
	assert.Same(t, top, level1[1].Node)

	level2 := CollectLevel(root, 2)
	require.Len(t, level2, 2)
	assert.Same(t, n1, level2[0].Node)
	assert.Equal(t, 0, level2[0].Index)
	assert.Same(t, n2, level2[1].Node)
	assert.Equal(t, 1, level2[1].Index)

	assert.Empty(t, CollectLevel(root, 3))

	expr.Prune()
	assert.Empty(t, CollectLevel(root, 2), "pruned subtrees are not descended into")
}
