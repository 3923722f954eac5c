package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/treduce/internal/tester"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("candidate text")
	assert.Equal(t, a, Fingerprint("candidate text"))
	assert.NotEqual(t, a, Fingerprint("candidate text "))
	assert.Len(t, a, 64)
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok := m.Get(Fingerprint("x"))
	assert.False(t, ok)

	fp := Fingerprint("x")
	m.Put(fp, tester.Interesting)
	v, ok := m.Get(fp)
	require.True(t, ok)
	assert.Equal(t, tester.Interesting, v)
	assert.Equal(t, 1, m.Len())

	// The first verdict recorded for a key wins.
	m.Put(fp, tester.NotInteresting)
	v, _ = m.Get(fp)
	assert.Equal(t, tester.Interesting, v)
	assert.Equal(t, 1, m.Len())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.gob")

	c, err := NewFile(path)
	require.NoError(t, err, "a missing cache file is not an error")
	assert.Equal(t, 0, c.Len())

	c.Put(Fingerprint("a"), tester.Interesting)
	c.Put(Fingerprint("b"), tester.NotInteresting)
	require.NoError(t, c.Save())

	reloaded, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	v, ok := reloaded.Get(Fingerprint("a"))
	require.True(t, ok)
	assert.Equal(t, tester.Interesting, v)
	v, ok = reloaded.Get(Fingerprint("b"))
	require.True(t, ok)
	assert.Equal(t, tester.NotInteresting, v)
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, err := NewFile(path)
	assert.Error(t, err)
}
