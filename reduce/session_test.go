package reduce

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/tree"
)

func TestRunReducesLines(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("foo\nbar\nbaz\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Test = []string{"grep", "-q", "foo"}

	outDir := filepath.Join(dir, "out")
	result, err := Run(context.Background(), zap.NewNop(), cfg, input, outDir)
	require.NoError(t, err)

	assert.Equal(t, "foo\n", result.Text)
	assert.Equal(t, filepath.Join(outDir, "input.txt"), result.OutputPath)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(data))

	_, err = os.Stat(filepath.Join(outDir, "tests"))
	assert.True(t, os.IsNotExist(err), "work files are cleaned up by default")

	assert.Greater(t, result.Report.Tests, 0)
	assert.Greater(t, result.Report.Commits, 0)
	assert.Equal(t, len("foo\nbar\nbaz\n"), result.Report.OrigBytes)
	assert.Equal(t, len("foo\n"), result.Report.FinalBytes)
}

func TestRunKeepArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("foo\nbar\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Test = []string{"grep", "-q", "foo"}
	cfg.KeepArtifacts = true

	outDir := filepath.Join(dir, "out")
	_, err = Run(context.Background(), zap.NewNop(), cfg, input, outDir)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(outDir, "tests"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunUninterestingInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("nothing here\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Test = []string{"grep", "-q", "absent-needle"}

	_, err = Run(context.Background(), zap.NewNop(), cfg, input, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not interesting")
}

func TestRunNoTestCommand(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	_, err = Run(context.Background(), nil, cfg, "whatever.txt", t.TempDir())
	assert.Error(t, err)
}

func TestRunPersistentCache(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("foo\nbar\nbaz\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Test = []string{"grep", "-q", "foo"}
	cfg.CacheFile = filepath.Join(dir, "verdicts.gob")

	first, err := Run(context.Background(), zap.NewNop(), cfg, input, filepath.Join(dir, "out1"))
	require.NoError(t, err)
	require.FileExists(t, cfg.CacheFile)

	second, err := Run(context.Background(), zap.NewNop(), cfg, input, filepath.Join(dir, "out2"))
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
	assert.Greater(t, second.Report.CacheHits, 0, "the second run reuses persisted verdicts")
	assert.Less(t, second.Report.Tests, first.Report.Tests)
}

func TestRunUnknownEncoding(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Test = []string{"true"}
	cfg.Encoding = "no-such-charset"

	_, err = Run(context.Background(), nil, cfg, "whatever.txt", t.TempDir())
	assert.Error(t, err)
}

func TestParseInputFormats(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	root, err := ParseInput(cfg, "in.txt", []byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, len(root.Children))

	cfg.Format = "json"
	root, err = ParseInput(cfg, "in.json", []byte(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, "array", root.Children[0].Name)
	assert.Equal(t, `[1, 2]`, tree.Unparse(root, true))

	cfg.Format = "unknown"
	_, err = ParseInput(cfg, "in", []byte("x"))
	assert.Error(t, err)
}
