package reduce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/gnolang/treduce/formatter"
	"github.com/gnolang/treduce/internal/cache"
	"github.com/gnolang/treduce/internal/hdd"
	"github.com/gnolang/treduce/internal/parser"
	"github.com/gnolang/treduce/internal/tester"
	"github.com/gnolang/treduce/internal/transform"
	"github.com/gnolang/treduce/internal/tree"
)

// Result describes a finished reduction session.
type Result struct {
	// OutputPath is the reduced test case, named after the input inside
	// the output directory.
	OutputPath string
	// Text is the final unparsed content.
	Text string
	// Report is the printable session summary.
	Report formatter.Report
}

// Run executes one complete reduction session: parse, transform, search,
// write. outDir receives the reduced file plus the candidate work
// directories, which are removed afterwards unless cfg.KeepArtifacts is
// set.
func Run(ctx context.Context, logger *zap.Logger, cfg Config, inputPath, outDir string) (*Result, error) {
	start := time.Now()
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Test) == 0 {
		return nil, fmt.Errorf("reduce: no test command configured")
	}

	enc, err := lookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reduce: reading input: %w", err)
	}
	src, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("reduce: decoding input as %s: %w", cfg.Encoding, err)
	}

	root, err := parseInput(cfg, inputPath, src)
	if err != nil {
		return nil, err
	}
	logger.Info("initial tree",
		zap.Int("height", tree.Height(root)),
		zap.Ints("shape", tree.Shape(root)),
		zap.Int("nodes", tree.Size(root)),
	)
	origNodes := tree.Size(root)

	withWhitespace := !cfg.BuildHiddenTokens
	root = transform.Apply(logger, root, transform.Flags{
		FlattenRecursion: cfg.Transforms.FlattenRecursion,
		Squeeze:          cfg.Transforms.squeeze(),
		SkipUnremovable:  cfg.Transforms.skipUnremovable(),
		SkipWhitespace:   cfg.Transforms.SkipWhitespace,
		WithWhitespace:   withWhitespace,
	})
	if len(src) > 0 && tree.Unparse(root, withWhitespace) == "" {
		return nil, fmt.Errorf("reduce: internal error: transformed tree unparses to empty text")
	}

	opts, err := cfg.engineOptions()
	if err != nil {
		return nil, err
	}

	testName := filepath.Base(inputPath)
	workRoot := filepath.Join(outDir, "tests")
	if err := os.MkdirAll(workRoot, 0o755); err != nil {
		return nil, fmt.Errorf("reduce: creating work dir: %w", err)
	}

	sub := &tester.Subprocess{
		Command:  cfg.Test,
		WorkDir:  workRoot,
		TestName: testName,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}

	verdicts, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	// The search is pointless (and every commit unsound) unless the input
	// itself reproduces the property.
	initial := tree.Unparse(root, withWhitespace)
	v, err := sub.Test(ctx, tester.Candidate{ID: "initial", Text: initial})
	if err != nil {
		return nil, err
	}
	if v != tester.Interesting {
		return nil, fmt.Errorf("reduce: the original input is not interesting")
	}
	verdicts.Put(cache.Fingerprint(initial), v)

	bar := newProgress()
	engine, err := hdd.New(progressTester{next: sub, bar: bar}, verdicts, logger, opts)
	if err != nil {
		return nil, err
	}
	final, stats, err := engine.Reduce(ctx, root)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(outDir, testName)
	encoded, err := enc.NewEncoder().Bytes([]byte(final))
	if err != nil {
		return nil, fmt.Errorf("reduce: encoding output as %s: %w", cfg.Encoding, err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("reduce: writing output: %w", err)
	}
	logger.Info("result saved", zap.String("path", outPath))

	if fc, ok := verdicts.(*cache.File); ok {
		if err := fc.Save(); err != nil {
			logger.Warn("saving verdict cache failed", zap.Error(err))
		}
	}
	if !cfg.KeepArtifacts {
		if err := os.RemoveAll(workRoot); err != nil {
			logger.Warn("cleaning work dir failed", zap.Error(err))
		}
	}

	return &Result{
		OutputPath: outPath,
		Text:       final,
		Report: formatter.Report{
			Input:      inputPath,
			Output:     outPath,
			OrigBytes:  len(src),
			FinalBytes: len(final),
			OrigNodes:  origNodes,
			FinalNodes: tree.Size(root),
			Passes:     stats.Passes,
			Commits:    stats.Commits,
			Tests:      stats.Tests + 1, // the initial sanity test
			CacheHits:  stats.CacheHits,
			Skipped:    stats.Skipped,
			Duration:   time.Since(start),
		},
	}, nil
}

// ParseInput builds the reduction tree for the configured format without
// running a reduction; the tree subcommand uses it for diagnostics.
func ParseInput(cfg Config, inputPath string, src []byte) (*tree.Node, error) {
	return parseInput(cfg, inputPath, src)
}

func parseInput(cfg Config, inputPath string, src []byte) (*tree.Node, error) {
	adapter, err := parser.ByName(cfg.Format)
	if err != nil {
		return nil, err
	}
	popts := parser.Options{
		Filename:     inputPath,
		HiddenTokens: cfg.BuildHiddenTokens,
	}
	if cfg.Replacements != "" {
		popts.Replacements, err = parser.LoadReplacements(cfg.Replacements)
		if err != nil {
			return nil, err
		}
	}
	root, err := adapter.Parse(src, popts)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("reduce: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		// The index knows the name but has no codec; UTF-8 and ASCII land
		// here and need no transformation.
		enc = encoding.Nop
	}
	return enc, nil
}

func openCache(cfg Config) (cache.Cache, error) {
	if cfg.CacheFile != "" {
		fc, err := cache.NewFile(cfg.CacheFile)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
	return cache.NewMemory(), nil
}

func newProgress() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("testing candidates"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
	)
}

// progressTester advances the progress spinner on every oracle invocation.
type progressTester struct {
	next tester.Tester
	bar  *progressbar.ProgressBar
}

func (p progressTester) Test(ctx context.Context, cand tester.Candidate) (tester.Verdict, error) {
	defer func() { _ = p.bar.Add(1) }()
	return p.next.Test(ctx, cand)
}
