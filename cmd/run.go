package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/treduce/formatter"
	"github.com/gnolang/treduce/reduce"
)

// run command flags
var (
	outDir            string
	format            string
	preset            string
	variant           string
	noStar            bool
	granularity       int
	workers           int
	testTimeout       time.Duration
	inputEncoding     string
	buildHiddenTokens bool
	flattenRecursion  bool
	noSqueeze         bool
	noSkipUnremovable bool
	skipWhitespace    bool
	keepArtifacts     bool
	replacementsFile  string
	cacheFile         string
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <input> -- <test command...>",
	Short: "Reduce a test case against an interestingness test command",
	Long: `Reduce the input file to a minimal variant for which the test command
still exits with status 0. The candidate file path is appended to the
command as its last argument and exported as TREDUCE_TEST.

Example:
  treduce run --format go crash.go -- ./still-crashes.sh`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]
		testCommand := args[1:]

		cfg, err := buildRunConfig(testCommand)
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result, err := reduce.Run(ctx, logger, cfg, input, outDir)
		if err != nil {
			logger.Fatal("Reduction failed", zap.Error(err))
		}
		fmt.Print(formatter.Format(result.Report))
	},
}

func init() {
	runCmd.Flags().StringVarP(&outDir, "out", "o", "reduced", "Output directory for the result and work files")
	runCmd.Flags().StringVar(&format, "format", "", "Input format (go, json, lines)")
	runCmd.Flags().StringVar(&preset, "hdd", "", "Phase preset (full, coarse, coarse-full, hoist)")
	runCmd.Flags().StringVar(&variant, "variant", "", "Algorithm variant (hdd, hddr)")
	runCmd.Flags().BoolVar(&noStar, "no-star", false, "Run each traversal only once instead of to a fixpoint")
	runCmd.Flags().IntVar(&granularity, "granularity", 0, "Initial ddmin granularity (minimum 2)")
	runCmd.Flags().IntVarP(&workers, "jobs", "j", 0, "Concurrent candidate tests per round")
	runCmd.Flags().DurationVar(&testTimeout, "test-timeout", 0, "Timeout per test command invocation")
	runCmd.Flags().StringVar(&inputEncoding, "encoding", "", "IANA charset of the input (default utf-8)")
	runCmd.Flags().BoolVar(&buildHiddenTokens, "build-hidden-tokens", false, "Build whitespace/comment tokens into the tree")
	runCmd.Flags().BoolVar(&flattenRecursion, "flatten-recursion", false, "Flatten recurring blocks of left/right-recursive rules")
	runCmd.Flags().BoolVar(&noSqueeze, "no-squeeze-tree", false, "Don't squeeze rule chains in the tree representation")
	runCmd.Flags().BoolVar(&noSkipUnremovable, "no-skip-unremovable", false, "Don't hide unremovable nodes from the search")
	runCmd.Flags().BoolVar(&skipWhitespace, "skip-whitespace", false, "Hide whitespace tokens from the search")
	runCmd.Flags().BoolVar(&keepArtifacts, "keep-artifacts", false, "Keep materialized candidate files after the run")
	runCmd.Flags().StringVar(&replacementsFile, "replacements", "", "YAML table of minimal replacements per rule/token kind")
	runCmd.Flags().StringVar(&cacheFile, "cache-file", "", "Persist verdicts to this file across runs")
}

// buildRunConfig merges the config file with the command line; flags win.
func buildRunConfig(testCommand []string) (reduce.Config, error) {
	cfg, err := reduce.LoadConfig(cfgFile)
	if err != nil {
		return cfg, err
	}
	if len(testCommand) > 0 {
		cfg.Test = testCommand
	}
	if len(cfg.Test) == 0 {
		return cfg, fmt.Errorf("no test command given (append it after --)")
	}
	if format != "" {
		cfg.Format = format
	}
	if preset != "" {
		cfg.Phases, err = reduce.PhasePreset(preset)
		if err != nil {
			return cfg, err
		}
	}
	if variant != "" {
		cfg.Variant = variant
	}
	if noStar {
		f := false
		cfg.Star = &f
	}
	if granularity > 0 {
		cfg.Granularity = granularity
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if testTimeout > 0 {
		cfg.Timeout = testTimeout
	}
	if inputEncoding != "" {
		cfg.Encoding = inputEncoding
	}
	if buildHiddenTokens {
		cfg.BuildHiddenTokens = true
	}
	if flattenRecursion {
		cfg.Transforms.FlattenRecursion = true
	}
	if noSqueeze {
		f := false
		cfg.Transforms.Squeeze = &f
	}
	if noSkipUnremovable {
		f := false
		cfg.Transforms.SkipUnremovable = &f
	}
	if skipWhitespace {
		cfg.Transforms.SkipWhitespace = true
	}
	if keepArtifacts {
		cfg.KeepArtifacts = true
	}
	if replacementsFile != "" {
		cfg.Replacements = replacementsFile
	}
	if cacheFile != "" {
		cfg.CacheFile = cacheFile
	}
	if cfg.Replacements != "" {
		if _, err := os.Stat(cfg.Replacements); err != nil {
			return cfg, fmt.Errorf("replacements file: %w", err)
		}
	}
	return cfg, nil
}
