package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/treduce/internal/transform"
	"github.com/gnolang/treduce/internal/tree"
	"github.com/gnolang/treduce/reduce"
)

var (
	treeFormat     string
	treeHidden     bool
	treeTransforms bool
	treeUnparse    bool
)

var treeCmd = &cobra.Command{
	Use:   "tree <input>",
	Short: "Parse an input and print tree diagnostics without reducing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := reduce.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if treeFormat != "" {
			cfg.Format = treeFormat
		}
		if treeHidden {
			cfg.BuildHiddenTokens = true
		}

		src, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatal("Failed to read input", zap.Error(err))
		}
		root, err := reduce.ParseInput(cfg, args[0], src)
		if err != nil {
			logger.Fatal("Failed to parse input", zap.Error(err))
		}
		if treeTransforms {
			transform.Apply(logger, root, transform.Flags{
				FlattenRecursion: cfg.Transforms.FlattenRecursion,
				Squeeze:          cfg.Transforms.Squeeze == nil || *cfg.Transforms.Squeeze,
				SkipUnremovable:  cfg.Transforms.SkipUnremovable == nil || *cfg.Transforms.SkipUnremovable,
				SkipWhitespace:   cfg.Transforms.SkipWhitespace,
				WithWhitespace:   !cfg.BuildHiddenTokens,
			})
		}

		counts := tree.Count(root)
		fmt.Printf("height: %d\n", tree.Height(root))
		fmt.Printf("nodes:  %d (%d rules, %d tokens)\n",
			tree.Size(root), counts[tree.Rule], counts[tree.Token])
		fmt.Printf("shape:  %v\n", tree.Shape(root))
		if treeUnparse {
			fmt.Println(tree.Unparse(root, !cfg.BuildHiddenTokens))
		}
	},
}

func init() {
	treeCmd.Flags().StringVar(&treeFormat, "format", "", "Input format (go, json, lines)")
	treeCmd.Flags().BoolVar(&treeHidden, "build-hidden-tokens", false, "Build whitespace/comment tokens into the tree")
	treeCmd.Flags().BoolVar(&treeTransforms, "transforms", false, "Apply the configured tree transformations first")
	treeCmd.Flags().BoolVar(&treeUnparse, "unparse", false, "Print the unparsed text after the diagnostics")
}
