package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/treduce/reduce"
)

// initCmd: treduce init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new reducer configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = ".treduce.yaml"
	}

	phases, err := reduce.PhasePreset("full")
	if err != nil {
		return err
	}
	config := reduce.Config{
		Variant:     "hdd",
		Format:      "lines",
		Encoding:    "utf-8",
		Granularity: 2,
		Workers:     1,
		Timeout:     time.Minute,
		Phases:      phases,
	}
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	if err != nil {
		return err
	}

	return nil
}
