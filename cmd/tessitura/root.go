package main

import (
	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/config"
)

// globalFlags mirrors the CLI-flag tier of §6's override precedence
// (flag > env > file > default); loadConfig applies these on top of
// whatever config.Load reads from disk/env.
type globalFlags struct {
	configPath string
	debug      bool
	noColor    bool
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tessitura",
		Short:         "Catalog and harmonize a personal digital audio library",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colorized log output")

	root.AddCommand(
		newScanCmd(),
		newFingerprintCmd(),
		newIdentifyCmd(),
		newEnrichCmd(),
		newHarmonizeCmd(),
		newReviewCmd(),
		newProcessCmd(),
		newStatusCmd(),
		newVocabCmd(),
		newRulesCmd(),
		newConfigCmd(),
	)
	return root
}

// loadConfig reads the config file (or built-in defaults if absent),
// applies env overrides (internal/config's job), then layers the CLI
// flag tier on top (§6 override precedence, highest to lowest: flag >
// env > file > default).
func loadConfig() (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	if flags.noColor {
		cfg.Logging.Color = false
	}
	return cfg, nil
}
