package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the harmonization rules document (spec sec.6)",
	}
	cmd.AddCommand(newRulesInitCmd(), newRulesPathCmd(), newRulesEditCmd(), newRulesValidateCmd())
	return cmd
}

func newRulesInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter rules document if none exists yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.RulesPath); err == nil {
				fmt.Printf("rules: %s already exists\n", cfg.RulesPath)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(cfg.RulesPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfg.RulesPath, []byte(rules.Example()), 0o644); err != nil {
				return err
			}
			fmt.Printf("rules: wrote %s\n", cfg.RulesPath)
			return nil
		},
	}
}

func newRulesPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved rules document path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.RulesPath)
			return nil
		},
	}
}

func newRulesEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the rules document in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return openInEditor(cfg.RulesPath)
		},
	}
}

func newRulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the rules document and check its structural invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, err := rules.Load(cfg.RulesPath)
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			fmt.Printf("rules: %s is valid (%d genre, %d period, %d instrument rules)\n",
				cfg.RulesPath, len(doc.GenreRules), len(doc.PeriodRules), len(doc.InstrumentRules))
			return nil
		},
	}
}
