package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/vocab"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage controlled-vocabulary terms (spec sec.6 vocabulary snapshot)",
	}
	cmd.AddCommand(newVocabLoadCmd(), newVocabStatsCmd())
	return cmd
}

func newVocabLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <snapshot.json>",
		Short: "Load a vocabulary snapshot file, parents before children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			terms, err := vocab.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := a.Catalog.LoadVocabularySnapshot(terms); err != nil {
				return err
			}
			fmt.Printf("vocab: loaded %d term(s)\n", len(terms))
			return nil
		},
	}
}

func newVocabStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the total number of loaded vocabulary terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Catalog.CountVocabularyTerms()
			if err != nil {
				return err
			}
			fmt.Printf("vocab: %d term(s)\n", n)
			return nil
		},
	}
}
