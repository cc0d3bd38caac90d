package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHarmonizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harmonize",
		Short: "Reduce each identified item's assertions to proposed tags, pausing for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := loadRules(a.Config)
			if err != nil {
				return err
			}
			state, err := openStateStore(a.Config)
			if err != nil {
				return err
			}
			defer state.Close()

			eng, err := harmonizeEngine(a, doc, state)
			if err != nil {
				return err
			}

			items, err := a.Catalog.ListIdentifiedItems()
			if err != nil {
				return err
			}

			ctx := context.Background()
			needsReview := 0
			for _, it := range items {
				if err := eng.AdvanceItem(ctx, it); err != nil {
					return err
				}
			}
			summary, err := eng.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range summary {
				needsReview += s.Counts["needs_review"]
			}
			fmt.Printf("harmonize: complete (%d item(s) awaiting review)\n", needsReview)
			return nil
		},
	}
}
