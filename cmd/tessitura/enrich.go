package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/workflow/statestore"
)

func newEnrichCmd() *cobra.Command {
	var pendingOnly bool
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fan out identified items to the configured source clients and record assertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cl, err := buildClients(a.Config)
			if err != nil {
				return err
			}

			state, err := openStateStore(a.Config)
			if err != nil {
				return err
			}
			defer state.Close()

			eng, err := enrichEngine(a, cl, state)
			if err != nil {
				return err
			}

			items, err := a.Catalog.ListIdentifiedItems()
			if err != nil {
				return err
			}

			ctx := context.Background()
			ran := 0
			for _, it := range items {
				if pendingOnly {
					rec, err := state.Get(statestore.Key{WorkflowID: workflowEnrich, ItemID: it.ID.String(), StageName: "enrich"})
					if err != nil {
						return err
					}
					if rec.Status == statestore.StatusComplete {
						continue
					}
				}
				if err := eng.AdvanceItem(ctx, it); err != nil {
					return err
				}
				ran++
			}
			fmt.Printf("enrich: complete (%d of %d identified items advanced)\n", ran, len(items))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending-only", false, "skip items whose enrichment is already complete")
	return cmd
}
