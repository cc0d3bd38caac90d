package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/stages/fingerprint"
	"github.com/oxur/tessitura/internal/workflow"
)

func newFingerprintCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Compute acoustic fingerprints for items lacking one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stage := fingerprint.New(a.Catalog, a.Log, force)
			outcome := stage.Execute(context.Background(), "", &workflow.Context{})
			if outcome.Kind == workflow.OutcomeFailed {
				return outcome.Err
			}
			fmt.Println("fingerprint: complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "recompute fingerprints even where one already exists")
	return cmd
}
