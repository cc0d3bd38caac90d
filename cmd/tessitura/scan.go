package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/stages/scan"
	"github.com/oxur/tessitura/internal/workflow"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Walk a directory and catalog every recognized audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stage := scan.New(a.Catalog, a.Log)
			outcome := stage.Execute(context.Background(), args[0], &workflow.Context{})
			if outcome.Kind == workflow.OutcomeFailed {
				return outcome.Err
			}
			fmt.Println("scan: complete")
			return nil
		},
	}
}
