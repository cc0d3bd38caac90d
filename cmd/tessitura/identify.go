package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/stages/identify"
	"github.com/oxur/tessitura/internal/workflow"
)

func newIdentifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Resolve unidentified items to a recording and materialize its W/E/M/I entities",
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

			stage := identify.New(a.Catalog, cl.AcoustID, cl.Bibliographic, a.Log)
			outcome := stage.Execute(context.Background(), "", &workflow.Context{})
			if outcome.Kind == workflow.OutcomeFailed {
				return outcome.Err
			}
			fmt.Println("identify: complete")
			return nil
		},
	}
}
