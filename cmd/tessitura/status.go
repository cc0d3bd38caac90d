package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report catalog and workflow progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := a.Catalog.ListItems()
			if err != nil {
				return err
			}
			identified, err := a.Catalog.ListIdentifiedItems()
			if err != nil {
				return err
			}
			withoutFP, err := a.Catalog.ListItemsWithoutFingerprint()
			if err != nil {
				return err
			}
			fmt.Printf("catalog: %d items (%d identified, %d unidentified, %d without fingerprint)\n",
				len(all), len(identified), len(all)-len(identified), len(withoutFP))

			doc, err := loadRules(a.Config)
			if err != nil {
				return err
			}
			cl, err := buildClients(a.Config)
			if err != nil {
				return err
			}
			state, err := openStateStore(a.Config)
			if err != nil {
				return err
			}
			defer state.Close()

			eng, err := processEngine(a, cl, doc, state)
			if err != nil {
				return err
			}
			summary, err := eng.Status(context.Background())
			if err != nil {
				return err
			}
			printStatus(summary)
			return nil
		},
	}
}
