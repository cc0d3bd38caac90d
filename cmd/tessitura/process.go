package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/stages/fingerprint"
	"github.com/oxur/tessitura/internal/stages/identify"
	"github.com/oxur/tessitura/internal/stages/scan"
	"github.com/oxur/tessitura/internal/workflow"
)

// newProcessCmd drives the full data flow of spec §2 ("scan then
// fingerprint then identify then enrich then harmonize") in one call.
// --resume skips the (idempotent, but potentially slow) directory walk
// and goes straight to fingerprint/identify/enrich/harmonize, which are
// already incremental over whatever the catalog currently holds.
func newProcessCmd() *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "process <dir>",
		Short: "Run scan, fingerprint, identify, enrich, and harmonize in sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()

			if !resume {
				scanStage := scan.New(a.Catalog, a.Log)
				if outcome := scanStage.Execute(ctx, args[0], &workflow.Context{}); outcome.Kind == workflow.OutcomeFailed {
					return outcome.Err
				}
				a.Log.Section.Println("scan complete")
			}

			fpStage := fingerprint.New(a.Catalog, a.Log, false)
			if outcome := fpStage.Execute(ctx, "", &workflow.Context{}); outcome.Kind == workflow.OutcomeFailed {
				return outcome.Err
			}
			a.Log.Section.Println("fingerprint complete")

			cl, err := buildClients(a.Config)
			if err != nil {
				return err
			}

			idStage := identify.New(a.Catalog, cl.AcoustID, cl.Bibliographic, a.Log)
			if outcome := idStage.Execute(ctx, "", &workflow.Context{}); outcome.Kind == workflow.OutcomeFailed {
				return outcome.Err
			}
			a.Log.Section.Println("identify complete")

			doc, err := loadRules(a.Config)
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

			items, err := a.Catalog.ListIdentifiedItems()
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := eng.AdvanceItem(ctx, it); err != nil {
					return err
				}
			}
			a.Log.Section.Println("enrich/harmonize advanced for all identified items")

			summary, err := eng.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "skip the directory walk and resume from wherever the catalog left off")
	return cmd
}

func printStatus(summary []workflow.StageSummary) {
	for _, s := range summary {
		fmt.Printf("%-12s pending=%d running=%d complete=%d needs_review=%d failed=%d\n",
			s.StageName,
			s.Counts["pending"], s.Counts["running"], s.Counts["complete"],
			s.Counts["needs_review"], s.Counts["failed"])
	}
}
