package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/stages/harmonize"
	"github.com/oxur/tessitura/internal/workflow/statestore"
)

// newReviewCmd is the thin stand-in for spec §1's "review terminal UI"
// external collaborator: a real TUI would let a human page through
// proposals interactively, but the core-side contract it drives is just
// "list what's needs_review" and "mark an item resumed" (spec GLOSSARY
// "Needs-review": "a separate external actor resumes it"). Proposals are
// recomputed on demand from the stored assertions rather than read back
// from transient stage metadata, since the rules engine is specified as
// a pure function of its inputs (spec §8 property 4).
func newReviewCmd() *cobra.Command {
	var accept string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "List items awaiting review and their proposed tags",
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

			if accept != "" {
				return acceptReview(state, accept)
			}

			records, err := state.ListAll(workflowHarmonize)
			if err != nil {
				return err
			}

			found := 0
			for _, rec := range records {
				if rec.StageName != "harmonize" || rec.Status != statestore.StatusNeedsReview || rec.SubtaskName != "" {
					continue
				}
				found++
				if err := printProposals(a, doc, rec.ItemID); err != nil {
					a.Log.Warning.Printf("review: %s: %v", rec.ItemID, err)
				}
			}
			if found == 0 {
				fmt.Println("review: nothing awaiting review")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&accept, "accept", "", "mark the named item's harmonization reviewed and resume its workflow")
	return cmd
}

func printProposals(a *app, doc *rules.Document, itemID string) error {
	assertions, err := a.Catalog.ListAssertionsByEntity(itemID)
	if err != nil {
		return err
	}
	proposals := harmonize.ComputeProposals(doc, assertions)

	fmt.Printf("item %s:\n", itemID)
	for _, p := range proposals {
		fmt.Printf("  %s = %q (source=%s, rule=%s, confidence=%.2f)\n", p.Field, p.Value, p.Source, p.RuleName, p.Confidence)
		for _, alt := range p.Alternatives {
			fmt.Printf("    alt: %q (source=%s, confidence=%.2f)\n", alt.Value, alt.Source, alt.Confidence)
		}
	}
	return nil
}

// acceptReview resumes itemID's harmonize stage under every workflow id
// that might have paused it ("harmonize" when run standalone, "process"
// when driven by the full pipeline) — idempotent to set on a workflow
// that never touched this item, since Set just writes a row.
func acceptReview(state *statestore.Store, itemID string) error {
	id, err := model.ParseItemID(itemID)
	if err != nil {
		return err
	}
	for _, wf := range []string{workflowHarmonize, workflowProcess} {
		if err := state.Set(statestore.Key{WorkflowID: wf, ItemID: id.String(), StageName: "harmonize"}, statestore.StatusComplete, ""); err != nil {
			return err
		}
	}
	fmt.Printf("review: %s accepted\n", itemID)
	return nil
}
