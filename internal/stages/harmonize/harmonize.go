// Package harmonize implements the harmonize stage (spec §4.4.5): reduce
// one Item's accumulated assertions to a set of proposed tags and pause
// for external review whenever any proposal is emitted.
package harmonize

import (
	"context"

	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/provenance"
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow"
)

// Stage reduces an Item's assertion set to proposed tags via the rules
// document. The work-item id is the Item id.
type Stage struct {
	Store *store.Store
	Rules *rules.Document
	Log   *logging.Logger
}

// New returns a harmonize Stage.
func New(st *store.Store, doc *rules.Document, log *logging.Logger) *Stage {
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{Store: st, Rules: doc, Log: log}
}

// Name implements workflow.Stage.
func (s *Stage) Name() string { return "harmonize" }

// Execute implements workflow.Stage.
func (s *Stage) Execute(_ context.Context, itemID string, wctx *workflow.Context) workflow.Outcome {
	assertions, err := s.Store.ListAssertionsByEntity(itemID)
	if err != nil {
		return workflow.Failed(err)
	}

	proposals := ComputeProposals(s.Rules, assertions)

	if wctx.Metadata == nil {
		wctx.Metadata = make(map[string]any)
	}
	wctx.Metadata["proposed_tags"] = proposals

	if len(proposals) == 0 {
		return workflow.Complete()
	}
	// Per spec §4.4.5: any non-empty proposal set pauses for review,
	// whether or not any individual proposal carries alternatives.
	return workflow.NeedsReview()
}

// ComputeProposals applies the genre, instrument, and period rules to
// assertions and returns the combined proposal list. It is a pure
// function of (doc, assertions) (spec §8 property 4: "rules engine
// determinism"), so the review UI recomputes it on demand from the
// durably-stored assertion set rather than needing its own persistence —
// proposals "remain in the context" (§4.4.5) in the sense that they are
// always reproducible from what is already durable.
func ComputeProposals(doc *rules.Document, assertions []provenance.Assertion) []rules.Proposal {
	composer, year := hints(assertions)

	var proposals []rules.Proposal
	proposals = append(proposals, doc.ApplyGenreRules(assertions)...)
	proposals = append(proposals, doc.ApplyInstrumentRules(assertions)...)
	if composer != "" || year != 0 {
		proposals = append(proposals, doc.ApplyPeriodRules(composer, year, sourceOf(assertions))...)
	}
	return proposals
}

// hints scans the assertion set for the composer and composed-year/year
// fields the period rules match against (spec §4.4.5 step 2). No enrich
// subtask currently writes composed_year/year directly, so release_year
// (written by the bibliographic and marketplace subtasks) is accepted too
// rather than leaving the year fallback permanently dead.
func hints(assertions []provenance.Assertion) (composer string, year int) {
	for _, a := range assertions {
		switch a.Field {
		case "composer":
			if v, ok := a.Value.(string); ok && v != "" {
				composer = v
			}
		case "composed_year", "year", "release_year":
			switch v := a.Value.(type) {
			case int:
				year = v
			case float64:
				year = int(v)
			}
		}
	}
	return composer, year
}

// sourceOf picks a representative source to attribute a period proposal
// to: the source of the first composer or year assertion in the set.
func sourceOf(assertions []provenance.Assertion) provenance.Source {
	for _, a := range assertions {
		if a.Field == "composer" || a.Field == "composed_year" || a.Field == "year" || a.Field == "release_year" {
			return a.Source
		}
	}
	return provenance.SourceUser
}
