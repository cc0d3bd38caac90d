package harmonize

import (
	"context"
	"testing"
	"time"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/provenance"
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestHarmonizeCompleteWhenNoProposals(t *testing.T) {
	st := openTestStore(t)
	doc := &rules.Document{SourcePriority: map[string]int{"MusicBrainz": 5}}
	stage := New(st, doc, nil)

	it := model.NewItem("/music/a.flac", model.FormatFLAC, 0, time.Now())
	if err := st.UpsertItem(it); err != nil {
		t.Fatalf("upsert item: %v", err)
	}

	wctx := &workflow.Context{}
	outcome := stage.Execute(context.Background(), it.ID.String(), wctx)
	if outcome.Kind != workflow.OutcomeComplete {
		t.Fatalf("expected complete, got %v", outcome.Kind)
	}
	if proposals, _ := wctx.Metadata["proposed_tags"].([]rules.Proposal); len(proposals) != 0 {
		t.Fatalf("expected no proposals, got %v", proposals)
	}
}

func TestHarmonizeNeedsReviewWhenProposalsExist(t *testing.T) {
	st := openTestStore(t)
	doc := &rules.Document{
		SourcePriority: map[string]int{"MusicBrainz": 5, "LastFm": 2},
		GenreRules: []rules.GenreRule{
			{
				Name:        "classical",
				MatchAny:    []string{"classical"},
				OutputGenre: "Classical",
				Confidence:  0.8,
			},
		},
	}
	stage := New(st, doc, nil)

	it := model.NewItem("/music/b.flac", model.FormatFLAC, 0, time.Now())
	if err := st.UpsertItem(it); err != nil {
		t.Fatalf("upsert item: %v", err)
	}
	entity := it.ID.String()
	if err := st.InsertAssertion(provenance.New(entity, "genre", "classical", provenance.SourceMusicBrainz).WithConfidence(0.9)); err != nil {
		t.Fatalf("insert assertion: %v", err)
	}

	wctx := &workflow.Context{}
	outcome := stage.Execute(context.Background(), entity, wctx)
	if outcome.Kind != workflow.OutcomeNeedsReview {
		t.Fatalf("expected needs_review, got %v", outcome.Kind)
	}
	proposals, ok := wctx.Metadata["proposed_tags"].([]rules.Proposal)
	if !ok || len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %v", wctx.Metadata["proposed_tags"])
	}
	if proposals[0].Value != "Classical" {
		t.Fatalf("unexpected proposal value %q", proposals[0].Value)
	}
}

func TestHintsExtractsComposerAndYear(t *testing.T) {
	assertions := []provenance.Assertion{
		provenance.New("e1", "composer", "Miles Davis", provenance.SourceMusicBrainz),
		provenance.New("e1", "year", 1959, provenance.SourceDiscogs),
	}
	composer, year := hints(assertions)
	if composer != "Miles Davis" || year != 1959 {
		t.Fatalf("got composer=%q year=%d", composer, year)
	}
}
