package harmonize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/sourceclients/folksonomy"
	"github.com/oxur/tessitura/internal/stages/enrich"
	"github.com/oxur/tessitura/internal/workflow"
)

// TestEnrichThenHarmonizeFolksonomyTag drives the real enrich stage's
// folksonomy subtask against a fake Last.fm server, then feeds whatever it
// persisted into the harmonize stage. It exercises two things the hand-built
// fixture in TestHarmonizeNeedsReviewWhenProposalsExist never touched: that
// enrich assertions are keyed to the Item id (not the Expression/
// Manifestation id the subtask happened to look up), and that a non-string
// "tag" assertion value still reaches a genre rule's substring match.
func TestEnrichThenHarmonizeFolksonomyTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("method") {
		case "track.getTopTags":
			w.Write([]byte(`{"toptags":{"tag":[{"name":"classical","count":"42"},{"name":"quiet","count":"3"}]}}`))
		case "artist.getTopTags":
			w.Write([]byte(`{"toptags":{"tag":[]}}`))
		default:
			t.Fatalf("unexpected method %q", r.URL.Query().Get("method"))
		}
	}))
	defer server.Close()

	folk := folksonomy.New("test-key")
	folk.Endpoint = server.URL + "/"

	st := openTestStore(t)
	it := model.NewItem("/music/c.flac", model.FormatFLAC, 0, time.Now())
	it.Tags.Artist = "Herbert von Karajan"
	it.Tags.Title = "Symphony No. 5"
	if err := st.UpsertItem(it); err != nil {
		t.Fatalf("upsert item: %v", err)
	}

	enrichStage := enrich.New(st, nil, nil, folk, nil, nil)

	fanOut := enrichStage.Execute(context.Background(), it.ID.String(), &workflow.Context{})
	if fanOut.Kind != workflow.OutcomeFanOut {
		t.Fatalf("expected fan_out, got %v", fanOut.Kind)
	}
	if len(fanOut.Subtasks) != 1 || fanOut.Subtasks[0] != "folksonomy" {
		t.Fatalf("expected only the folksonomy subtask enabled, got %v", fanOut.Subtasks)
	}

	outcome := enrichStage.Execute(context.Background(), it.ID.String(), &workflow.Context{Subtask: "folksonomy"})
	if outcome.Kind != workflow.OutcomeComplete {
		t.Fatalf("expected folksonomy subtask to complete, got %v", outcome.Kind)
	}

	assertions, err := st.ListAssertionsByEntity(it.ID.String())
	if err != nil {
		t.Fatalf("list assertions: %v", err)
	}
	if len(assertions) == 0 {
		t.Fatal("expected enrich to have written assertions keyed to the item id, got none")
	}
	for _, a := range assertions {
		if a.EntityID != it.ID.String() {
			t.Fatalf("assertion keyed to %q, want item id %q", a.EntityID, it.ID.String())
		}
	}

	doc := &rules.Document{
		SourcePriority: map[string]int{"LastFm": 2},
		GenreRules: []rules.GenreRule{
			{
				Name:        "classical-tag",
				MatchAny:    []string{"classical"},
				OutputGenre: "Classical",
				Confidence:  0.8,
			},
		},
	}
	harmonizeStage := New(st, doc, nil)

	wctx := &workflow.Context{}
	harmonizeOutcome := harmonizeStage.Execute(context.Background(), it.ID.String(), wctx)
	if harmonizeOutcome.Kind != workflow.OutcomeNeedsReview {
		t.Fatalf("expected needs_review, got %v", harmonizeOutcome.Kind)
	}

	proposals, ok := wctx.Metadata["proposed_tags"].([]rules.Proposal)
	if !ok || len(proposals) != 1 {
		t.Fatalf("expected one genre proposal derived from the folksonomy tag, got %v", wctx.Metadata["proposed_tags"])
	}
	if proposals[0].Field != "genre" || proposals[0].Value != "Classical" {
		t.Fatalf("unexpected proposal %+v", proposals[0])
	}
}
