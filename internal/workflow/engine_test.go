package workflow

import (
	"context"
	"testing"

	"github.com/oxur/tessitura/internal/workflow/statestore"
)

type fakeStage struct {
	name     string
	outcomes []Outcome // one per call; the last is reused once exhausted
	calls    int
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Execute(_ context.Context, _ string, wctx *Context) Outcome {
	f.calls++
	if wctx.Subtask != "" {
		return Complete()
	}
	i := f.calls - 1
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	return f.outcomes[i]
}

func newTestEngine(t *testing.T) (*Engine, *statestore.Store) {
	t.Helper()
	ss, err := statestore.Open(":memory:")
	if err != nil {
		t.Fatalf("statestore.Open: %v", err)
	}
	t.Cleanup(func() { ss.Close() })
	return New("wf-1", ss), ss
}

func TestAdvanceRunsStagesInDependencyOrder(t *testing.T) {
	e, ss := newTestEngine(t)

	scan := &fakeStage{name: "scan", outcomes: []Outcome{Complete()}}
	fingerprint := &fakeStage{name: "fingerprint", outcomes: []Outcome{Complete()}}
	e.AddStage(scan)
	e.AddStage(fingerprint, "scan")
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := e.Advance(context.Background(), "item-1"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if scan.calls != 1 || fingerprint.calls != 1 {
		t.Fatalf("got scan=%d fingerprint=%d calls, want 1/1", scan.calls, fingerprint.calls)
	}

	rec, err := ss.Get(statestoreKey("wf-1", "item-1", "fingerprint"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != statestore.StatusComplete {
		t.Errorf("got status %q, want complete", rec.Status)
	}
}

func TestAdvanceStopsAtNeedsReview(t *testing.T) {
	e, _ := newTestEngine(t)

	identify := &fakeStage{name: "identify", outcomes: []Outcome{Complete()}}
	harmonize := &fakeStage{name: "harmonize", outcomes: []Outcome{NeedsReview()}}
	e.AddStage(identify)
	e.AddStage(harmonize, "identify")
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := e.Advance(context.Background(), "item-1"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := e.Advance(context.Background(), "item-1"); err != nil {
		t.Fatalf("second Advance: %v", err)
	}

	if identify.calls != 1 {
		t.Errorf("got %d identify calls, want 1 (not re-invoked after needs-review)", identify.calls)
	}
	if harmonize.calls != 1 {
		t.Errorf("got %d harmonize calls, want 1", harmonize.calls)
	}
}

func TestAdvanceIsIdempotentOnceComplete(t *testing.T) {
	e, _ := newTestEngine(t)

	stage := &fakeStage{name: "scan", outcomes: []Outcome{Complete()}}
	e.AddStage(stage)
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := e.Advance(context.Background(), "item-1"); err != nil {
			t.Fatalf("Advance #%d: %v", i, err)
		}
	}
	if stage.calls != 1 {
		t.Errorf("got %d calls across 3 advances, want 1 (spec §8 workflow idempotence)", stage.calls)
	}
}

func TestBuildRejectsCycles(t *testing.T) {
	e, _ := newTestEngine(t)

	a := &fakeStage{name: "a", outcomes: []Outcome{Complete()}}
	b := &fakeStage{name: "b", outcomes: []Outcome{Complete()}}
	e.AddStage(a, "b")
	e.AddStage(b, "a")

	if err := e.Build(); err == nil {
		t.Fatal("got nil error, want cycle detection failure")
	}
}

func TestFanOutRunsSubtasksConcurrentlyAndCompletesParent(t *testing.T) {
	e, ss := newTestEngine(t)

	enrich := &fakeStage{name: "enrich", outcomes: []Outcome{FanOut("bibliographic", "encyclopedic")}}
	e.AddStage(enrich)
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := e.Advance(context.Background(), "item-1"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	subs, err := ss.ListSubtasks("wf-1", "item-1", "enrich")
	if err != nil {
		t.Fatalf("ListSubtasks: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d subtask records, want 2", len(subs))
	}
	for _, sub := range subs {
		if sub.Status != statestore.StatusComplete {
			t.Errorf("subtask %q status %q, want complete", sub.SubtaskName, sub.Status)
		}
	}
	rec, err := ss.Get(statestoreKey("wf-1", "item-1", "enrich"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != statestore.StatusComplete {
		t.Errorf("got parent status %q, want complete", rec.Status)
	}
}

func statestoreKey(workflowID, itemID, stage string) statestore.Key {
	return statestore.Key{WorkflowID: workflowID, ItemID: itemID, StageName: stage}
}
