package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/oxur/tessitura/internal/tesserr"
	"github.com/oxur/tessitura/internal/workflow/statestore"
)

// EventKind is one of the four progress notifications the engine emits
// (spec §4.5 "Events").
type EventKind string

const (
	EventStageStarted     EventKind = "stage_started"
	EventStageCompleted   EventKind = "stage_completed"
	EventStageFailed      EventKind = "stage_failed"
	EventStageNeedsReview EventKind = "stage_needs_review"
)

// Event is published on the engine's broadcast channel for progress UIs.
type Event struct {
	Kind      EventKind
	ItemID    string
	StageName string
	Err       error
}

// Engine composes registered Stages into a DAG and advances individual
// work items through it, persisting progress to a Store (spec §4.5).
type Engine struct {
	workflowID string
	stages     map[string]Stage
	deps       map[string][]string
	order      []string // topological order, computed once all stages are registered
	state      *statestore.Store

	mu          sync.RWMutex
	subscribers []chan Event
}

// New returns an Engine identified by workflowID, persisting state to
// state.
func New(workflowID string, state *statestore.Store) *Engine {
	return &Engine{
		workflowID: workflowID,
		stages:     make(map[string]Stage),
		deps:       make(map[string][]string),
		state:      state,
	}
}

// AddStage registers stage, optionally depending on the named stages
// having already reached "complete". Build returns an error if this
// introduces a cycle or a dependency on an unknown stage; call it after
// every AddStage call has been made.
func (e *Engine) AddStage(stage Stage, dependsOn ...string) {
	e.stages[stage.Name()] = stage
	e.deps[stage.Name()] = dependsOn
}

// Build validates the registered stage graph and fixes its topological
// execution order. It must be called once, after all AddStage calls and
// before the first Advance.
func (e *Engine) Build() error {
	if err := cycleCheck(e.stages, e.deps); err != nil {
		return err
	}

	var order []string
	visited := make(map[string]bool, len(e.stages))
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, dep := range e.deps[name] {
			visit(dep)
		}
		order = append(order, name)
	}

	names := make([]string, 0, len(e.stages))
	for name := range e.stages {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic iteration when dependencies don't otherwise constrain order
	for _, name := range names {
		visit(name)
	}

	e.order = order
	return nil
}

// Subscribe returns a channel of future events. The channel is buffered;
// if a subscriber falls behind, further events for it are dropped rather
// than blocking the pipeline (spec §4.5 "Events").
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) publish(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Advance drives item to its next terminal state: it computes the
// frontier of ready stages and runs them in dependency order, stopping at
// the first needs-review or failed outcome (spec §4.5 "Advancement
// algorithm").
func (e *Engine) Advance(ctx context.Context, itemID string) error {
	if err := e.state.ReconcileRunning(e.workflowID); err != nil {
		return err
	}

	for _, name := range e.order {
		key := statestore.Key{WorkflowID: e.workflowID, ItemID: itemID, StageName: name}
		rec, err := e.state.Get(key)
		if err != nil {
			return err
		}
		if rec.Status == statestore.StatusComplete || rec.Status == statestore.StatusNeedsReview {
			continue
		}

		ready, err := e.dependenciesComplete(itemID, name)
		if err != nil {
			return err
		}
		if !ready {
			return nil // this item cannot proceed further this call
		}

		done, err := e.runStage(ctx, itemID, name)
		if err != nil {
			return err
		}
		if !done {
			return nil // needs-review or failed: stop advancing this item
		}
	}
	return nil
}

// AdvanceItem is Advance keyed by a workflow.Item rather than a bare
// string, the typed entry point SPEC_FULL.md's WorkItem abstraction
// calls for (originally `tessitura-etl/src/work_item.rs`).
func (e *Engine) AdvanceItem(ctx context.Context, item Item) error {
	return e.Advance(ctx, item.ItemID())
}

// StageSummary is the per-stage status tally reported by Status.
type StageSummary struct {
	StageName string
	Counts    map[statestore.Status]int
}

// Status returns, for each registered stage in topological order, a
// tally of how many (item, stage) rows currently sit in each status.
// This backs the CLI `status` command (SPEC_FULL.md supplemented
// feature 6: "status is a read path over the workflow state store").
func (e *Engine) Status(ctx context.Context) ([]StageSummary, error) {
	records, err := e.state.ListAll(e.workflowID)
	if err != nil {
		return nil, err
	}

	byStage := make(map[string]map[statestore.Status]int, len(e.order))
	for _, name := range e.order {
		byStage[name] = make(map[statestore.Status]int)
	}
	for _, rec := range records {
		if rec.SubtaskName != "" {
			continue // subtask rows roll up into their parent stage's own row
		}
		counts, ok := byStage[rec.StageName]
		if !ok {
			continue
		}
		counts[rec.Status]++
	}

	out := make([]StageSummary, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, StageSummary{StageName: name, Counts: byStage[name]})
	}
	return out, nil
}

func (e *Engine) dependenciesComplete(itemID, stageName string) (bool, error) {
	for _, dep := range e.deps[stageName] {
		rec, err := e.state.Get(statestore.Key{WorkflowID: e.workflowID, ItemID: itemID, StageName: dep})
		if err != nil {
			return false, err
		}
		if rec.Status != statestore.StatusComplete {
			return false, nil
		}
	}
	return true, nil
}

// runStage executes one stage to its outcome, persisting state and
// publishing events. It returns done=true when the item may continue to
// the next stage (i.e. the stage reached "complete").
func (e *Engine) runStage(ctx context.Context, itemID, stageName string) (bool, error) {
	stage, ok := e.stages[stageName]
	if !ok {
		return false, tesserr.InvalidWorkflow("unknown stage " + stageName)
	}
	key := statestore.Key{WorkflowID: e.workflowID, ItemID: itemID, StageName: stageName}

	if err := e.state.Set(key, statestore.StatusRunning, ""); err != nil {
		return false, err
	}
	e.publish(Event{Kind: EventStageStarted, ItemID: itemID, StageName: stageName})

	wctx := &Context{Metadata: make(map[string]any)}
	outcome := stage.Execute(ctx, itemID, wctx)

	switch outcome.Kind {
	case OutcomeComplete:
		if err := e.state.Set(key, statestore.StatusComplete, ""); err != nil {
			return false, err
		}
		e.publish(Event{Kind: EventStageCompleted, ItemID: itemID, StageName: stageName})
		return true, nil

	case OutcomeFanOut:
		return e.runFanOut(ctx, itemID, stageName, stage, outcome.Subtasks)

	case OutcomeNeedsReview:
		if err := e.state.Set(key, statestore.StatusNeedsReview, ""); err != nil {
			return false, err
		}
		e.publish(Event{Kind: EventStageNeedsReview, ItemID: itemID, StageName: stageName})
		return false, nil

	case OutcomeFailed:
		msg := ""
		if outcome.Err != nil {
			msg = outcome.Err.Error()
		}
		if err := e.state.Set(key, statestore.StatusFailed, msg); err != nil {
			return false, err
		}
		e.publish(Event{Kind: EventStageFailed, ItemID: itemID, StageName: stageName, Err: outcome.Err})
		return false, nil

	default:
		return false, tesserr.InvalidWorkflow("stage " + stageName + " returned unknown outcome")
	}
}

// runFanOut creates pending subtask rows, invokes Execute once per
// subtask concurrently, and marks the parent stage complete once every
// subtask is complete (spec §4.5 "fan-out(subtasks)"). A subtask that was
// already complete on a prior run (crash resume) is not re-invoked.
func (e *Engine) runFanOut(ctx context.Context, itemID, stageName string, stage Stage, subtasks []string) (bool, error) {
	parentKey := statestore.Key{WorkflowID: e.workflowID, ItemID: itemID, StageName: stageName}

	var wg sync.WaitGroup
	errs := make([]error, len(subtasks))
	for i, sub := range subtasks {
		subKey := statestore.Key{WorkflowID: e.workflowID, ItemID: itemID, StageName: stageName, SubtaskName: sub}
		rec, err := e.state.Get(subKey)
		if err != nil {
			return false, err
		}
		if rec.Status == statestore.StatusComplete {
			continue
		}
		if err := e.state.Set(subKey, statestore.StatusPending, ""); err != nil {
			return false, err
		}

		wg.Add(1)
		go func(i int, sub string, subKey statestore.Key) {
			defer wg.Done()
			if err := e.state.Set(subKey, statestore.StatusRunning, ""); err != nil {
				errs[i] = err
				return
			}
			e.publish(Event{Kind: EventStageStarted, ItemID: itemID, StageName: stageName + "/" + sub})

			wctx := &Context{Subtask: sub, Metadata: make(map[string]any)}
			outcome := stage.Execute(ctx, itemID, wctx)

			switch outcome.Kind {
			case OutcomeComplete:
				errs[i] = e.state.Set(subKey, statestore.StatusComplete, "")
				e.publish(Event{Kind: EventStageCompleted, ItemID: itemID, StageName: stageName + "/" + sub})
			case OutcomeFailed:
				msg := ""
				if outcome.Err != nil {
					msg = outcome.Err.Error()
				}
				errs[i] = e.state.Set(subKey, statestore.StatusFailed, msg)
				e.publish(Event{Kind: EventStageFailed, ItemID: itemID, StageName: stageName + "/" + sub, Err: outcome.Err})
			default:
				errs[i] = tesserr.InvalidWorkflow("subtask " + sub + " returned a non-terminal outcome")
			}
		}(i, sub, subKey)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return false, err
		}
	}

	subRecords, err := e.state.ListSubtasks(e.workflowID, itemID, stageName)
	if err != nil {
		return false, err
	}
	for _, rec := range subRecords {
		if rec.Status != statestore.StatusComplete {
			return false, nil // a subtask failed; parent stays non-terminal this call
		}
	}

	if err := e.state.Set(parentKey, statestore.StatusComplete, ""); err != nil {
		return false, err
	}
	e.publish(Event{Kind: EventStageCompleted, ItemID: itemID, StageName: stageName})
	return true, nil
}
