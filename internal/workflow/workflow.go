// Package workflow composes Stages into a DAG and drives individual work
// items through it to a terminal state, durably, one "advance" call at a
// time (spec §4.5).
//
// No repo in the retrieval pack ships a workflow/DAG engine; this is
// grounded on the teacher's own Stage contract (demlo.go's pipeline of
// Init/Run/Close stages applied to one track at a time) generalized from
// a fixed in-process pipeline into a named, dependency-ordered graph with
// durable per-item state and fan-out subtasks.
package workflow

import (
	"context"

	"github.com/oxur/tessitura/internal/tesserr"
)

// OutcomeKind is the closed set of results a Stage may return (spec
// §4.4).
type OutcomeKind string

const (
	OutcomeComplete    OutcomeKind = "complete"
	OutcomeFanOut      OutcomeKind = "fan_out"
	OutcomeNeedsReview OutcomeKind = "needs_review"
	OutcomeFailed      OutcomeKind = "failed"
)

// Outcome is the result of one Stage.Execute call.
type Outcome struct {
	Kind     OutcomeKind
	Subtasks []string // set when Kind == OutcomeFanOut
	Err      error     // set when Kind == OutcomeFailed
}

// Complete is the outcome produced by an unconditionally successful stage
// invocation.
func Complete() Outcome { return Outcome{Kind: OutcomeComplete} }

// FanOut is the outcome produced by a stage's first invocation when it
// needs to spawn independent subtasks.
func FanOut(subtasks ...string) Outcome { return Outcome{Kind: OutcomeFanOut, Subtasks: subtasks} }

// NeedsReview is the outcome produced when a stage suspends the item for
// external review.
func NeedsReview() Outcome { return Outcome{Kind: OutcomeNeedsReview} }

// Failed is the outcome produced when a stage cannot proceed.
func Failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }

// Context carries the current subtask name (empty on a stage's first
// invocation) and a metadata map (spec §4.4). The engine creates a fresh,
// empty map for every Execute call; the map is not persisted and does not
// carry over between invocations or advance calls.
type Context struct {
	Subtask  string
	Metadata map[string]any
}

// Stage is the single contract every pipeline step implements (spec
// §4.4, §9 "Dynamic dispatch over stages").
type Stage interface {
	Name() string
	Execute(ctx context.Context, itemID string, wctx *Context) Outcome
}

// Item is anything that can be advanced through a workflow: an opaque
// identity.
type Item interface {
	ItemID() string
}

func cycleCheck(stages map[string]Stage, deps map[string][]string) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(stages))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return tesserr.InvalidWorkflow("cycle detected at stage " + name)
		}
		color[name] = gray
		for _, dep := range deps[name] {
			if _, ok := stages[dep]; !ok {
				return tesserr.InvalidWorkflow("stage " + name + " depends on unknown stage " + dep)
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}

	for name := range stages {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
