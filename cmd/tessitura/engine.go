package main

import (
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/stages/enrich"
	"github.com/oxur/tessitura/internal/stages/harmonize"
	"github.com/oxur/tessitura/internal/workflow"
	"github.com/oxur/tessitura/internal/workflow/statestore"
)

// Workflow ids namespace the pipeline state store: the enrich-only and
// harmonize-only CLI commands each track their own per-item progress
// independently, while "process" drives both stages together as a single
// dependent pair (spec §4.5 "Per-(item, stage) state" is scoped per
// workflow instance, so three workflow ids sharing one state store file
// never collide).
const (
	workflowEnrich    = "enrich"
	workflowHarmonize = "harmonize"
	workflowProcess   = "process"
)

func enrichEngine(a *app, cl *clients, state *statestore.Store) (*workflow.Engine, error) {
	eng := workflow.New(workflowEnrich, state)
	eng.AddStage(enrich.New(a.Catalog, cl.Bibliographic, cl.Encyclopedic, cl.Folksonomy, cl.Marketplace, a.Log))
	if err := eng.Build(); err != nil {
		return nil, err
	}
	return eng, nil
}

func harmonizeEngine(a *app, doc *rules.Document, state *statestore.Store) (*workflow.Engine, error) {
	eng := workflow.New(workflowHarmonize, state)
	eng.AddStage(harmonize.New(a.Catalog, doc, a.Log))
	if err := eng.Build(); err != nil {
		return nil, err
	}
	return eng, nil
}

func processEngine(a *app, cl *clients, doc *rules.Document, state *statestore.Store) (*workflow.Engine, error) {
	eng := workflow.New(workflowProcess, state)
	eng.AddStage(enrich.New(a.Catalog, cl.Bibliographic, cl.Encyclopedic, cl.Folksonomy, cl.Marketplace, a.Log))
	eng.AddStage(harmonize.New(a.Catalog, doc, a.Log), "enrich")
	if err := eng.Build(); err != nil {
		return nil, err
	}
	return eng, nil
}
