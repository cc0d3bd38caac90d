// Package fingerprint implements the fingerprint stage (spec §4.4.2):
// compute and store an acoustic fingerprint for every Item lacking one.
package fingerprint

import (
	"context"

	"github.com/oxur/tessitura/internal/audio"
	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow"
)

// Stage fingerprints catalog Items. It ignores its work-item id rather
// than treating it as a single Item id: fingerprinting is run as a batch
// over every Item currently missing a fingerprint.
type Stage struct {
	Store *store.Store
	Log   *logging.Logger
	Force bool // recompute fingerprints even where one already exists
}

// New returns a fingerprint Stage.
func New(st *store.Store, log *logging.Logger, force bool) *Stage {
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{Store: st, Log: log, Force: force}
}

// Name implements workflow.Stage.
func (s *Stage) Name() string { return "fingerprint" }

// Execute implements workflow.Stage.
func (s *Stage) Execute(_ context.Context, _ string, _ *workflow.Context) workflow.Outcome {
	items, err := s.pending()
	if err != nil {
		return workflow.Failed(err)
	}

	for _, it := range items {
		if it.Size == 0 {
			continue // 0-byte placeholder: nothing to decode
		}

		fp, err := audio.Compute(it.Path)
		if err != nil {
			s.Log.Warning.Printf("fingerprint: %s: %v", it.Path, err)
			continue
		}

		it.Fingerprint = fp.Encoded
		if s.Force || fp.DurationSecs > it.DurationSecs {
			it.DurationSecs = fp.DurationSecs
		}
		if err := s.Store.UpsertItem(it); err != nil {
			s.Log.Warning.Printf("fingerprint: persist %s: %v", it.Path, err)
		}
	}
	return workflow.Complete()
}

func (s *Stage) pending() ([]model.Item, error) {
	if s.Force {
		return s.Store.ListItems()
	}
	return s.Store.ListItemsWithoutFingerprint()
}
