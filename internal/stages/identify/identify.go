// Package identify implements the identify stage (spec §4.4.3): resolve
// each unidentified Item to a recording, then materialize the
// Work/Expression/Manifestation/Artist entities that recording implies.
package identify

import (
	"context"

	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/sourceclients/acoustid"
	"github.com/oxur/tessitura/internal/sourceclients/bibliographic"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/stringnorm"
	"github.com/oxur/tessitura/internal/workflow"
)

// Stage resolves unidentified Items against the acoustic-ID and
// bibliographic source clients. Like scan and fingerprint, it runs as a
// batch over every unidentified Item rather than one per work-item id.
type Stage struct {
	Store         *store.Store
	AcoustID      *acoustid.Client // nil when no acoustid_api_key is configured
	Bibliographic *bibliographic.Client
	Log           *logging.Logger
}

// New returns an identify Stage.
func New(st *store.Store, acoustID *acoustid.Client, bib *bibliographic.Client, log *logging.Logger) *Stage {
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{Store: st, AcoustID: acoustID, Bibliographic: bib, Log: log}
}

// Name implements workflow.Stage.
func (s *Stage) Name() string { return "identify" }

// Execute implements workflow.Stage.
func (s *Stage) Execute(ctx context.Context, _ string, _ *workflow.Context) workflow.Outcome {
	items, err := s.Store.ListUnidentifiedItems()
	if err != nil {
		return workflow.Failed(err)
	}

	for _, it := range items {
		if err := s.identifyOne(ctx, it); err != nil {
			s.Log.Warning.Printf("identify: %s: %v", it.Path, err)
		}
	}
	return workflow.Complete()
}

func (s *Stage) identifyOne(ctx context.Context, it model.Item) error {
	recordingID := s.lookupByFingerprint(ctx, it)
	if recordingID == "" {
		recordingID = s.lookupByMetadata(ctx, it)
	}
	if recordingID == "" {
		return nil // insufficient data to identify this item
	}

	return s.materialize(ctx, it, recordingID)
}

// lookupByFingerprint performs the fingerprint-first lookup (spec
// §4.4.3 step 1).
func (s *Stage) lookupByFingerprint(ctx context.Context, it model.Item) string {
	if s.AcoustID == nil || it.Fingerprint == "" || it.DurationSecs == 0 {
		return ""
	}

	results, err := s.AcoustID.Lookup(ctx, it.Fingerprint, int(it.DurationSecs))
	if err != nil || len(results) == 0 {
		return ""
	}
	if len(results[0].Recordings) == 0 {
		return ""
	}
	return results[0].Recordings[0].ID
}

// lookupByMetadata tries the three bibliographic search queries in order
// (spec §4.4.3 step 2).
func (s *Stage) lookupByMetadata(ctx context.Context, it model.Item) string {
	if it.Tags.Artist == "" || it.Tags.Title == "" {
		return ""
	}

	queries := []struct{ title, album string }{
		{it.Tags.Title, it.Tags.Album},
		{stringnorm.CleanTitle(it.Tags.Title), it.Tags.Album},
		{stringnorm.CleanTitle(it.Tags.Title), ""},
	}

	for _, q := range queries {
		candidates, err := s.Bibliographic.SearchRecording(ctx, it.Tags.Artist, q.title, q.album)
		if err != nil || len(candidates) == 0 {
			continue
		}
		return candidates[0].ID
	}
	return ""
}

// materialize implements spec §4.4.3 step 3: given a recording external
// id, fetch it and upsert the full W/E/M/I chain.
func (s *Stage) materialize(ctx context.Context, it model.Item, recordingID string) error {
	recording, err := s.Bibliographic.GetRecording(ctx, recordingID)
	if err != nil {
		return err
	}

	performerIDs := make([]model.ArtistID, 0, len(recording.ArtistCredit))
	for _, credit := range recording.ArtistCredit {
		artist, err := s.upsertArtistCredit(credit, model.RolePerformer)
		if err != nil {
			return err
		}
		performerIDs = append(performerIDs, artist.ID)
	}

	workID, err := s.resolveWork(ctx, recording)
	if err != nil {
		return err
	}

	expression, err := s.Store.GetExpressionByMusicBrainzID(recording.ID)
	if err != nil {
		expression = model.NewExpression(workID)
		expression.MusicBrainzID = recording.ID
	}
	expression.Title = recording.Title
	expression.DurationSecs = it.DurationSecs
	expression.PerformerIDs = performerIDs
	if err := s.Store.UpsertExpression(expression); err != nil {
		return err
	}

	var manifestationID *model.ManifestationID
	if len(recording.Releases) > 0 {
		mID, err := s.upsertManifestation(recording.Releases[0])
		if err != nil {
			return err
		}
		manifestationID = &mID
	}

	it.ExpressionID = &expression.ID
	it.ManifestationID = manifestationID
	return s.Store.UpsertItem(it)
}

// resolveWork follows the "performance" relation from a recording to its
// Work, inserting a minimal Work first if the external id is unseen, then
// enriching it with composer and key details.
func (s *Stage) resolveWork(ctx context.Context, recording bibliographic.Recording) (model.WorkID, error) {
	var workExternalID string
	for _, rel := range recording.Relations {
		if rel.Type == "performance" {
			workExternalID = rel.TargetID
			break
		}
	}
	if workExternalID == "" {
		w := model.NewWork(recording.Title)
		if err := s.Store.UpsertWork(w); err != nil {
			return model.WorkID{}, err
		}
		return w.ID, nil
	}

	if existing, err := s.Store.GetWorkByMusicBrainzID(workExternalID); err == nil {
		return existing.ID, nil
	}

	w := model.NewWork(recording.Title)
	w.MusicBrainzID = workExternalID
	if err := s.Store.UpsertWork(w); err != nil {
		return model.WorkID{}, err
	}

	work, err := s.Bibliographic.GetWork(ctx, workExternalID)
	if err != nil {
		return w.ID, nil // minimal Work is still usable
	}

	w.Title = work.Title
	for _, rel := range work.Relations {
		if rel.Type == "composer" {
			composer, err := s.upsertArtistCredit(bibliographic.ArtistCredit{ID: rel.TargetID}, model.RoleComposer)
			if err == nil {
				w.Composer = composer.Name
			}
		}
	}
	if len(work.Attributes) > 0 {
		w.Key = work.Attributes[0]
	}
	if err := s.Store.UpsertWork(w); err != nil {
		return model.WorkID{}, err
	}
	return w.ID, nil
}

func (s *Stage) upsertArtistCredit(credit bibliographic.ArtistCredit, role model.ArtistRole) (model.Artist, error) {
	artist, err := s.Store.GetArtistByMusicBrainzID(credit.ID)
	if err != nil {
		artist = model.NewArtist(credit.Name)
		artist.MusicBrainzID = credit.ID
	}
	if credit.Name != "" {
		artist.Name = credit.Name
	}
	if !artist.HasRole(role) {
		artist.Roles = append(artist.Roles, role)
	}
	if err := s.Store.UpsertArtist(artist); err != nil {
		return model.Artist{}, err
	}
	return artist, nil
}

func (s *Stage) upsertManifestation(release bibliographic.ReleaseSummary) (model.ManifestationID, error) {
	if existing, err := s.Store.GetManifestationByMusicBrainzID(release.ID); err == nil {
		return existing.ID, nil
	}
	m := model.NewManifestation(release.Title)
	m.MusicBrainzID = release.ID
	if err := s.Store.UpsertManifestation(m); err != nil {
		return model.ManifestationID{}, err
	}
	return m.ID, nil
}

