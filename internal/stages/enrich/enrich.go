// Package enrich implements the enrich stage (spec §4.4.4): fan out over
// whichever source clients are configured, each subtask writing
// provenance-tagged assertions independently.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/provenance"
	"github.com/oxur/tessitura/internal/sourceclients/bibliographic"
	"github.com/oxur/tessitura/internal/sourceclients/encyclopedic"
	"github.com/oxur/tessitura/internal/sourceclients/folksonomy"
	"github.com/oxur/tessitura/internal/sourceclients/marketplace"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow"
)

const (
	subtaskBibliographic = "bibliographic"
	subtaskEncyclopedic  = "encyclopedic"
	subtaskFolksonomy    = "folksonomy"
	subtaskMarketplace   = "marketplace"
)

// Stage enriches one identified Item's entities with assertions drawn
// from every configured source client (spec §4.4.4). The work-item id is
// the Item id.
type Stage struct {
	Store         *store.Store
	Bibliographic *bibliographic.Client
	Encyclopedic  *encyclopedic.Client
	Folksonomy    *folksonomy.Client // nil unless lastfm_api_key is configured
	Marketplace   *marketplace.Client
	Log           *logging.Logger
}

// New returns an enrich Stage. Bibliographic and Encyclopedic are always
// available; Folksonomy is nil unless an api key is configured (spec
// §4.4.4).
func New(st *store.Store, bib *bibliographic.Client, enc *encyclopedic.Client, folk *folksonomy.Client, market *marketplace.Client, log *logging.Logger) *Stage {
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{Store: st, Bibliographic: bib, Encyclopedic: enc, Folksonomy: folk, Marketplace: market, Log: log}
}

// Name implements workflow.Stage.
func (s *Stage) Name() string { return "enrich" }

// Execute implements workflow.Stage.
func (s *Stage) Execute(ctx context.Context, itemID string, wctx *workflow.Context) workflow.Outcome {
	if wctx.Subtask == "" {
		var enabled []string
		if s.Bibliographic != nil {
			enabled = append(enabled, subtaskBibliographic)
		}
		if s.Encyclopedic != nil {
			enabled = append(enabled, subtaskEncyclopedic)
		}
		if s.Folksonomy != nil {
			enabled = append(enabled, subtaskFolksonomy)
		}
		if s.Marketplace != nil {
			enabled = append(enabled, subtaskMarketplace)
		}
		return workflow.FanOut(enabled...)
	}

	id, err := model.ParseItemID(itemID)
	if err != nil {
		s.Log.Warning.Printf("enrich/%s: %s: %v", wctx.Subtask, itemID, err)
		return workflow.Complete()
	}
	it, err := s.Store.GetItemByID(id)
	if err != nil {
		s.Log.Warning.Printf("enrich/%s: %s: %v", wctx.Subtask, itemID, err)
		return workflow.Complete() // per-source failure must not fail the pipeline
	}

	var runErr error
	switch wctx.Subtask {
	case subtaskBibliographic:
		runErr = s.runBibliographic(ctx, it)
	case subtaskEncyclopedic:
		runErr = s.runEncyclopedic(ctx, it)
	case subtaskFolksonomy:
		runErr = s.runFolksonomy(ctx, it)
	case subtaskMarketplace:
		runErr = s.runMarketplace(ctx, it)
	}
	if runErr != nil {
		s.Log.Warning.Printf("enrich/%s: %s: %v", wctx.Subtask, itemID, runErr)
	}
	return workflow.Complete()
}

func (s *Stage) runBibliographic(ctx context.Context, it model.Item) error {
	if it.ExpressionID == nil {
		return nil
	}
	expression, err := s.Store.GetExpressionByID(*it.ExpressionID)
	if err != nil {
		return err
	}

	recording, err := s.Bibliographic.GetRecording(ctx, expression.MusicBrainzID)
	if err != nil {
		return err
	}

	entity := it.ID.String()
	s.assert(entity, "title", recording.Title, provenance.SourceMusicBrainz, nil)
	for _, credit := range recording.ArtistCredit {
		s.assert(entity, "artist", credit.Name, provenance.SourceMusicBrainz, nil)
	}

	for _, rel := range recording.Relations {
		if rel.Type != "performance" {
			continue
		}
		work, err := s.Bibliographic.GetWork(ctx, rel.TargetID)
		if err != nil {
			continue
		}
		s.assert(entity, "work_title", work.Title, provenance.SourceMusicBrainz, nil)
		s.assert(entity, "work_external_id", work.ID, provenance.SourceMusicBrainz, nil)
		for _, wrel := range work.Relations {
			if wrel.Type == "composer" {
				s.assert(entity, "composer", wrel.TargetID, provenance.SourceMusicBrainz, nil)
			}
		}
		for _, attr := range work.Attributes {
			lower := strings.ToLower(attr)
			if strings.Contains(lower, "major") || strings.Contains(lower, "minor") {
				s.assert(entity, "key", attr, provenance.SourceMusicBrainz, nil)
			}
		}
	}

	if len(recording.Releases) > 0 {
		release, err := s.Bibliographic.GetRelease(ctx, recording.Releases[0].ID)
		if err == nil {
			if year := parseYearPrefix(release.Date); year != 0 {
				s.assert(entity, "release_year", year, provenance.SourceMusicBrainz, nil)
			}
			if release.Label != "" {
				s.assert(entity, "label", map[string]string{"name": release.Label, "external_id": release.LabelID}, provenance.SourceMusicBrainz, nil)
			}
			if release.Catalog != "" {
				s.assert(entity, "catalog_number", release.Catalog, provenance.SourceMusicBrainz, nil)
			}
		}
	}
	return nil
}

func (s *Stage) runEncyclopedic(ctx context.Context, it model.Item) error {
	if it.ExpressionID == nil {
		return nil
	}
	expression, err := s.Store.GetExpressionByID(*it.ExpressionID)
	if err != nil {
		return err
	}
	work, err := s.Store.GetWorkByID(expression.WorkID)
	if err != nil {
		return err
	}

	qid, err := s.Encyclopedic.ResolveWork(ctx, work.MusicBrainzID)
	if err != nil || qid == "" {
		return err
	}

	claims, err := s.Encyclopedic.GetClaims(ctx, qid)
	if err != nil {
		return err
	}

	// Entity-valued claims are asserted as bare qid strings, not wrapped
	// in an object.
	entity := it.ID.String()
	if claims.Tonality != "" {
		s.assert(entity, "tonality", claims.Tonality, provenance.SourceWikidata, nil)
	}
	if claims.Form != "" {
		s.assert(entity, "form", claims.Form, provenance.SourceWikidata, nil)
	}
	if claims.CatalogNumber != "" {
		s.assert(entity, "catalog", claims.CatalogNumber, provenance.SourceWikidata, nil)
	}
	for _, inst := range claims.Instrumentation {
		s.assert(entity, "instrumentation", inst, provenance.SourceWikidata, nil)
	}
	if claims.Period != "" {
		s.assert(entity, "period", claims.Period, provenance.SourceWikidata, nil)
	}
	if claims.MovementCount > 0 {
		s.assert(entity, "movement", claims.MovementCount, provenance.SourceWikidata, nil)
	}
	return nil
}

const folksonomyMinCount = 10

func (s *Stage) runFolksonomy(ctx context.Context, it model.Item) error {
	if it.Tags.Artist == "" || it.Tags.Title == "" {
		return nil
	}

	trackTags, err := s.Folksonomy.TrackTopTags(ctx, it.Tags.Artist, it.Tags.Title)
	if err != nil {
		return err
	}
	s.assertTags(it.ID.String(), trackTags, "track")

	artistTags, err := s.Folksonomy.ArtistTopTags(ctx, it.Tags.Artist)
	if err != nil {
		return err
	}
	s.assertTags(it.ID.String(), artistTags, "artist")
	return nil
}

func (s *Stage) assertTags(entity string, tags []folksonomy.Tag, scope string) {
	maxCount := 0
	for _, t := range tags {
		if t.Count > maxCount {
			maxCount = t.Count
		}
	}
	if maxCount == 0 {
		return
	}
	for _, t := range tags {
		if t.Count < folksonomyMinCount {
			continue
		}
		confidence := float64(t.Count) / float64(maxCount)
		s.assert(entity, "tag", map[string]string{"value": t.Name, "scope": scope}, provenance.SourceLastFm, &confidence)
	}
}

func (s *Stage) runMarketplace(ctx context.Context, it model.Item) error {
	if it.ManifestationID == nil {
		return nil
	}
	manifestation, err := s.Store.GetManifestationByID(*it.ManifestationID)
	if err != nil || manifestation.CatalogNumber == "" {
		return err
	}

	candidates, err := s.Marketplace.SearchRelease(ctx, manifestation.CatalogNumber)
	if err != nil || len(candidates) == 0 {
		return err
	}

	release, err := s.Marketplace.GetRelease(ctx, candidates[0].ID)
	if err != nil {
		return err
	}

	entity := it.ID.String()
	if release.Label != "" {
		s.assert(entity, "label", release.Label, provenance.SourceDiscogs, nil)
	}
	if release.Catalog != "" {
		s.assert(entity, "catalog_number", release.Catalog, provenance.SourceDiscogs, nil)
	}
	if release.Year != 0 {
		s.assert(entity, "release_year", release.Year, provenance.SourceDiscogs, nil)
	}
	for _, genre := range release.Genres {
		s.assert(entity, "genre", genre, provenance.SourceDiscogs, nil)
	}
	for _, style := range release.Styles {
		s.assert(entity, "style", style, provenance.SourceDiscogs, nil)
	}
	for _, format := range release.Formats {
		s.assert(entity, "format", map[string]any{"name": format.Name, "descriptions": format.Descriptions}, provenance.SourceDiscogs, nil)
	}
	for _, extra := range release.ExtraArtists {
		s.assert(entity, "personnel", map[string]string{"name": extra.Name, "role": extra.Role}, provenance.SourceDiscogs, nil)
	}
	return nil
}

func (s *Stage) assert(entity, field string, value any, source provenance.Source, confidence *float64) {
	a := provenance.New(entity, field, value, source)
	if confidence != nil {
		a = a.WithConfidence(*confidence)
	}
	if err := s.Store.InsertAssertion(a); err != nil {
		s.Log.Warning.Printf("enrich: write assertion %s/%s: %v", entity, field, err)
	}
}

func parseYearPrefix(isoDate string) int {
	if len(isoDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(isoDate[:4])
	if err != nil {
		return 0
	}
	return year
}
