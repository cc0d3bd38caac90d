package store

import (
	"testing"
	"time"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/provenance"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertWorkRoundTrip(t *testing.T) {
	s := openTestStore(t)

	w := model.NewWork("Kind of Blue")
	w.MusicBrainzID = "mb-work-1"
	w.Composer = "Miles Davis"

	if err := s.UpsertWork(w); err != nil {
		t.Fatalf("UpsertWork: %v", err)
	}

	got, err := s.GetWorkByMusicBrainzID("mb-work-1")
	if err != nil {
		t.Fatalf("GetWorkByMusicBrainzID: %v", err)
	}
	if got.Title != w.Title || got.Composer != w.Composer {
		t.Errorf("got %+v, want title=%q composer=%q", got, w.Title, w.Composer)
	}
}

func TestUpsertWorkIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	w := model.NewWork("So What")
	w.MusicBrainzID = "mb-work-2"

	if err := s.UpsertWork(w); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	w.ComposedYear = 1959
	if err := s.UpsertWork(w); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	works, err := s.ListWorks()
	if err != nil {
		t.Fatalf("ListWorks: %v", err)
	}
	if len(works) != 1 {
		t.Fatalf("got %d works, want 1", len(works))
	}
	if works[0].ComposedYear != 1959 {
		t.Errorf("got composed year %d, want 1959", works[0].ComposedYear)
	}
}

func TestExpressionPerformerAssociationRewrite(t *testing.T) {
	s := openTestStore(t)

	w := model.NewWork("A Love Supreme")
	if err := s.UpsertWork(w); err != nil {
		t.Fatalf("UpsertWork: %v", err)
	}

	a1 := model.NewArtist("John Coltrane")
	a2 := model.NewArtist("McCoy Tyner")
	for _, a := range []model.Artist{a1, a2} {
		if err := s.UpsertArtist(a); err != nil {
			t.Fatalf("UpsertArtist: %v", err)
		}
	}

	e := model.NewExpression(w.ID)
	e.MusicBrainzID = "mb-expr-1"
	e.PerformerIDs = []model.ArtistID{a1.ID, a2.ID}
	if err := s.UpsertExpression(e); err != nil {
		t.Fatalf("UpsertExpression: %v", err)
	}

	// Rewrite with a narrower performer set; the old association must be gone.
	e.PerformerIDs = []model.ArtistID{a1.ID}
	if err := s.UpsertExpression(e); err != nil {
		t.Fatalf("UpsertExpression (rewrite): %v", err)
	}

	got, err := s.GetExpressionByMusicBrainzID("mb-expr-1")
	if err != nil {
		t.Fatalf("GetExpressionByMusicBrainzID: %v", err)
	}
	if len(got.PerformerIDs) != 1 || got.PerformerIDs[0] != a1.ID {
		t.Errorf("got performers %+v, want [%v]", got.PerformerIDs, a1.ID)
	}
}

func TestListItemsByIdentificationStatus(t *testing.T) {
	s := openTestStore(t)

	identified := model.NewItem("/music/a.flac", model.FormatFLAC, 100, time.Now())
	eid := model.NewExpressionID()
	identified.ExpressionID = &eid

	unidentified := model.NewItem("/music/b.flac", model.FormatFLAC, 100, time.Now())

	for _, it := range []model.Item{identified, unidentified} {
		if err := s.UpsertItem(it); err != nil {
			t.Fatalf("UpsertItem: %v", err)
		}
	}

	ident, err := s.ListIdentifiedItems()
	if err != nil {
		t.Fatalf("ListIdentifiedItems: %v", err)
	}
	if len(ident) != 1 || ident[0].Path != "/music/a.flac" {
		t.Errorf("got %+v, want one item at /music/a.flac", ident)
	}

	unident, err := s.ListUnidentifiedItems()
	if err != nil {
		t.Fatalf("ListUnidentifiedItems: %v", err)
	}
	if len(unident) != 1 || unident[0].Path != "/music/b.flac" {
		t.Errorf("got %+v, want one item at /music/b.flac", unident)
	}
}

func TestAssertionInsertAndListByEntity(t *testing.T) {
	s := openTestStore(t)

	itemID := "item-1"
	a := provenance.New(itemID, "genre", "classical", provenance.SourceMusicBrainz).WithConfidence(0.9)
	if err := s.InsertAssertion(a); err != nil {
		t.Fatalf("InsertAssertion: %v", err)
	}

	got, err := s.ListAssertionsByEntity(itemID)
	if err != nil {
		t.Fatalf("ListAssertionsByEntity: %v", err)
	}
	if len(got) != 1 || got[0].Field != "genre" || got[0].Value != "classical" {
		t.Errorf("got %+v, want one genre=classical assertion", got)
	}
}

func TestVocabularySnapshotLoadIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	terms := []VocabularyTerm{
		{URI: "urn:genre:music", Label: "Music"},
		{URI: "urn:genre:classical", Label: "Classical", BroaderURI: "urn:genre:music"},
		{URI: "urn:genre:baroque", Label: "Baroque", BroaderURI: "urn:genre:classical"},
	}

	if err := s.LoadVocabularySnapshot(terms); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := s.LoadVocabularySnapshot(terms); err != nil {
		t.Fatalf("second load: %v", err)
	}

	count, err := s.CountVocabularyTerms()
	if err != nil {
		t.Fatalf("CountVocabularyTerms: %v", err)
	}
	if count != 3 {
		t.Errorf("got %d terms, want 3", count)
	}

	narrower, err := s.ListNarrowerOf("urn:genre:music")
	if err != nil {
		t.Fatalf("ListNarrowerOf: %v", err)
	}
	if len(narrower) != 1 || narrower[0].Label != "Classical" {
		t.Errorf("got %+v, want one term Classical", narrower)
	}
}
