package rules

import (
	"testing"

	"github.com/oxur/tessitura/internal/provenance"
)

func TestGenreRuleConflictResolution(t *testing.T) {
	doc := &Document{
		SourcePriority: map[string]int{
			"MusicBrainz": 5,
			"LastFm":      2,
		},
		GenreRules: []GenreRule{
			{Name: "classical", MatchAny: []string{"classical"}, OutputGenre: "Classical", Confidence: 0.8},
		},
	}

	mbConfidence := 0.9
	lastfmConfidence := 0.8
	assertions := []provenance.Assertion{
		{Field: "genre", Value: "classical", Source: provenance.SourceMusicBrainz, Confidence: &mbConfidence},
		{Field: "genre", Value: "classical music", Source: provenance.SourceLastFm, Confidence: &lastfmConfidence},
	}

	proposals := doc.ApplyGenreRules(assertions)
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
	p := proposals[0]
	if p.Source != provenance.SourceMusicBrainz {
		t.Errorf("got winner source %q, want MusicBrainz (higher priority)", p.Source)
	}
	want := 0.8 * 0.9
	if diff := p.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got confidence %v, want %v", p.Confidence, want)
	}
	if len(p.Alternatives) != 1 || p.Alternatives[0].Source != provenance.SourceLastFm {
		t.Errorf("got alternatives %+v, want one from LastFm", p.Alternatives)
	}
}

func TestGenreRuleMatchesNonStringAssertionValue(t *testing.T) {
	doc := &Document{
		GenreRules: []GenreRule{
			{Name: "classical-tag", MatchAny: []string{"classical"}, OutputGenre: "Classical", Confidence: 0.8},
		},
	}

	// Folksonomy tags are stored as an object, not a bare string (spec
	// §4.4.4); the genre field set still includes "tag", so matching must
	// look through the object's JSON representation rather than skip it.
	assertions := []provenance.Assertion{
		{Field: "tag", Value: map[string]any{"value": "classical", "scope": "track"}, Source: provenance.SourceLastFm},
	}

	proposals := doc.ApplyGenreRules(assertions)
	if len(proposals) != 1 || proposals[0].Value != "Classical" {
		t.Fatalf("got %+v, want one Classical proposal from the non-string tag assertion", proposals)
	}
}

func TestGenreRuleRequiresAllowedSource(t *testing.T) {
	doc := &Document{
		GenreRules: []GenreRule{
			{Name: "only-mb", MatchAny: []string{"jazz"}, MatchSource: []string{"MusicBrainz"}, OutputGenre: "Jazz", Confidence: 0.8},
		},
	}

	assertions := []provenance.Assertion{
		{Field: "genre", Value: "jazz", Source: provenance.SourceLastFm},
	}

	if got := doc.ApplyGenreRules(assertions); len(got) != 0 {
		t.Errorf("got %d proposals, want 0 (source not allowed)", len(got))
	}
}

func TestPeriodRuleComposerBeatsYear(t *testing.T) {
	doc := &Document{
		PeriodRules: []PeriodRule{
			{Name: "bach", MatchComposer: []string{"Bach"}, OutputPeriod: "Baroque", YearRange: [2]int{1600, 1750}},
			{Name: "classical-era", OutputPeriod: "Classical", YearRange: [2]int{1750, 1820}},
		},
	}

	proposals := doc.ApplyPeriodRules("Johann Sebastian Bach", 1800, provenance.SourceUser)
	if len(proposals) != 1 || proposals[0].Value != "Baroque" {
		t.Fatalf("got %+v, want one Baroque proposal (composer match beats year match)", proposals)
	}
}

func TestPeriodRuleYearRangeTieFirstDeclaredWins(t *testing.T) {
	doc := &Document{
		PeriodRules: []PeriodRule{
			{Name: "baroque", OutputPeriod: "Baroque", YearRange: [2]int{1600, 1750}},
			{Name: "classical-era", OutputPeriod: "Classical", YearRange: [2]int{1750, 1820}},
		},
	}

	proposals := doc.ApplyPeriodRules("", 1750, provenance.SourceUser)
	if len(proposals) != 1 || proposals[0].Value != "Baroque" {
		t.Fatalf("got %+v, want Baroque (first declared rule wins a boundary tie)", proposals)
	}
}

func TestInstrumentRuleFixedConfidence(t *testing.T) {
	doc := &Document{
		InstrumentRules: []InstrumentRule{
			{Name: "strings", MatchAny: []string{"violin"}, OutputInstruments: []string{"violin"}},
		},
	}

	assertions := []provenance.Assertion{
		{Field: "instrumentation", Value: "solo violin", Source: provenance.SourceWikidata},
	}

	proposals := doc.ApplyInstrumentRules(assertions)
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
	if proposals[0].Confidence != instrumentRuleBaseConfidence {
		t.Errorf("got confidence %v, want fixed base %v", proposals[0].Confidence, instrumentRuleBaseConfidence)
	}
}

func TestParseAppliesDefaultGenreConfidenceWhenOmitted(t *testing.T) {
	doc, err := Parse([]byte(`
[[genre_rules]]
name = "no-confidence"
match_any = ["rock"]
output_genre = "Rock"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.GenreRules[0].Confidence != defaultGenreConfidence {
		t.Errorf("got confidence %v, want default %v", doc.GenreRules[0].Confidence, defaultGenreConfidence)
	}
}

func TestPriorityOfDefaultsToZero(t *testing.T) {
	doc := &Document{SourcePriority: map[string]int{"MusicBrainz": 5}}
	if got := doc.PriorityOf(provenance.SourceDiscogs); got != 0 {
		t.Errorf("got priority %d for unlisted source, want 0", got)
	}
}
