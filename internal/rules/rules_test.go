package rules

import "testing"

func TestParseAppliesDefaultGenreConfidence(t *testing.T) {
	data := []byte(`
[[genre_rules]]
name = "jazz"
match_any = ["jazz"]
output_genre = "Jazz"
`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.GenreRules[0].Confidence != defaultGenreConfidence {
		t.Errorf("Confidence = %v, want default %v", doc.GenreRules[0].Confidence, defaultGenreConfidence)
	}
}

func TestExampleParsesAndValidates(t *testing.T) {
	doc, err := Parse([]byte(Example()))
	if err != nil {
		t.Fatalf("Parse(Example()): %v", err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(doc.GenreRules) == 0 || len(doc.PeriodRules) == 0 || len(doc.InstrumentRules) == 0 {
		t.Fatalf("expected a non-empty example of every rule kind, got %+v", doc)
	}
}

func TestValidateRejectsInvertedYearRange(t *testing.T) {
	doc := &Document{
		PeriodRules: []PeriodRule{
			{Name: "broken", OutputPeriod: "Broken", YearRange: [2]int{1800, 1700}},
		},
	}
	if err := doc.Validate(); err == nil {
		t.Error("expected an error for an inverted year_range")
	}
}

func TestValidateRejectsGenreRuleWithNoOutput(t *testing.T) {
	doc := &Document{
		GenreRules: []GenreRule{
			{Name: "empty", MatchAny: []string{"x"}},
		},
	}
	if err := doc.Validate(); err == nil {
		t.Error("expected an error for a genre rule with no output field")
	}
}
