// Package rules implements the declarative, TOML-configured harmonization
// rules engine (spec §4.3): genre, period, and instrument rules evaluated
// against an Item's assertion set, producing deduplicated proposed tags
// with preserved alternatives.
//
// No repo in the retrieval pack ships a rules engine; grounded on the
// Rust prototype's harmonize crate for the document shape and conflict
// resolution algorithm, expressed here with pelletier/go-toml/v2, the
// same TOML library internal/config uses.
package rules

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/oxur/tessitura/internal/provenance"
	"github.com/oxur/tessitura/internal/tesserr"
)

// GenreRule maps assertion values matching any of MatchAny (restricted to
// MatchSource if non-empty) to up to three output proposals.
type GenreRule struct {
	Name             string   `toml:"name"`
	Description      string   `toml:"description"`
	MatchAny         []string `toml:"match_any"`
	MatchSource      []string `toml:"match_source"`
	OutputGenre      string   `toml:"output_genre"`
	OutputForm       string   `toml:"output_form"`
	OutputLcgftLabel string   `toml:"output_lcgft_label"`
	Confidence       float64  `toml:"confidence"`
}

// PeriodRule maps a composer name or year range to a single period
// output.
type PeriodRule struct {
	Name          string   `toml:"name"`
	MatchComposer []string `toml:"match_composer"`
	OutputPeriod  string   `toml:"output_period"`
	YearRange     [2]int   `toml:"year_range"`
}

// InstrumentRule maps assertion values matching any of MatchAny to one
// proposal per entry in OutputInstruments.
type InstrumentRule struct {
	Name              string   `toml:"name"`
	MatchAny          []string `toml:"match_any"`
	OutputInstruments []string `toml:"output_instruments"`
	OutputLcmptLabels []string `toml:"output_lcmpt_labels"`
}

// Document is the full parsed rules document (spec §6).
type Document struct {
	SourcePriority  map[string]int   `toml:"source_priority"`
	GenreRules      []GenreRule      `toml:"genre_rules"`
	PeriodRules     []PeriodRule     `toml:"period_rules"`
	InstrumentRules []InstrumentRule `toml:"instrument_rules"`
}

// defaultGenreConfidence is applied when a genre rule's confidence field
// is left at its TOML zero value.
const defaultGenreConfidence = 0.8

// Load parses a rules document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tesserr.IO(path, err)
	}
	return Parse(data)
}

// Parse parses a rules document from raw TOML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, tesserr.InvalidData("malformed rules document: " + err.Error())
	}
	for i := range doc.GenreRules {
		if doc.GenreRules[i].Confidence == 0 {
			doc.GenreRules[i].Confidence = defaultGenreConfidence
		}
	}
	return &doc, nil
}

// PriorityOf returns the declared priority for source, defaulting to 0
// when the source is absent from the document (spec §9 "Source-priority
// defaults").
func (d *Document) PriorityOf(source provenance.Source) int {
	return d.SourcePriority[string(source)]
}

// Validate checks the structural invariants §6/§8 rely on: every rule
// has a name, period rules declare a non-empty, correctly-ordered
// year_range, and genre rules emit at least one output field. It does
// not check source names against the closed provenance.Source set,
// since source_priority intentionally accepts unknown sources at
// priority 0 (spec §9).
func (d *Document) Validate() error {
	for _, r := range d.GenreRules {
		if r.Name == "" {
			return tesserr.InvalidData("genre rule missing name")
		}
		if len(r.MatchAny) == 0 {
			return tesserr.InvalidData("genre rule " + r.Name + " has no match_any patterns")
		}
		if r.OutputGenre == "" && r.OutputForm == "" && r.OutputLcgftLabel == "" {
			return tesserr.InvalidData("genre rule " + r.Name + " emits no output field")
		}
	}
	for _, r := range d.PeriodRules {
		if r.Name == "" {
			return tesserr.InvalidData("period rule missing name")
		}
		if r.OutputPeriod == "" {
			return tesserr.InvalidData("period rule " + r.Name + " has no output_period")
		}
		if r.YearRange[0] > r.YearRange[1] {
			return tesserr.InvalidData("period rule " + r.Name + " has an inverted year_range")
		}
	}
	for _, r := range d.InstrumentRules {
		if r.Name == "" {
			return tesserr.InvalidData("instrument rule missing name")
		}
		if len(r.MatchAny) == 0 {
			return tesserr.InvalidData("instrument rule " + r.Name + " has no match_any patterns")
		}
		if len(r.OutputInstruments) == 0 {
			return tesserr.InvalidData("instrument rule " + r.Name + " emits no output_instruments")
		}
	}
	return nil
}

// Example renders a starter rules document matching the source-priority
// defaults and the Baroque/Classical year-range example of spec §8
// ("Boundary behaviors").
func Example() string {
	return `# tessitura harmonization rules (spec sec.6)

[source_priority]
MusicBrainz = 5
Discogs = 4
Wikidata = 3
LastFm = 2
EmbeddedTag = 1

[[genre_rules]]
name = "classical"
match_any = ["classical"]
output_genre = "Classical"
output_lcgft_label = "Classical music"
confidence = 0.8

[[period_rules]]
name = "baroque"
match_composer = ["Bach", "Vivaldi", "Handel"]
output_period = "Baroque"
year_range = [1600, 1750]

[[period_rules]]
name = "classical-era"
match_composer = ["Mozart", "Haydn"]
output_period = "Classical"
year_range = [1750, 1820]

[[instrument_rules]]
name = "string-quartet"
match_any = ["violin", "viola", "cello"]
output_instruments = ["Strings"]
output_lcmpt_labels = ["String quartets"]
`
}
