package rules

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/oxur/tessitura/internal/provenance"
)

// instrumentRuleBaseConfidence is the fixed confidence instrument rules
// carry regardless of their declared rule confidence (spec §4.3).
const instrumentRuleBaseConfidence = 0.8

// periodComposerConfidence and periodYearConfidence are the fixed
// confidences for the two period-rule match passes (spec §4.3).
const (
	periodComposerConfidence = 0.9
	periodYearConfidence     = 0.7
)

var genreFields = map[string]bool{"genre": true, "style": true, "form": true, "tag": true}
var instrumentFields = map[string]bool{"instrumentation": true, "instrument": true, "ensemble": true}

// Alternative is a non-winning candidate preserved alongside a Proposal's
// winner (spec §4.3 "Deduplication and conflict resolution").
type Alternative struct {
	Value      string
	Source     provenance.Source
	Confidence float64
}

// Proposal is a single emitted (field, value) recommendation with its
// winning source and any displaced alternatives (spec §4.3 "Output").
type Proposal struct {
	Field        string
	Value        string
	Source       provenance.Source
	RuleName     string
	Confidence   float64
	Alternatives []Alternative
}

// candidate is an unresolved proposal prior to grouping/conflict
// resolution.
type candidate struct {
	field      string
	value      string
	source     provenance.Source
	ruleName   string
	confidence float64
}

// ApplyGenreRules evaluates every genre rule against assertions whose
// field is genre/style/form/tag.
func (d *Document) ApplyGenreRules(assertions []provenance.Assertion) []Proposal {
	var candidates []candidate
	for _, a := range assertions {
		if !genreFields[a.Field] {
			continue
		}
		value := assertionValueAsString(a.Value)
		for _, rule := range d.GenreRules {
			if !sourceAllowed(rule.MatchSource, a.Source) {
				continue
			}
			if !anyContains(rule.MatchAny, value) {
				continue
			}
			confidence := rule.Confidence * a.ConfidenceOrDefault()
			if rule.OutputGenre != "" {
				candidates = append(candidates, candidate{"genre", rule.OutputGenre, a.Source, rule.Name, confidence})
			}
			if rule.OutputForm != "" {
				candidates = append(candidates, candidate{"form", rule.OutputForm, a.Source, rule.Name, confidence})
			}
			if rule.OutputLcgftLabel != "" {
				// Intentionally emitted against the "genre" field per spec §9
				// open question: lcgft and genre outputs may collide.
				candidates = append(candidates, candidate{"genre", rule.OutputLcgftLabel, a.Source, rule.Name, confidence})
			}
		}
	}
	return d.resolve(candidates)
}

// ApplyInstrumentRules evaluates every instrument rule against assertions
// whose field is instrumentation/instrument/ensemble.
func (d *Document) ApplyInstrumentRules(assertions []provenance.Assertion) []Proposal {
	var candidates []candidate
	for _, a := range assertions {
		if !instrumentFields[a.Field] {
			continue
		}
		value := assertionValueAsString(a.Value)
		for _, rule := range d.InstrumentRules {
			if !anyContains(rule.MatchAny, value) {
				continue
			}
			confidence := instrumentRuleBaseConfidence * a.ConfidenceOrDefault()
			for _, instrument := range rule.OutputInstruments {
				candidates = append(candidates, candidate{"instrument", instrument, a.Source, rule.Name, confidence})
			}
			for _, label := range rule.OutputLcmptLabels {
				candidates = append(candidates, candidate{"instrument", label, a.Source, rule.Name, confidence})
			}
		}
	}
	return d.resolve(candidates)
}

// ApplyPeriodRules evaluates period rules against a composer name and/or
// year hint: a composer-name match (confidence 0.9) takes priority over a
// year-range match (confidence 0.7); the first declared rule wins each
// pass (spec §4.3, §8 "Year-range rule evaluation").
func (d *Document) ApplyPeriodRules(composer string, year int, source provenance.Source) []Proposal {
	if composer != "" {
		for _, rule := range d.PeriodRules {
			if anyContains(rule.MatchComposer, composer) {
				return d.resolve([]candidate{{"period", rule.OutputPeriod, source, rule.Name, periodComposerConfidence}})
			}
		}
	}
	if year != 0 {
		for _, rule := range d.PeriodRules {
			if year >= rule.YearRange[0] && year <= rule.YearRange[1] {
				return d.resolve([]candidate{{"period", rule.OutputPeriod, source, rule.Name, periodYearConfidence}})
			}
		}
	}
	return nil
}

// resolve groups candidates by (field, value), orders each group by
// (source-priority desc, confidence desc), and returns one Proposal per
// group carrying the winner plus every other candidate as an alternative
// (spec §4.3, §8 "Conflict-resolution winner").
func (d *Document) resolve(candidates []candidate) []Proposal {
	type key struct{ field, value string }
	groups := make(map[key][]candidate)
	var order []key
	for _, c := range candidates {
		k := key{c.field, c.value}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	proposals := make([]Proposal, 0, len(order))
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			pi, pj := d.PriorityOf(group[i].source), d.PriorityOf(group[j].source)
			if pi != pj {
				return pi > pj
			}
			return group[i].confidence > group[j].confidence
		})

		winner := group[0]
		proposal := Proposal{
			Field:      winner.field,
			Value:      winner.value,
			Source:     winner.source,
			RuleName:   winner.ruleName,
			Confidence: winner.confidence,
		}
		for _, alt := range group[1:] {
			proposal.Alternatives = append(proposal.Alternatives, Alternative{
				Value:      alt.value,
				Source:     alt.source,
				Confidence: alt.confidence,
			})
		}
		proposals = append(proposals, proposal)
	}
	return proposals
}

func sourceAllowed(allowed []string, source provenance.Source) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if provenance.Source(s) == source {
			return true
		}
	}
	return false
}

func anyContains(patterns []string, value string) bool {
	lower := strings.ToLower(value)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// assertionValueAsString renders an assertion value for substring matching:
// a JSON string is used as-is, anything else (object, number, array) falls
// back to its JSON encoding, so e.g. a folksonomy tag object still matches a
// rule's pattern against whatever text it contains.
func assertionValueAsString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
