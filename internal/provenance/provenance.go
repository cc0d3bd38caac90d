// Package provenance defines the provenance-tagged assertion: the unit of
// evidence that flows from source clients into the rules engine.
package provenance

import "time"

// Source names the external (or internal) origin of an Assertion. The set
// is closed per spec §6.
type Source string

const (
	SourceEmbeddedTag  Source = "EmbeddedTag"
	SourceAcoustID     Source = "AcoustId"
	SourceMusicBrainz  Source = "MusicBrainz"
	SourceWikidata     Source = "Wikidata"
	SourceLastFm       Source = "LastFm"
	SourceLcgft        Source = "Lcgft"
	SourceLcmpt        Source = "Lcmpt"
	SourceDiscogs      Source = "Discogs"
	SourceUser         Source = "User"
)

// Assertion is a single, provenance-tagged claim about an entity field.
// Multiple assertions for the same (entity, field, source) are permitted
// and retained; history is append-only.
type Assertion struct {
	ID         int64
	EntityID   string
	Field      string
	Value      any
	Source     Source
	Confidence *float64
	FetchedAt  time.Time
}

// New returns an Assertion with no confidence set and FetchedAt left for
// the caller (normally the store) to stamp monotonically.
func New(entityID, field string, value any, source Source) Assertion {
	return Assertion{
		EntityID: entityID,
		Field:    field,
		Value:    value,
		Source:   source,
	}
}

// WithConfidence returns a copy of a with Confidence set.
func (a Assertion) WithConfidence(confidence float64) Assertion {
	a.Confidence = &confidence
	return a
}

// ConfidenceOrDefault returns the assertion's confidence, defaulting to 1.0
// when absent (spec §4.3 "Confidence").
func (a Assertion) ConfidenceOrDefault() float64 {
	if a.Confidence == nil {
		return 1.0
	}
	return *a.Confidence
}
