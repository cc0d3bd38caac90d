package store

import (
	"encoding/json"
	"time"

	"github.com/oxur/tessitura/internal/provenance"
	"github.com/oxur/tessitura/internal/tesserr"
)

// InsertAssertion appends a to the assertion log, stamping FetchedAt
// monotonically if the caller left it zero (spec §8 "Assertion
// monotonicity").
func (s *Store) InsertAssertion(a provenance.Assertion) error {
	if a.FetchedAt.IsZero() {
		a.FetchedAt = time.Now()
	}

	valueJSON, err := json.Marshal(a.Value)
	if err != nil {
		return tesserr.Serialization("encode assertion value", err)
	}

	row := toAssertionRow(a, string(valueJSON))
	if err := s.db.Create(&row).Error; err != nil {
		return tesserr.Database("insert assertion", err)
	}
	return nil
}

// ListAssertionsByEntity returns every assertion for entityID, newest
// first (spec §4.1).
func (s *Store) ListAssertionsByEntity(entityID string) ([]provenance.Assertion, error) {
	var rows []assertionRow
	if err := s.db.Where("entity_id = ?", entityID).Order("fetched_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list assertions by entity", err)
	}

	out := make([]provenance.Assertion, 0, len(rows))
	for _, r := range rows {
		var value any
		if err := json.Unmarshal([]byte(r.ValueJSON), &value); err != nil {
			return nil, tesserr.Serialization("decode assertion value", err)
		}
		out = append(out, provenance.Assertion{
			ID:         r.ID,
			EntityID:   r.EntityID,
			Field:      r.Field,
			Value:      value,
			Source:     provenance.Source(r.Source),
			Confidence: r.Confidence,
			FetchedAt:  r.FetchedAt,
		})
	}
	return out, nil
}
