package store

import (
	"strings"

	"gorm.io/gorm/clause"

	"github.com/oxur/tessitura/internal/tesserr"
)

// UpsertVocabularyTerm inserts t or replaces the row sharing its URI.
func (s *Store) UpsertVocabularyTerm(t VocabularyTerm) error {
	row := toVocabularyRow(t)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uri"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("upsert vocabulary term", err)
	}
	return nil
}

// LoadVocabularySnapshot loads terms in two passes so that every
// broader-uri foreign reference resolves: first every rootless (parent)
// entry, then every entry carrying a broader reference (spec §6). Safe to
// call repeatedly; re-loading yields the same term count and the same
// parent relations (spec §8 "Vocabulary load is idempotent").
func (s *Store) LoadVocabularySnapshot(terms []VocabularyTerm) error {
	for _, t := range terms {
		if t.BroaderURI == "" {
			if err := s.UpsertVocabularyTerm(t); err != nil {
				return err
			}
		}
	}
	for _, t := range terms {
		if t.BroaderURI != "" {
			if err := s.UpsertVocabularyTerm(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetVocabularyTermByLabel looks up a term by case-insensitive label
// match.
func (s *Store) GetVocabularyTermByLabel(label string) (VocabularyTerm, error) {
	var row vocabularyTermRow
	err := s.db.Where("LOWER(label) = ?", strings.ToLower(label)).First(&row).Error
	if err != nil {
		return VocabularyTerm{}, tesserr.NotFound("vocabulary_term", label)
	}
	return row.toPublic(), nil
}

// ListNarrowerOf returns every term whose broader-uri is broaderURI,
// ordered by label.
func (s *Store) ListNarrowerOf(broaderURI string) ([]VocabularyTerm, error) {
	var rows []vocabularyTermRow
	if err := s.db.Where("broader_uri = ?", broaderURI).Order("label ASC").Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list narrower vocabulary terms", err)
	}
	out := make([]VocabularyTerm, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPublic())
	}
	return out, nil
}

// CountVocabularyTerms returns the total number of loaded terms.
func (s *Store) CountVocabularyTerms() (int64, error) {
	var n int64
	if err := s.db.Model(&vocabularyTermRow{}).Count(&n).Error; err != nil {
		return 0, tesserr.Database("count vocabulary terms", err)
	}
	return n, nil
}
