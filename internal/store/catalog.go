package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/tesserr"
)

// UpsertWork inserts w or replaces the row sharing its primary identity.
func (s *Store) UpsertWork(w model.Work) error {
	row := toWorkRow(w)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("upsert work", err)
	}
	return nil
}

// GetWorkByID returns the Work with the given id, or tesserr.NotFound.
func (s *Store) GetWorkByID(id model.WorkID) (model.Work, error) {
	var row workRow
	err := s.db.Where("id = ?", id.String()).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Work{}, tesserr.NotFound("work", id.String())
	}
	if err != nil {
		return model.Work{}, tesserr.Database("get work by id", err)
	}
	return row.toModel()
}

// GetWorkByMusicBrainzID returns the Work carrying the given external id,
// or tesserr.NotFound if none exists.
func (s *Store) GetWorkByMusicBrainzID(mbid string) (model.Work, error) {
	var row workRow
	err := s.db.Where("music_brainz_id = ?", mbid).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Work{}, tesserr.NotFound("work", mbid)
	}
	if err != nil {
		return model.Work{}, tesserr.Database("get work by external id", err)
	}
	return row.toModel()
}

// ListWorks returns every Work in the catalog.
func (s *Store) ListWorks() ([]model.Work, error) {
	var rows []workRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list works", err)
	}
	out := make([]model.Work, 0, len(rows))
	for _, r := range rows {
		w, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// UpsertArtist inserts a or replaces the row sharing its primary identity.
func (s *Store) UpsertArtist(a model.Artist) error {
	row := toArtistRow(a)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("upsert artist", err)
	}
	return nil
}

// GetArtistByMusicBrainzID returns the Artist carrying the given external
// id, or tesserr.NotFound if none exists.
func (s *Store) GetArtistByMusicBrainzID(mbid string) (model.Artist, error) {
	var row artistRow
	err := s.db.Where("music_brainz_id = ?", mbid).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Artist{}, tesserr.NotFound("artist", mbid)
	}
	if err != nil {
		return model.Artist{}, tesserr.Database("get artist by external id", err)
	}
	return row.toModel()
}

// UpsertExpression inserts e or replaces the row sharing its primary
// identity, rewriting the performer association set atomically in the
// same transaction (spec §4.1 "Associations").
func (s *Store) UpsertExpression(e model.Expression) error {
	row := toExpressionRow(e)
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if err := tx.Where("expression_id = ?", row.ID).Delete(&expressionPerformerRow{}).Error; err != nil {
			return err
		}
		for _, pid := range e.PerformerIDs {
			link := expressionPerformerRow{ExpressionID: row.ID, ArtistID: pid.String()}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetExpressionByID returns the Expression with the given id, with its
// performer set populated.
func (s *Store) GetExpressionByID(id model.ExpressionID) (model.Expression, error) {
	var row expressionRow
	err := s.db.Where("id = ?", id.String()).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Expression{}, tesserr.NotFound("expression", id.String())
	}
	if err != nil {
		return model.Expression{}, tesserr.Database("get expression by id", err)
	}
	performers, err := s.performerIDsFor([]string{row.ID})
	if err != nil {
		return model.Expression{}, err
	}
	return row.toModel(performers[row.ID])
}

// GetExpressionByMusicBrainzID returns the Expression carrying the given
// external id, with its performer set populated.
func (s *Store) GetExpressionByMusicBrainzID(mbid string) (model.Expression, error) {
	var row expressionRow
	err := s.db.Where("music_brainz_id = ?", mbid).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Expression{}, tesserr.NotFound("expression", mbid)
	}
	if err != nil {
		return model.Expression{}, tesserr.Database("get expression by external id", err)
	}

	performers, err := s.performerIDsFor([]string{row.ID})
	if err != nil {
		return model.Expression{}, err
	}
	return row.toModel(performers[row.ID])
}

// ListExpressions returns every Expression in the catalog, with performer
// sets fetched in a single grouped query (spec §4.1 "N+1 avoidance").
func (s *Store) ListExpressions() ([]model.Expression, error) {
	var rows []expressionRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list expressions", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	performers, err := s.performerIDsFor(ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.Expression, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel(performers[r.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// performerIDsFor fetches every expression_performers row for the given
// expression ids in one query and groups the results by expression id.
func (s *Store) performerIDsFor(expressionIDs []string) (map[string][]model.ArtistID, error) {
	if len(expressionIDs) == 0 {
		return map[string][]model.ArtistID{}, nil
	}
	var links []expressionPerformerRow
	if err := s.db.Where("expression_id IN ?", expressionIDs).Find(&links).Error; err != nil {
		return nil, tesserr.Database("list expression performers", err)
	}

	grouped := make(map[string][]model.ArtistID, len(expressionIDs))
	for _, link := range links {
		aid, err := parseArtistID(link.ArtistID)
		if err != nil {
			return nil, err
		}
		grouped[link.ExpressionID] = append(grouped[link.ExpressionID], aid)
	}
	return grouped, nil
}

// UpsertManifestation inserts m or replaces the row sharing its primary
// identity.
func (s *Store) UpsertManifestation(m model.Manifestation) error {
	row := toManifestationRow(m)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("upsert manifestation", err)
	}
	return nil
}

// GetManifestationByID returns the Manifestation with the given id.
func (s *Store) GetManifestationByID(id model.ManifestationID) (model.Manifestation, error) {
	var row manifestationRow
	err := s.db.Where("id = ?", id.String()).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Manifestation{}, tesserr.NotFound("manifestation", id.String())
	}
	if err != nil {
		return model.Manifestation{}, tesserr.Database("get manifestation by id", err)
	}
	return row.toModel()
}

// GetManifestationByMusicBrainzID returns the Manifestation carrying the
// given external id.
func (s *Store) GetManifestationByMusicBrainzID(mbid string) (model.Manifestation, error) {
	var row manifestationRow
	err := s.db.Where("music_brainz_id = ?", mbid).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Manifestation{}, tesserr.NotFound("manifestation", mbid)
	}
	if err != nil {
		return model.Manifestation{}, tesserr.Database("get manifestation by external id", err)
	}
	return row.toModel()
}

// UpsertItem inserts it, or, when a row with the same path already
// exists, overwrites that row's columns with it.
func (s *Store) UpsertItem(it model.Item) error {
	row := toItemRow(it)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return tesserr.Database("upsert item", err)
	}
	return nil
}

// GetItemByID returns the Item with the given id, or tesserr.NotFound.
func (s *Store) GetItemByID(id model.ItemID) (model.Item, error) {
	var row itemRow
	err := s.db.Where("id = ?", id.String()).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Item{}, tesserr.NotFound("item", id.String())
	}
	if err != nil {
		return model.Item{}, tesserr.Database("get item by id", err)
	}
	return row.toModel()
}

// GetItemByPath returns the Item at path, or tesserr.NotFound.
func (s *Store) GetItemByPath(path string) (model.Item, error) {
	var row itemRow
	err := s.db.Where("path = ?", path).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return model.Item{}, tesserr.NotFound("item", path)
	}
	if err != nil {
		return model.Item{}, tesserr.Database("get item by path", err)
	}
	return row.toModel()
}

// ListItems returns every Item in the catalog.
func (s *Store) ListItems() ([]model.Item, error) {
	return s.listItemsWhere(s.db)
}

// ListUnidentifiedItems returns every Item with no Expression linked.
func (s *Store) ListUnidentifiedItems() ([]model.Item, error) {
	return s.listItemsWhere(s.db.Where("expression_id = '' OR expression_id IS NULL"))
}

// ListIdentifiedItems returns every Item linked to an Expression.
func (s *Store) ListIdentifiedItems() ([]model.Item, error) {
	return s.listItemsWhere(s.db.Where("expression_id != '' AND expression_id IS NOT NULL"))
}

// ListItemsWithoutFingerprint returns every Item lacking a fingerprint.
func (s *Store) ListItemsWithoutFingerprint() ([]model.Item, error) {
	return s.listItemsWhere(s.db.Where("fingerprint = '' OR fingerprint IS NULL"))
}

func (s *Store) listItemsWhere(q *gorm.DB) ([]model.Item, error) {
	var rows []itemRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, tesserr.Database("list items", err)
	}
	out := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}
