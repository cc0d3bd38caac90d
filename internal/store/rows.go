package store

import (
	"time"

	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/provenance"
)

// workRow is the gorm-mapped persistence row for a model.Work. Row
// structs are kept separate from the domain model (internal/model) so the
// model package stays free of ORM tags.
type workRow struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	Composer      string
	MusicBrainzID string `gorm:"uniqueIndex:idx_work_mbid,where:music_brainz_id != ''"`
	CatalogNumber string
	Key           string
	ComposedYear  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (workRow) TableName() string { return "works" }

func toWorkRow(w model.Work) workRow {
	return workRow{
		ID:            w.ID.String(),
		Title:         w.Title,
		Composer:      w.Composer,
		MusicBrainzID: w.MusicBrainzID,
		CatalogNumber: w.CatalogNumber,
		Key:           w.Key,
		ComposedYear:  w.ComposedYear,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func (r workRow) toModel() (model.Work, error) {
	id, err := parseWorkID(r.ID)
	if err != nil {
		return model.Work{}, err
	}
	return model.Work{
		ID:            id,
		Title:         r.Title,
		Composer:      r.Composer,
		MusicBrainzID: r.MusicBrainzID,
		CatalogNumber: r.CatalogNumber,
		Key:           r.Key,
		ComposedYear:  r.ComposedYear,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// expressionRow is the persistence row for a model.Expression. The
// conductor is a column on this row; performer associations live in a
// separate join table, rewritten wholesale on upsert per the store's
// association contract.
type expressionRow struct {
	ID            string `gorm:"primaryKey"`
	WorkID        string `gorm:"index"`
	Title         string
	MusicBrainzID string `gorm:"uniqueIndex:idx_expr_mbid,where:music_brainz_id != ''"`
	ConductorID   string
	RecordedYear  int
	DurationSecs  float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (expressionRow) TableName() string { return "expressions" }

// expressionPerformerRow is the join row linking an Expression to one of
// its performer Artists.
type expressionPerformerRow struct {
	ExpressionID string `gorm:"primaryKey"`
	ArtistID     string `gorm:"primaryKey"`
}

func (expressionPerformerRow) TableName() string { return "expression_performers" }

func toExpressionRow(e model.Expression) expressionRow {
	row := expressionRow{
		ID:            e.ID.String(),
		WorkID:        e.WorkID.String(),
		Title:         e.Title,
		MusicBrainzID: e.MusicBrainzID,
		RecordedYear:  e.RecordedYear,
		DurationSecs:  e.DurationSecs,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.ConductorID != nil {
		row.ConductorID = e.ConductorID.String()
	}
	return row
}

func (r expressionRow) toModel(performerIDs []model.ArtistID) (model.Expression, error) {
	id, err := parseExpressionID(r.ID)
	if err != nil {
		return model.Expression{}, err
	}
	workID, err := parseWorkID(r.WorkID)
	if err != nil {
		return model.Expression{}, err
	}
	e := model.Expression{
		ID:            id,
		WorkID:        workID,
		Title:         r.Title,
		MusicBrainzID: r.MusicBrainzID,
		PerformerIDs:  performerIDs,
		RecordedYear:  r.RecordedYear,
		DurationSecs:  r.DurationSecs,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ConductorID != "" {
		cid, err := parseArtistID(r.ConductorID)
		if err != nil {
			return model.Expression{}, err
		}
		e.ConductorID = &cid
	}
	return e, nil
}

// manifestationRow is the persistence row for a model.Manifestation.
type manifestationRow struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	MusicBrainzID string `gorm:"uniqueIndex:idx_manifestation_mbid,where:music_brainz_id != ''"`
	Label         string
	CatalogNumber string
	ReleaseYear   int
	TrackCount    int
	DiscCount     int
	Format        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (manifestationRow) TableName() string { return "manifestations" }

func toManifestationRow(m model.Manifestation) manifestationRow {
	return manifestationRow{
		ID:            m.ID.String(),
		Title:         m.Title,
		MusicBrainzID: m.MusicBrainzID,
		Label:         m.Label,
		CatalogNumber: m.CatalogNumber,
		ReleaseYear:   m.ReleaseYear,
		TrackCount:    m.TrackCount,
		DiscCount:     m.DiscCount,
		Format:        m.Format,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r manifestationRow) toModel() (model.Manifestation, error) {
	id, err := parseManifestationID(r.ID)
	if err != nil {
		return model.Manifestation{}, err
	}
	return model.Manifestation{
		ID:            id,
		Title:         r.Title,
		MusicBrainzID: r.MusicBrainzID,
		Label:         r.Label,
		CatalogNumber: r.CatalogNumber,
		ReleaseYear:   r.ReleaseYear,
		TrackCount:    r.TrackCount,
		DiscCount:     r.DiscCount,
		Format:        r.Format,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// artistRow is the persistence row for a model.Artist. Roles are a
// comma-joined string rather than a join table: the role set is closed
// and small (spec §3), so a normalized table buys nothing.
type artistRow struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	SortName      string
	MusicBrainzID string `gorm:"uniqueIndex:idx_artist_mbid,where:music_brainz_id != ''"`
	Roles         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (artistRow) TableName() string { return "artists" }

func toArtistRow(a model.Artist) artistRow {
	return artistRow{
		ID:            a.ID.String(),
		Name:          a.Name,
		SortName:      a.SortName,
		MusicBrainzID: a.MusicBrainzID,
		Roles:         joinRoles(a.Roles),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (r artistRow) toModel() (model.Artist, error) {
	id, err := parseArtistID(r.ID)
	if err != nil {
		return model.Artist{}, err
	}
	return model.Artist{
		ID:            id,
		Name:          r.Name,
		SortName:      r.SortName,
		MusicBrainzID: r.MusicBrainzID,
		Roles:         splitRoles(r.Roles),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func joinRoles(roles []model.ArtistRole) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ","
		}
		out += string(r)
	}
	return out
}

func splitRoles(joined string) []model.ArtistRole {
	if joined == "" {
		return nil
	}
	var roles []model.ArtistRole
	start := 0
	for i := 0; i <= len(joined); i++ {
		if i == len(joined) || joined[i] == ',' {
			if i > start {
				roles = append(roles, model.ArtistRole(joined[start:i]))
			}
			start = i + 1
		}
	}
	return roles
}

// itemRow is the persistence row for a model.Item.
type itemRow struct {
	ID               string `gorm:"primaryKey"`
	ExpressionID     string `gorm:"index"`
	ManifestationID  string `gorm:"index"`
	Path             string `gorm:"uniqueIndex"`
	Format           string
	Size             int64
	ModTime          time.Time
	ContentHash      string
	Fingerprint      string
	FingerprintScore *float64
	TagTitle         string
	TagArtist        string
	TagAlbum         string
	TagAlbumArtist   string
	TagTrack         int
	TagDisc          int
	TagYear          int
	TagGenre         string
	DurationSecs     float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (itemRow) TableName() string { return "items" }

func toItemRow(it model.Item) itemRow {
	row := itemRow{
		ID:               it.ID.String(),
		Path:             it.Path,
		Format:           string(it.Format),
		Size:             it.Size,
		ModTime:          it.ModTime,
		ContentHash:      it.ContentHash,
		Fingerprint:      it.Fingerprint,
		FingerprintScore: it.FingerprintScore,
		TagTitle:         it.Tags.Title,
		TagArtist:        it.Tags.Artist,
		TagAlbum:         it.Tags.Album,
		TagAlbumArtist:   it.Tags.AlbumArtist,
		TagTrack:         it.Tags.Track,
		TagDisc:          it.Tags.Disc,
		TagYear:          it.Tags.Year,
		TagGenre:         it.Tags.Genre,
		DurationSecs:     it.DurationSecs,
		CreatedAt:        it.CreatedAt,
		UpdatedAt:        it.UpdatedAt,
	}
	if it.ExpressionID != nil {
		row.ExpressionID = it.ExpressionID.String()
	}
	if it.ManifestationID != nil {
		row.ManifestationID = it.ManifestationID.String()
	}
	return row
}

func (r itemRow) toModel() (model.Item, error) {
	id, err := parseItemID(r.ID)
	if err != nil {
		return model.Item{}, err
	}
	it := model.Item{
		ID:               id,
		Path:             r.Path,
		Format:           model.AudioFormat(r.Format),
		Size:             r.Size,
		ModTime:          r.ModTime,
		ContentHash:      r.ContentHash,
		Fingerprint:      r.Fingerprint,
		FingerprintScore: r.FingerprintScore,
		Tags: model.EmbeddedTags{
			Title:       r.TagTitle,
			Artist:      r.TagArtist,
			Album:       r.TagAlbum,
			AlbumArtist: r.TagAlbumArtist,
			Track:       r.TagTrack,
			Disc:        r.TagDisc,
			Year:        r.TagYear,
			Genre:       r.TagGenre,
		},
		DurationSecs: r.DurationSecs,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ExpressionID != "" {
		eid, err := parseExpressionID(r.ExpressionID)
		if err != nil {
			return model.Item{}, err
		}
		it.ExpressionID = &eid
	}
	if r.ManifestationID != "" {
		mid, err := parseManifestationID(r.ManifestationID)
		if err != nil {
			return model.Item{}, err
		}
		it.ManifestationID = &mid
	}
	return it, nil
}

// assertionRow is the persistence row for a provenance.Assertion. Value is
// stored as its JSON-serialized form so it can carry strings, numbers, or
// objects such as the folksonomy `{value, scope}` tag.
type assertionRow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	EntityID   string `gorm:"index:idx_assertion_entity"`
	Field      string `gorm:"index:idx_assertion_entity"`
	ValueJSON  string
	Source     string
	Confidence *float64
	FetchedAt  time.Time `gorm:"index"`
}

func (assertionRow) TableName() string { return "assertions" }

// vocabularyTermRow is the persistence row for a single controlled
// vocabulary term loaded from the vocabulary snapshot (spec §6).
type vocabularyTermRow struct {
	URI        string `gorm:"primaryKey"`
	Label      string `gorm:"index"`
	BroaderURI string `gorm:"index"`
	ScopeNote  string
}

func (vocabularyTermRow) TableName() string { return "vocabulary_terms" }

func parseWorkID(s string) (model.WorkID, error) {
	u, err := parseUUID(s)
	return model.WorkID(u), err
}

func parseExpressionID(s string) (model.ExpressionID, error) {
	u, err := parseUUID(s)
	return model.ExpressionID(u), err
}

func parseManifestationID(s string) (model.ManifestationID, error) {
	u, err := parseUUID(s)
	return model.ManifestationID(u), err
}

func parseItemID(s string) (model.ItemID, error) {
	u, err := parseUUID(s)
	return model.ItemID(u), err
}

func parseArtistID(s string) (model.ArtistID, error) {
	u, err := parseUUID(s)
	return model.ArtistID(u), err
}

// VocabularyTerm is the store's public view of a vocabularyTermRow.
type VocabularyTerm struct {
	URI        string
	Label      string
	BroaderURI string
	ScopeNote  string
}

func toVocabularyRow(t VocabularyTerm) vocabularyTermRow {
	return vocabularyTermRow{URI: t.URI, Label: t.Label, BroaderURI: t.BroaderURI, ScopeNote: t.ScopeNote}
}

func (r vocabularyTermRow) toPublic() VocabularyTerm {
	return VocabularyTerm{URI: r.URI, Label: r.Label, BroaderURI: r.BroaderURI, ScopeNote: r.ScopeNote}
}

func toAssertionRow(a provenance.Assertion, valueJSON string) assertionRow {
	return assertionRow{
		EntityID:   a.EntityID,
		Field:      a.Field,
		ValueJSON:  valueJSON,
		Source:     string(a.Source),
		Confidence: a.Confidence,
		FetchedAt:  a.FetchedAt,
	}
}
