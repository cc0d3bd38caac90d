package model

import "time"

// Manifestation is a release (album, CD, LP) containing one or more
// Expressions.
type Manifestation struct {
	ID            ManifestationID
	Title         string
	MusicBrainzID string
	Label         string
	CatalogNumber string
	ReleaseYear   int
	TrackCount    int
	DiscCount     int
	Format        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewManifestation returns a Manifestation with a fresh identity.
func NewManifestation(title string) Manifestation {
	now := time.Now()
	return Manifestation{
		ID:        NewManifestationID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
