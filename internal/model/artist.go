package model

import "time"

// ArtistRole is a role an Artist may hold against an Expression.
type ArtistRole string

const (
	RoleComposer  ArtistRole = "composer"
	RolePerformer ArtistRole = "performer"
	RoleConductor ArtistRole = "conductor"
	RoleEnsemble  ArtistRole = "ensemble"
	RoleProducer  ArtistRole = "producer"
	RoleOther     ArtistRole = "other"
)

// Artist is a person or ensemble credited on a Work or Expression.
type Artist struct {
	ID            ArtistID
	Name          string
	SortName      string
	MusicBrainzID string
	Roles         []ArtistRole
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewArtist returns an Artist with a fresh identity and the given name.
func NewArtist(name string) Artist {
	now := time.Now()
	return Artist{
		ID:        NewArtistID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole reports whether the artist already carries role.
func (a Artist) HasRole(role ArtistRole) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
