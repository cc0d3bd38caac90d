// Package model defines the bibliographic (Work/Expression/Manifestation/
// Item) and artist entities that make up the catalog's spine.
package model

import "github.com/google/uuid"

// WorkID identifies a Work.
type WorkID uuid.UUID

// NewWorkID returns a new random WorkID.
func NewWorkID() WorkID { return WorkID(uuid.New()) }

// ParseWorkID parses the string form of a WorkID.
func ParseWorkID(s string) (WorkID, error) {
	u, err := uuid.Parse(s)
	return WorkID(u), err
}

func (id WorkID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether id is the zero value.
func (id WorkID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ExpressionID identifies an Expression.
type ExpressionID uuid.UUID

func NewExpressionID() ExpressionID { return ExpressionID(uuid.New()) }

// ParseExpressionID parses the string form of an ExpressionID.
func ParseExpressionID(s string) (ExpressionID, error) {
	u, err := uuid.Parse(s)
	return ExpressionID(u), err
}

func (id ExpressionID) String() string { return uuid.UUID(id).String() }

func (id ExpressionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ManifestationID identifies a Manifestation.
type ManifestationID uuid.UUID

func NewManifestationID() ManifestationID { return ManifestationID(uuid.New()) }

// ParseManifestationID parses the string form of a ManifestationID.
func ParseManifestationID(s string) (ManifestationID, error) {
	u, err := uuid.Parse(s)
	return ManifestationID(u), err
}

func (id ManifestationID) String() string { return uuid.UUID(id).String() }

func (id ManifestationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ItemID identifies an Item.
type ItemID uuid.UUID

func NewItemID() ItemID { return ItemID(uuid.New()) }

// ParseItemID parses the string form of an ItemID.
func ParseItemID(s string) (ItemID, error) {
	u, err := uuid.Parse(s)
	return ItemID(u), err
}

func (id ItemID) String() string { return uuid.UUID(id).String() }

func (id ItemID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ArtistID identifies an Artist.
type ArtistID uuid.UUID

func NewArtistID() ArtistID { return ArtistID(uuid.New()) }

// ParseArtistID parses the string form of an ArtistID.
func ParseArtistID(s string) (ArtistID, error) {
	u, err := uuid.Parse(s)
	return ArtistID(u), err
}

func (id ArtistID) String() string { return uuid.UUID(id).String() }

func (id ArtistID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
