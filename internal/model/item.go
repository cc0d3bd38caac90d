package model

import (
	"path/filepath"
	"strings"
	"time"
)

// AudioFormat is the on-disk encoding of an Item.
type AudioFormat string

const (
	FormatFLAC    AudioFormat = "flac"
	FormatMP3     AudioFormat = "mp3"
	FormatOgg     AudioFormat = "ogg"
	FormatWAV     AudioFormat = "wav"
	FormatAAC     AudioFormat = "aac"
	FormatUnknown AudioFormat = "unknown"
)

// FormatFromExtension maps a file extension (with or without the leading
// dot) to an AudioFormat. Unrecognized extensions return FormatUnknown.
func FormatFromExtension(ext string) AudioFormat {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "flac":
		return FormatFLAC
	case "mp3":
		return FormatMP3
	case "ogg", "oga":
		return FormatOgg
	case "wav":
		return FormatWAV
	case "aac", "m4a":
		return FormatAAC
	default:
		return FormatUnknown
	}
}

// KnownExtensions is the set of extensions Scan will walk into Items, per
// spec §4.4.1.
var KnownExtensions = map[string]bool{
	"flac": true,
	"mp3":  true,
	"ogg":  true,
	"oga":  true,
	"wav":  true,
	"m4a":  true,
	"aac":  true,
}

// EmbeddedTags is the snapshot of tags read directly off the file at Scan
// time (spec §3 Item).
type EmbeddedTags struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Track       int
	Disc        int
	Year        int
	Genre       string
}

// Item is a single audio file on disk.
type Item struct {
	ID               ItemID
	ExpressionID     *ExpressionID
	ManifestationID  *ManifestationID
	Path             string
	Format           AudioFormat
	Size             int64
	ModTime          time.Time
	ContentHash      string
	Fingerprint      string
	FingerprintScore *float64
	Tags             EmbeddedTags
	DurationSecs     float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ItemID satisfies workflow.Item, letting the engine schedule an Item
// directly instead of a bare id string.
func (it Item) ItemID() string { return it.ID.String() }

// NewItem returns an Item with a fresh identity for the file at path.
func NewItem(path string, format AudioFormat, size int64, modTime time.Time) Item {
	now := time.Now()
	return Item{
		ID:        NewItemID(),
		Path:      path,
		Format:    format,
		Size:      size,
		ModTime:   modTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsIdentified reports whether the Item has been linked to an Expression
// (spec §3 invariant: Item.expression-id non-null iff identified).
func (it Item) IsIdentified() bool {
	return it.ExpressionID != nil
}

// Ext returns the lowercase extension of the Item's path, without the dot.
func (it Item) Ext() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(it.Path), "."))
}
