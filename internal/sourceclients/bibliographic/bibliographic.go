// Package bibliographic is the MusicBrainz-like source client: recording,
// work, and release lookups plus fallback search.
//
// Modeled on the teacher's online.go (queryMusicBrainz), which already
// depends on github.com/michiwend/gomusicbrainz; here the single
// hand-rolled lookup is generalized into the full typed surface spec §4.2
// requires (get-recording, get-work, get-release, search-recording) and
// wrapped in the shared rate limiter / error taxonomy.
package bibliographic

import (
	"context"
	"fmt"

	"github.com/michiwend/gomusicbrainz"

	"github.com/oxur/tessitura/internal/sourceclients"
	"github.com/oxur/tessitura/internal/tesserr"
)

const rps = 1

// ArtistCredit names a performer credited on a Recording or Work.
type ArtistCredit struct {
	ID   string
	Name string
}

// Relation is an entry in a recording's or work's relation list (spec
// §4.2: recordings carry a "performance" relation to a Work; works carry
// a "composer" relation and a free-form attribute list).
type Relation struct {
	Type       string
	TargetID   string
	Attributes []string
}

// Recording is a specific performance, the bibliographic client's view of
// a MusicBrainz recording.
type Recording struct {
	ID            string
	Title         string
	ArtistCredit  []ArtistCredit
	Releases      []ReleaseSummary
	Relations     []Relation
	DurationMS    int
}

// ReleaseSummary is the embedded release summary carried on a Recording.
type ReleaseSummary struct {
	ID    string
	Title string
}

// Work is a composition, the bibliographic client's view of a MusicBrainz
// work.
type Work struct {
	ID         string
	Title      string
	Relations  []Relation
	Attributes []string
}

// Release is an album/CD/LP.
type Release struct {
	ID     string
	Title  string
	Date   string
	Label  string
	LabelID string
	Catalog string
}

// Client queries the MusicBrainz-like bibliographic database.
type Client struct {
	sourceclients.Base
	ws *gomusicbrainz.WS2Client
}

// New returns a Client identifying itself with the given application name,
// version, and contact URL (required by the MusicBrainz API etiquette).
func New(endpoint, appName, version, contact string) (*Client, error) {
	ws, err := gomusicbrainz.NewWS2Client(endpoint, appName, version, contact)
	if err != nil {
		return nil, tesserr.HTTP("musicbrainz", err.Error())
	}
	return &Client{
		Base: sourceclients.NewBase("musicbrainz", rps),
		ws:   ws,
	}, nil
}

// GetRecording fetches a recording by MusicBrainz ID.
func (c *Client) GetRecording(ctx context.Context, id string) (Recording, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return Recording{}, err
	}
	mb, err := c.ws.LookupRecording(gomusicbrainz.MBID(id), "artist-credits", "releases", "work-rels")
	if err != nil {
		return Recording{}, tesserr.HTTP(c.Name, err.Error())
	}
	return fromMBRecording(mb), nil
}

// GetWork fetches a work by MusicBrainz ID.
func (c *Client) GetWork(ctx context.Context, id string) (Work, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return Work{}, err
	}
	mb, err := c.ws.LookupWork(gomusicbrainz.MBID(id), "artist-rels", "attributes")
	if err != nil {
		return Work{}, tesserr.HTTP(c.Name, err.Error())
	}
	return fromMBWork(mb), nil
}

// GetRelease fetches a release by MusicBrainz ID.
func (c *Client) GetRelease(ctx context.Context, id string) (Release, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return Release{}, err
	}
	mb, err := c.ws.LookupRelease(gomusicbrainz.MBID(id), "labels")
	if err != nil {
		return Release{}, tesserr.HTTP(c.Name, err.Error())
	}
	return fromMBRelease(mb), nil
}

// SearchRecording returns up to 5 candidate recordings matching the given
// artist/title/album (spec §4.2).
func (c *Client) SearchRecording(ctx context.Context, artist, title, album string) ([]Recording, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`recording:"%s" AND artist:"%s"`, title, artist)
	if album != "" {
		query += fmt.Sprintf(` AND release:"%s"`, album)
	}

	result, err := c.ws.SearchRecording(query, 5, 0)
	if err != nil {
		return nil, tesserr.HTTP(c.Name, err.Error())
	}

	recordings := make([]Recording, 0, len(result.Recordings))
	for _, rec := range result.Recordings {
		recordings = append(recordings, fromMBRecording(rec))
	}
	return recordings, nil
}

func fromMBRecording(mb *gomusicbrainz.Recording) Recording {
	rec := Recording{
		ID:    string(mb.ID),
		Title: mb.Title,
	}
	for _, nc := range mb.ArtistCredit.NameCredits {
		rec.ArtistCredit = append(rec.ArtistCredit, ArtistCredit{
			ID:   string(nc.Artist.ID),
			Name: nc.Artist.Name,
		})
	}
	for _, rel := range mb.Releases {
		rec.Releases = append(rec.Releases, ReleaseSummary{ID: string(rel.ID), Title: rel.Title})
	}
	for _, rl := range mb.Relations {
		rec.Relations = append(rec.Relations, Relation{Type: rl.Type, TargetID: string(rl.Work.ID)})
	}
	return rec
}

func fromMBWork(mb *gomusicbrainz.Work) Work {
	w := Work{ID: string(mb.ID), Title: mb.Title}
	for _, rl := range mb.Relations {
		w.Relations = append(w.Relations, Relation{Type: rl.Type, TargetID: string(rl.Artist.ID)})
	}
	for _, attr := range mb.Attributes {
		w.Attributes = append(w.Attributes, attr)
	}
	return w
}

func fromMBRelease(mb *gomusicbrainz.Release) Release {
	r := Release{ID: string(mb.ID), Title: mb.Title}
	if !mb.Date.Time.IsZero() {
		// mb.Date is a gomusicbrainz.BrainzTime; the teacher (online.go:149)
		// reaches through its embedded time.Time via .Time rather than any
		// String() method, so we do the same and format an ISO date prefix
		// ourselves (parseYearPrefix only needs the leading 4 digits).
		r.Date = mb.Date.Time.Format("2006-01-02")
	}
	if len(mb.LabelInfos) > 0 {
		r.Label = mb.LabelInfos[0].Label.Name
		r.LabelID = string(mb.LabelInfos[0].Label.ID)
		r.Catalog = mb.LabelInfos[0].CatalogNumber
	}
	return r
}
