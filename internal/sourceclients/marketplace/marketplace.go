// Package marketplace is the Discogs-like source client: release lookup
// and catalog-number search, the only source in spec §4.2 whose rate
// limit depends on whether the client is authenticated (1 rps
// unauthenticated, 4 rps with a token).
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/oxur/tessitura/internal/sourceclients"
)

const (
	apiEndpoint   = "https://api.discogs.com"
	rpsAuthed     = 4
	rpsUnauthed   = 1
)

// Format is a release's physical or digital format, with free-form
// descriptive qualifiers (e.g. "180g", "Gatefold").
type Format struct {
	Name         string
	Descriptions []string
}

// ExtraArtist is a non-primary credit on a release (producer, engineer,
// liner notes, etc).
type ExtraArtist struct {
	Name string
	Role string
}

// Release is a marketplace listing for a physical or digital release.
type Release struct {
	ID           int
	Title        string
	Year         int
	Label        string
	Catalog      string
	Formats      []Format
	Genres       []string
	Styles       []string
	ExtraArtists []ExtraArtist
	Country      string
}

// Client queries the marketplace catalog.
type Client struct {
	sourceclients.Base
	token string
}

// New returns a Client. If token is empty, requests are unauthenticated
// and rate-limited to 1 rps; otherwise 4 rps (spec §4.2).
func New(token string) *Client {
	rps := float64(rpsUnauthed)
	if token != "" {
		rps = float64(rpsAuthed)
	}
	return &Client{
		Base:  sourceclients.NewBase("marketplace", rps),
		token: token,
	}
}

type searchResponse struct {
	Results []struct {
		ID          int      `json:"id"`
		Title       string   `json:"title"`
		Year        string   `json:"year"`
		Label       []string `json:"label"`
		CatNo       string   `json:"catno"`
		Format      []string `json:"format"`
		Country     string   `json:"country"`
	} `json:"results"`
}

// SearchRelease returns candidate releases matching a catalog number.
func (c *Client) SearchRelease(ctx context.Context, catalogNumber string) ([]Release, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("catno", catalogNumber)
	q.Set("type", "release")

	req, err := c.newRequest(ctx, http.MethodGet, "/database/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.MapStatus(resp.StatusCode, ""); err != nil {
		return nil, err
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, c.ParseError(err)
	}

	releases := make([]Release, 0, len(out.Results))
	for _, r := range out.Results {
		formats := make([]Format, 0, len(r.Format))
		for _, f := range r.Format {
			formats = append(formats, Format{Name: f})
		}
		releases = append(releases, Release{
			ID:      r.ID,
			Title:   r.Title,
			Label:   firstOrEmpty(r.Label),
			Catalog: r.CatNo,
			Formats: formats,
			Country: r.Country,
		})
	}
	return releases, nil
}

type releaseResponse struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Country string   `json:"country"`
	Genres  []string `json:"genres"`
	Styles  []string `json:"styles"`
	Labels  []struct {
		Name  string `json:"name"`
		CatNo string `json:"catno"`
	} `json:"labels"`
	Formats []struct {
		Name         string   `json:"name"`
		Descriptions []string `json:"descriptions"`
	} `json:"formats"`
	ExtraArtists []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"extraartists"`
}

// GetRelease fetches a release by marketplace ID.
func (c *Client) GetRelease(ctx context.Context, id int) (Release, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return Release{}, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/releases/%d", id))
	if err != nil {
		return Release{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	if err := c.MapStatus(resp.StatusCode, ""); err != nil {
		return Release{}, err
	}

	var out releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Release{}, c.ParseError(err)
	}

	rel := Release{ID: out.ID, Title: out.Title, Year: out.Year, Country: out.Country, Genres: out.Genres, Styles: out.Styles}
	if len(out.Labels) > 0 {
		rel.Label = out.Labels[0].Name
		rel.Catalog = out.Labels[0].CatNo
	}
	for _, f := range out.Formats {
		rel.Formats = append(rel.Formats, Format{Name: f.Name, Descriptions: f.Descriptions})
	}
	for _, a := range out.ExtraArtists {
		rel.ExtraArtists = append(rel.ExtraArtists, ExtraArtist{Name: a.Name, Role: a.Role})
	}
	return rel, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, apiEndpoint+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", sourceclients.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}
	return req, nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
