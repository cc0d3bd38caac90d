// Package folksonomy is the Last.fm-like source client: crowd-sourced tags
// with popularity counts, for a (artist, track) pair or for an artist
// alone (spec §4.2).
//
// Hand-rolled net/http + encoding/json, following the same shape as
// the encyclopedic client: no pack repo carries a typed Last.fm client.
package folksonomy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/oxur/tessitura/internal/sourceclients"
)

const (
	apiEndpoint = "https://ws.audioscrobbler.com/2.0/"
	rps         = 5
)

// Tag is a single crowd-sourced label with its popularity count.
type Tag struct {
	Name  string
	Count int
}

// Client queries the folksonomy tagging service.
type Client struct {
	sourceclients.Base
	apiKey   string
	Endpoint string // overridable for tests; defaults to apiEndpoint
}

// New returns a Client authenticated with apiKey.
func New(apiKey string) *Client {
	return &Client{
		Base:     sourceclients.NewBase("folksonomy", rps),
		apiKey:   apiKey,
		Endpoint: apiEndpoint,
	}
}

type tagList struct {
	Tag []struct {
		Name  string `json:"name"`
		Count intOrString `json:"count"`
	} `json:"tag"`
}

type intOrString int

func (i *intOrString) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*i = intOrString(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var n2 int
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
		n2 = n2*10 + int(r-'0')
	}
	*i = intOrString(n2)
	return nil
}

type trackTopTagsResponse struct {
	TopTags tagList `json:"toptags"`
}

type artistTopTagsResponse struct {
	TopTags tagList `json:"toptags"`
}

// TrackTopTags returns the top crowd-sourced tags for a (artist, track)
// pair, ordered by descending popularity.
func (c *Client) TrackTopTags(ctx context.Context, artist, track string) ([]Tag, error) {
	return c.topTags(ctx, "track.getTopTags", url.Values{
		"artist": {artist},
		"track":  {track},
	}, func(raw []byte) (tagList, error) {
		var out trackTopTagsResponse
		err := json.Unmarshal(raw, &out)
		return out.TopTags, err
	})
}

// ArtistTopTags returns the top crowd-sourced tags for an artist alone.
func (c *Client) ArtistTopTags(ctx context.Context, artist string) ([]Tag, error) {
	return c.topTags(ctx, "artist.getTopTags", url.Values{
		"artist": {artist},
	}, func(raw []byte) (tagList, error) {
		var out artistTopTagsResponse
		err := json.Unmarshal(raw, &out)
		return out.TopTags, err
	})
}

func (c *Client) topTags(ctx context.Context, method string, params url.Values, decode func([]byte) (tagList, error)) ([]Tag, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	q.Set("autocorrect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", sourceclients.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.MapStatus(resp.StatusCode, ""); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, c.ParseError(err)
	}
	list, err := decode(raw)
	if err != nil {
		return nil, c.ParseError(err)
	}

	tags := make([]Tag, 0, len(list.Tag))
	for _, t := range list.Tag {
		tags = append(tags, Tag{Name: t.Name, Count: int(t.Count)})
	}
	return tags, nil
}
