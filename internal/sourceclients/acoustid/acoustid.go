// Package acoustid is the acoustic-ID source client: given a fingerprint
// and duration, return ranked recording candidates.
//
// Generalized from the teacher's bitbucket.org/ambrevar/demlo/acoustid
// subpackage (a bare `Get` function hitting http.DefaultClient) into a
// rate-limited, context-aware, typed client satisfying the shared source
// client contract (spec §4.2).
package acoustid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/oxur/tessitura/internal/sourceclients"
)

const (
	lookupURL = "https://api.acoustid.org/v2/lookup"
	rps       = 3
)

// Client queries the acoustic-ID lookup API.
type Client struct {
	sourceclients.Base
	apiKey string
}

// New returns a Client authenticated with apiKey.
func New(apiKey string) *Client {
	return &Client{
		Base:   sourceclients.NewBase("acoustid", rps),
		apiKey: apiKey,
	}
}

// Artist names a credited performer on a Recording.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Release is an album containing a Recording.
type Release struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []Artist `json:"artists"`
}

// Recording is a candidate match for the submitted fingerprint.
type Recording struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artists  []Artist  `json:"artists"`
	Releases []Release `json:"releases"`
}

// Result is one scored match.
type Result struct {
	ID         string      `json:"id"`
	Score      float64     `json:"score"`
	Recordings []Recording `json:"recordings"`
}

type lookupResponse struct {
	Status  string   `json:"status"`
	Results []Result `json:"results"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Lookup returns results ranked by descending score for the given
// fingerprint and duration.
func (c *Client) Lookup(ctx context.Context, fingerprint string, durationSecs int) ([]Result, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("client", c.apiKey)
	q.Set("meta", "recordings+releases")
	q.Set("duration", strconv.Itoa(durationSecs))
	q.Set("fingerprint", fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", sourceclients.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, c.ParseError(err)
	}
	if err := c.MapStatus(resp.StatusCode, out.Error.Message); err != nil {
		return nil, err
	}
	if out.Status == "error" {
		return nil, fmt.Errorf("acoustid: %s", out.Error.Message)
	}

	return out.Results, nil
}
