// Package encyclopedic is the Wikidata-like source client: resolve a
// bibliographic work's external identifier to an encyclopedic entity, then
// fetch typed claims (tonality, form, catalog number, instrumentation,
// period, movement structure) off that entity.
//
// No repo in the retrieval pack ships a typed Wikidata client, so this is
// hand-rolled net/http + encoding/json against the public SPARQL and
// wbgetentities endpoints, following the request/response shape the
// teacher's online.go uses for its own hand-rolled MusicBrainz calls
// (context-aware GET, JSON decode, status mapping through the shared
// Base).
package encyclopedic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/oxur/tessitura/internal/sourceclients"
)

const (
	sparqlEndpoint = "https://query.wikidata.org/sparql"
	entityEndpoint = "https://www.wikidata.org/wiki/Special:EntityData"
	rps            = 5
)

// Claims is the typed subset of a Wikidata entity's statements that the
// harmonization engine can consume directly (spec §4.2/§4.4).
type Claims struct {
	EntityID        string
	Tonality        string   // P826 "tonality"; entity values are kept as their qid
	Form            string   // P136 "genre"/form; entity values are kept as their qid
	CatalogNumber   string   // P528 "catalog code"
	Instrumentation []string // P1303 "instrument"
	Period          string   // P2348 "time period"; entity values are kept as their qid
	MovementCount   int      // number of P527 "has part(s)" claims
}

// Client queries the encyclopedic knowledge base.
type Client struct {
	sourceclients.Base
}

// New returns a Client.
func New() *Client {
	return &Client{Base: sourceclients.NewBase("encyclopedic", rps)}
}

type sparqlResponse struct {
	Results struct {
		Bindings []struct {
			Entity struct {
				Value string `json:"value"`
			} `json:"entity"`
		} `json:"bindings"`
	} `json:"results"`
}

// ResolveWork resolves a bibliographic work ID (e.g. a MusicBrainz work
// MBID) to an encyclopedic entity ID via a SPARQL query matching on the
// external identifier statement.
func (c *Client) ResolveWork(ctx context.Context, bibliographicWorkID string) (string, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf(`SELECT ?entity WHERE { ?entity wdt:P435 "%s". } LIMIT 1`, bibliographicWorkID)
	q := url.Values{}
	q.Set("query", query)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sparqlEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", sourceclients.UserAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.MapStatus(resp.StatusCode, ""); err != nil {
		return "", err
	}

	var out sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", c.ParseError(err)
	}
	if len(out.Results.Bindings) == 0 {
		return "", nil
	}

	iri := out.Results.Bindings[0].Entity.Value
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '/' {
			return iri[i+1:], nil
		}
	}
	return iri, nil
}

type entityDataResponse struct {
	Entities map[string]struct {
		Claims map[string][]struct {
			Mainsnak struct {
				Datavalue struct {
					Value json.RawMessage `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"claims"`
	} `json:"entities"`
}

// GetClaims fetches the claims for an encyclopedic entity previously
// resolved by ResolveWork.
func (c *Client) GetClaims(ctx context.Context, entityID string) (Claims, error) {
	if err := c.Limiter.Acquire(ctx); err != nil {
		return Claims{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s.json", entityEndpoint, entityID), nil)
	if err != nil {
		return Claims{}, err
	}
	req.Header.Set("User-Agent", sourceclients.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Claims{}, err
	}
	defer resp.Body.Close()

	if err := c.MapStatus(resp.StatusCode, ""); err != nil {
		return Claims{}, err
	}

	var out entityDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Claims{}, c.ParseError(err)
	}

	entity, ok := out.Entities[entityID]
	if !ok {
		return Claims{}, nil
	}

	claims := Claims{EntityID: entityID}
	if snaks, ok := entity.Claims["P826"]; ok && len(snaks) > 0 {
		claims.Tonality = rawString(snaks[0].Mainsnak.Datavalue.Value)
	}
	if snaks, ok := entity.Claims["P136"]; ok && len(snaks) > 0 {
		claims.Form = rawString(snaks[0].Mainsnak.Datavalue.Value)
	}
	if snaks, ok := entity.Claims["P528"]; ok && len(snaks) > 0 {
		claims.CatalogNumber = rawString(snaks[0].Mainsnak.Datavalue.Value)
	}
	if snaks, ok := entity.Claims["P1303"]; ok {
		for _, s := range snaks {
			claims.Instrumentation = append(claims.Instrumentation, rawString(s.Mainsnak.Datavalue.Value))
		}
	}
	if snaks, ok := entity.Claims["P2348"]; ok && len(snaks) > 0 {
		claims.Period = rawString(snaks[0].Mainsnak.Datavalue.Value)
	}
	claims.MovementCount = len(entity.Claims["P527"])

	return claims, nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var wrapped struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.ID
	}
	return ""
}
