// Package sourceclients holds the cross-cutting pieces shared by every
// external-provider client (spec §4.2): a 30s timeout, a project user
// agent, a per-client rate limiter, and a shared error-taxonomy mapping.
package sourceclients

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oxur/tessitura/internal/sourceclients/ratelimit"
	"github.com/oxur/tessitura/internal/tesserr"
)

// UserAgent is advertised by every source client (spec §4.2).
const UserAgent = "tessitura/0.1 (+https://github.com/oxur/tessitura)"

// Timeout is the shared per-request timeout (spec §4.2).
const Timeout = 30 * time.Second

// Base is embedded by each concrete client; it owns the rate limiter and
// the underlying *http.Client.
type Base struct {
	Name    string // the source name used in error messages ("acoustid", etc.)
	HTTP    *http.Client
	Limiter *ratelimit.Limiter
}

// NewBase returns a Base with a fresh *http.Client bound to Timeout and a
// rate limiter enforcing rps requests/second.
func NewBase(name string, rps float64) Base {
	return Base{
		Name:    name,
		HTTP:    &http.Client{Timeout: Timeout},
		Limiter: ratelimit.New(rps),
	}
}

// MapStatus maps an HTTP status code to the shared error taxonomy (spec
// §4.2/§7): 429 -> rate-limited, 404 -> not-found, everything else that
// isn't 2xx -> http{source, message}. Returns nil for 2xx.
func (b Base) MapStatus(status int, body string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return tesserr.RateLimited(b.Name)
	case status == http.StatusNotFound:
		return tesserr.NotFound(b.Name, "")
	default:
		return tesserr.HTTP(b.Name, fmt.Sprintf("status %d: %s", status, body))
	}
}

// ParseError wraps a JSON decode failure as a parse error tagged with this
// client's source name.
func (b Base) ParseError(cause error) error {
	return tesserr.Parse(b.Name, cause.Error())
}
