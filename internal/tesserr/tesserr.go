// Package tesserr implements the closed error taxonomy of spec §7.
package tesserr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds propagated through the
// core.
type Kind string

const (
	KindIO              Kind = "io"
	KindDatabase        Kind = "database"
	KindSerialization   Kind = "serialization"
	KindInvalidData     Kind = "invalid_data"
	KindNotFound        Kind = "not_found"
	KindHTTP            Kind = "http"
	KindRateLimited     Kind = "rate_limited"
	KindParse           Kind = "parse"
	KindCircuitOpen     Kind = "circuit_open"
	KindStageExecution  Kind = "stage_execution"
	KindInvalidWorkflow Kind = "invalid_workflow"
)

// Transient reports whether errors of this kind are expected to clear up
// on retry (spec §7 Classification).
func (k Kind) Transient() bool {
	return k == KindHTTP || k == KindRateLimited
}

// Recoverable reports whether callers should treat the error as "no
// enrichment from this source" rather than a hard failure.
func (k Kind) Recoverable() bool {
	return k == KindNotFound
}

// Error is the concrete error type carried through the system. It always
// has a Kind and may carry kind-specific fields plus a wrapped cause.
type Error struct {
	Kind    Kind
	Path    string // io
	Entity  string // not_found
	ID      string // not_found
	Source  string // http, rate_limited, parse, circuit_open
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return fmt.Sprintf("io: %s: %s", e.Path, e.Message)
	case KindNotFound:
		return fmt.Sprintf("not found: %s %s", e.Entity, e.ID)
	case KindHTTP:
		return fmt.Sprintf("http(%s): %s", e.Source, e.Message)
	case KindRateLimited:
		return fmt.Sprintf("rate limited: %s", e.Source)
	case KindParse:
		return fmt.Sprintf("parse(%s): %s", e.Source, e.Message)
	case KindCircuitOpen:
		return fmt.Sprintf("circuit open: %s", e.Source)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err, or an error it wraps, is an *Error of the given
// kind, e.g. Is(err, tesserr.KindNotFound).
func Is(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

func IO(path string, cause error) error {
	return &Error{Kind: KindIO, Path: path, Message: causeMsg(cause), Cause: cause}
}

func Database(message string, cause error) error {
	return &Error{Kind: KindDatabase, Message: message, Cause: cause}
}

func Serialization(message string, cause error) error {
	return &Error{Kind: KindSerialization, Message: message, Cause: cause}
}

func InvalidData(description string) error {
	return &Error{Kind: KindInvalidData, Message: description}
}

func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func HTTP(source, message string) error {
	return &Error{Kind: KindHTTP, Source: source, Message: message}
}

func RateLimited(source string) error {
	return &Error{Kind: KindRateLimited, Source: source}
}

func Parse(source, message string) error {
	return &Error{Kind: KindParse, Source: source, Message: message}
}

func CircuitOpen(source string) error {
	return &Error{Kind: KindCircuitOpen, Source: source}
}

func StageExecution(message string, cause error) error {
	return &Error{Kind: KindStageExecution, Message: message, Cause: cause}
}

func InvalidWorkflow(message string) error {
	return &Error{Kind: KindInvalidWorkflow, Message: message}
}

func causeMsg(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}
