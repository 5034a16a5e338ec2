// Package entity defines the record kinds shared across the engine.
package entity

import (
	"strings"

	"github.com/phamducminh/rootline/internal/platform/apperr"
)

// Kind identifies a record kind in generic references and in the
// revision ledger.
type Kind string

const (
	KindPerson       Kind = "person"
	KindRelationship Kind = "relationship"
	KindEvent        Kind = "event"
	KindMedia        Kind = "media"
	KindSource       Kind = "source"
)

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPerson, KindRelationship, KindEvent, KindMedia, KindSource:
		return true
	}
	return false
}

// Label returns the kind capitalized for client-facing messages,
// e.g. "Person" rather than "person".
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[0])) + string(k[1:])
}

// Linkable reports whether media/source links may target this kind.
// Links to media or sources themselves are not allowed.
func (k Kind) Linkable() bool {
	switch k {
	case KindPerson, KindRelationship, KindEvent:
		return true
	}
	return false
}

// Ref is a typed reference to a record of any kind, used by media and
// source links. The pair is only meaningful within one account.
type Ref struct {
	Kind Kind  `json:"entity_type"`
	ID   int64 `json:"entity_id"`
}

// Validate checks the reference shape (not its existence).
func (r Ref) Validate() error {
	if !r.Kind.Valid() {
		return apperr.ValidationError("Unknown entity kind", apperr.FieldError{
			Field:   "entity_type",
			Message: "Must be one of: person, relationship, event, media, source",
		})
	}
	if !r.Kind.Linkable() {
		return apperr.ValidationError("Entity kind cannot be a link target", apperr.FieldError{
			Field:   "entity_type",
			Message: "Links may only target people, relationships, or events",
		})
	}
	if r.ID <= 0 {
		return apperr.ValidationError("Invalid entity id", apperr.FieldError{
			Field:   "entity_id",
			Message: "Must be a positive integer identifier",
		})
	}
	return nil
}
