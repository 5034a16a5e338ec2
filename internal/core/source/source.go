package source

import (
	"time"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/revision"
)

// Source is a documentary citation (church book, census page, interview)
// backing facts recorded elsewhere, attached through link rows.
type Source struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"-"`
	Title     string     `json:"title"`
	Citation  *string    `json:"citation"`
	URL       *string    `json:"url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Snapshot projects the ledgered fields.
func (s *Source) Snapshot() revision.Fields {
	return revision.Fields{
		FieldTitle:    s.Title,
		FieldCitation: deref(s.Citation),
		FieldURL:      deref(s.URL),
	}
}

// Patch is a partial update.
type Patch struct {
	Title    *string `json:"title"`
	Citation *string `json:"citation"`
	URL      *string `json:"url"`
}

// Apply folds the patch into s.
func (patch Patch) Apply(s *Source) {
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	s.Citation = applyNullable(s.Citation, patch.Citation)
	s.URL = applyNullable(s.URL, patch.URL)
}

// Link attaches a source to a person, relationship, or event.
type Link struct {
	ID       int64      `json:"id"`
	SourceID int64      `json:"source_id"`
	Target   entity.Ref `json:"target"`
}

// Filter holds the parameters for a source search.
type Filter struct {
	Query  string // title substring
	Target *entity.Ref
}

// Global field names for validation
const (
	FieldTitle    = "title"
	FieldCitation = "citation"
	FieldURL      = "url"
)

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func applyNullable(current, patched *string) *string {
	if patched == nil {
		return current
	}
	if *patched == "" {
		return nil
	}
	return patched
}
