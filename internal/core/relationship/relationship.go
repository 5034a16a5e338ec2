package relationship

import (
	"time"

	"github.com/phamducminh/rootline/internal/revision"
)

// Type classifies a relationship edge.
type Type string

const (
	// TypeParent is directed: Person1 is the parent, Person2 the child.
	TypeParent Type = "parent"
	// TypeSpouse and TypeSibling are symmetric; rows store the smaller
	// person id in Person1 (canonical orientation).
	TypeSpouse  Type = "spouse"
	TypeSibling Type = "sibling"
)

// Valid reports whether t is a known relationship type.
func (t Type) Valid() bool {
	switch t {
	case TypeParent, TypeSpouse, TypeSibling:
		return true
	}
	return false
}

// Symmetric reports whether the edge has no direction.
func (t Type) Symmetric() bool {
	return t == TypeSpouse || t == TypeSibling
}

// Relationship is one edge between two people in the same account.
// The optional validity interval uses ISO YYYY-MM-DD strings; a nil bound
// is open-ended.
type Relationship struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"-"`
	Person1ID int64      `json:"person1_id"`
	Person2ID int64      `json:"person2_id"`
	Type      Type       `json:"type"`
	StartDate *string    `json:"start_date"`
	EndDate   *string    `json:"end_date"`
	Detail    *string    `json:"detail"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Snapshot projects the ledgered fields.
func (r *Relationship) Snapshot() revision.Fields {
	return revision.Fields{
		FieldPerson1ID: r.Person1ID,
		FieldPerson2ID: r.Person2ID,
		FieldType:      string(r.Type),
		FieldStartDate: deref(r.StartDate),
		FieldEndDate:   deref(r.EndDate),
		FieldDetail:    deref(r.Detail),
	}
}

// Patch is a partial update. Endpoints and type are immutable once created;
// delete and recreate to restructure the graph.
type Patch struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Detail    *string `json:"detail"`
}

// Apply folds the patch into r. An explicit empty string clears the value.
func (patch Patch) Apply(r *Relationship) {
	r.StartDate = applyNullable(r.StartDate, patch.StartDate)
	r.EndDate = applyNullable(r.EndDate, patch.EndDate)
	r.Detail = applyNullable(r.Detail, patch.Detail)
}

// Filter holds the parameters for a relationship search.
type Filter struct {
	PersonID int64 // either endpoint
	Type     Type
}

// Global field names for validation
const (
	FieldPerson1ID = "person1_id"
	FieldPerson2ID = "person2_id"
	FieldType      = "type"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldDetail    = "detail"
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
