// Package revision implements the append-only revision ledger.
//
// Every committed mutation of a record appends exactly one row describing the
// change as structured before/after projections of the changed fields. Ledger
// rows are never updated or deleted, even when the record they describe is
// hard-purged: they are the audit evidence.
package revision

import (
	"time"

	"github.com/phamducminh/rootline/internal/core/entity"
)

// Action classifies a ledger entry.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPurge  Action = "purge"
	// Link and unlink entries record attachment mutations (media/source
	// links, event participants) against the owning record. Their payload
	// describes the attachment, not the record's own fields.
	ActionLink   Action = "link"
	ActionUnlink Action = "unlink"
)

// Fields is a projection of record fields to their JSON values.
type Fields map[string]any

// Revision is one committed mutation of one record.
//
// ID is a bigserial assigned at commit: ordering by ID gives the total commit
// order within the database, which replay relies on when timestamps collide.
type Revision struct {
	ID         int64       `json:"id"`
	AccountID  int64       `json:"-"`
	EntityType entity.Kind `json:"entity_type"`
	EntityID   int64       `json:"entity_id"`
	AuthorID   int64       `json:"author_id"`
	Action     Action      `json:"action"`
	Before     Fields      `json:"before,omitempty"`
	After      Fields      `json:"after,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Filter narrows a ledger query. Zero values mean "no constraint".
type Filter struct {
	EntityType entity.Kind
	EntityID   int64
	From       *time.Time
	To         *time.Time
}

// Global field names for validation
const (
	FieldEntityType = "entity_type"
	FieldEntityID   = "entity_id"
	FieldAt         = "at"
)
