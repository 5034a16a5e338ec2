package event

import (
	"time"

	"github.com/phamducminh/rootline/internal/revision"
)

// Event is a dated occurrence (birth, marriage, census entry, ...) that
// people participate in with named roles.
type Event struct {
	ID           int64         `json:"id"`
	AccountID    int64         `json:"-"`
	EventType    string        `json:"event_type"`
	EventDate    *string       `json:"event_date"`
	Place        *string       `json:"place"`
	Description  *string       `json:"description"`
	CreatedByID  *int64        `json:"created_by_id"`
	Participants []Participant `json:"participants,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	DeletedAt    *time.Time    `json:"-"` // soft-delete tracker
}

// Participant links a person to an event with a role ("bride", "witness").
type Participant struct {
	PersonID int64  `json:"person_id"`
	Role     string `json:"role"`
}

// Snapshot projects the ledgered fields. Participants are link rows, not
// event fields; their changes are visible through the event's updated rows.
func (e *Event) Snapshot() revision.Fields {
	return revision.Fields{
		FieldEventType:   e.EventType,
		FieldEventDate:   deref(e.EventDate),
		FieldPlace:       deref(e.Place),
		FieldDescription: deref(e.Description),
	}
}

// Patch is a partial update of event fields.
type Patch struct {
	EventType   *string `json:"event_type"`
	EventDate   *string `json:"event_date"`
	Place       *string `json:"place"`
	Description *string `json:"description"`
}

// Apply folds the patch into e.
func (patch Patch) Apply(e *Event) {
	if patch.EventType != nil {
		e.EventType = *patch.EventType
	}
	e.EventDate = applyNullable(e.EventDate, patch.EventDate)
	e.Place = applyNullable(e.Place, patch.Place)
	e.Description = applyNullable(e.Description, patch.Description)
}

// Filter holds the parameters for an event search.
type Filter struct {
	PersonID   int64    // participant
	EventTypes []string // any-of match
}

// Global field names for validation
const (
	FieldEventType   = "event_type"
	FieldEventDate   = "event_date"
	FieldPlace       = "place"
	FieldDescription = "description"
	FieldPersonID    = "person_id"
	FieldRole        = "role"
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
