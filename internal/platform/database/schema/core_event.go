package schema

// CoreEventTable represents the 'core.event' table
type CoreEventTable struct {
	Table       string
	ID          string
	AccountID   string
	EventType   string
	EventDate   string
	Place       string
	Description string
	CreatedByID string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreEvent is the schema definition for core.event
var CoreEvent = CoreEventTable{
	Table:       "core.event",
	ID:          "id",
	AccountID:   "accountid",
	EventType:   "eventtype",
	EventDate:   "eventdate",
	Place:       "place",
	Description: "description",
	CreatedByID: "createdbyid",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}
