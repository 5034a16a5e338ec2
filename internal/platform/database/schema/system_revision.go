package schema

// SystemRevisionTable represents the 'system.revision' table.
// Append-only: rows are never updated or deleted, and carry only the changed
// fields as before/after JSONB projections.
type SystemRevisionTable struct {
	Table      string
	ID         string
	AccountID  string
	EntityType string
	EntityID   string
	AuthorID   string
	Action     string
	Before     string
	After      string
	CreatedAt  string
}

// SystemRevision is the schema definition for system.revision
var SystemRevision = SystemRevisionTable{
	Table:      "system.revision",
	ID:         "id",
	AccountID:  "accountid",
	EntityType: "entitytype",
	EntityID:   "entityid",
	AuthorID:   "authorid",
	Action:     "action",
	Before:     "before",
	After:      "after",
	CreatedAt:  "createdat",
}
