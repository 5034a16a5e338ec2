package schema

// CoreSourceTable represents the 'core.source' table
type CoreSourceTable struct {
	Table     string
	ID        string
	AccountID string
	Title     string
	Citation  string
	URL       string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CoreSource is the schema definition for core.source
var CoreSource = CoreSourceTable{
	Table:     "core.source",
	ID:        "id",
	AccountID: "accountid",
	Title:     "title",
	Citation:  "citation",
	URL:       "url",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}
