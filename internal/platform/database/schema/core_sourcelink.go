package schema

// CoreSourceLinkTable represents the 'core.sourcelink' table.
// Same generic (entitytype, entityid) shape as core.medialink.
type CoreSourceLinkTable struct {
	Table      string
	ID         string
	AccountID  string
	SourceID   string
	EntityType string
	EntityID   string
	CreatedAt  string
}

// CoreSourceLink is the schema definition for core.sourcelink
var CoreSourceLink = CoreSourceLinkTable{
	Table:      "core.sourcelink",
	ID:         "id",
	AccountID:  "accountid",
	SourceID:   "sourceid",
	EntityType: "entitytype",
	EntityID:   "entityid",
	CreatedAt:  "createdat",
}
