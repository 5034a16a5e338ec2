package schema

// CoreMediaLinkTable represents the 'core.medialink' table.
// The (entitytype, entityid) pair is a generic reference: media can attach
// to people, relationships, or events without a shared base table.
type CoreMediaLinkTable struct {
	Table      string
	ID         string
	AccountID  string
	MediaID    string
	EntityType string
	EntityID   string
	CreatedAt  string
}

// CoreMediaLink is the schema definition for core.medialink
var CoreMediaLink = CoreMediaLinkTable{
	Table:      "core.medialink",
	ID:         "id",
	AccountID:  "accountid",
	MediaID:    "mediaid",
	EntityType: "entitytype",
	EntityID:   "entityid",
	CreatedAt:  "createdat",
}
