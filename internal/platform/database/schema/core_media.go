package schema

// CoreMediaTable represents the 'core.media' table
type CoreMediaTable struct {
	Table     string
	ID        string
	AccountID string
	MediaType string
	URL       string
	Caption   string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CoreMedia is the schema definition for core.media
var CoreMedia = CoreMediaTable{
	Table:     "core.media",
	ID:        "id",
	AccountID: "accountid",
	MediaType: "mediatype",
	URL:       "url",
	Caption:   "caption",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}
