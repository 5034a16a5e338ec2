package schema

// CoreRelationshipTable represents the 'core.relationship' table
type CoreRelationshipTable struct {
	Table     string
	ID        string
	AccountID string
	Person1ID string
	Person2ID string
	RelType   string
	StartDate string
	EndDate   string
	Detail    string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CoreRelationship is the schema definition for core.relationship.
// Symmetric types (spouse, sibling) store the smaller person id in person1id.
var CoreRelationship = CoreRelationshipTable{
	Table:     "core.relationship",
	ID:        "id",
	AccountID: "accountid",
	Person1ID: "person1id",
	Person2ID: "person2id",
	RelType:   "reltype",
	StartDate: "startdate",
	EndDate:   "enddate",
	Detail:    "detail",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}
