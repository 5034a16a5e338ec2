package schema

// CoreEventPersonTable represents the 'core.eventperson' link table
type CoreEventPersonTable struct {
	Table     string
	ID        string
	AccountID string
	EventID   string
	PersonID  string
	Role      string
	CreatedAt string
}

// CoreEventPerson is the schema definition for core.eventperson
var CoreEventPerson = CoreEventPersonTable{
	Table:     "core.eventperson",
	ID:        "id",
	AccountID: "accountid",
	EventID:   "eventid",
	PersonID:  "personid",
	Role:      "role",
	CreatedAt: "createdat",
}
