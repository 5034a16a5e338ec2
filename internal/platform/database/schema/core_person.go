package schema

// CorePersonTable represents the 'core.person' table
type CorePersonTable struct {
	Table      string
	ID         string
	AccountID  string
	GivenName  string
	FamilyName string
	OtherNames string
	Gender     string
	BirthDate  string
	DeathDate  string
	BirthPlace string
	DeathPlace string
	Bio        string
	Privacy    string
	NameKey    string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// CorePerson is the schema definition for core.person
var CorePerson = CorePersonTable{
	Table:      "core.person",
	ID:         "id",
	AccountID:  "accountid",
	GivenName:  "givenname",
	FamilyName: "familyname",
	OtherNames: "othernames",
	Gender:     "gender",
	BirthDate:  "birthdate",
	DeathDate:  "deathdate",
	BirthPlace: "birthplace",
	DeathPlace: "deathplace",
	Bio:        "bio",
	Privacy:    "privacy",
	NameKey:    "namekey",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}
