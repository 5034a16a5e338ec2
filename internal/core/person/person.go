package person

import (
	"time"

	"github.com/phamducminh/rootline/internal/revision"
)

// Privacy levels for a person record, most restrictive is the default.
const (
	PrivacyPublic     = "public"
	PrivacyPrivate    = "private"
	PrivacyRestricted = "restricted"
)

// Person represents one individual in an account's tree.
// Dates are ISO YYYY-MM-DD strings: genealogy dates reach centuries before
// the Unix epoch and carry no timezone.
type Person struct {
	ID         int64      `json:"id"`
	AccountID  int64      `json:"-"`
	GivenName  string     `json:"given_name"`
	FamilyName string     `json:"family_name"`
	OtherNames *string    `json:"other_names"`
	Gender     *string    `json:"gender"`
	BirthDate  *string    `json:"birth_date"`
	DeathDate  *string    `json:"death_date"`
	BirthPlace *string    `json:"birth_place"`
	DeathPlace *string    `json:"death_place"`
	Bio        *string    `json:"bio"`
	Privacy    string     `json:"privacy"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"` // soft-delete tracker
}

// Snapshot projects the mutable fields into a ledger-friendly map.
// Nil pointers project to nil so revision.Diff can express clearing.
func (p *Person) Snapshot() revision.Fields {
	return revision.Fields{
		FieldGivenName:  p.GivenName,
		FieldFamilyName: p.FamilyName,
		FieldOtherNames: deref(p.OtherNames),
		FieldGender:     deref(p.Gender),
		FieldBirthDate:  deref(p.BirthDate),
		FieldDeathDate:  deref(p.DeathDate),
		FieldBirthPlace: deref(p.BirthPlace),
		FieldDeathPlace: deref(p.DeathPlace),
		FieldBio:        deref(p.Bio),
		FieldPrivacy:    p.Privacy,
	}
}

// Patch is a partial update. A nil pointer means "leave unchanged"; for the
// nullable fields an explicit empty string clears the value.
type Patch struct {
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	OtherNames *string `json:"other_names"`
	Gender     *string `json:"gender"`
	BirthDate  *string `json:"birth_date"`
	DeathDate  *string `json:"death_date"`
	BirthPlace *string `json:"birth_place"`
	DeathPlace *string `json:"death_place"`
	Bio        *string `json:"bio"`
	Privacy    *string `json:"privacy"`
}

// Apply folds the patch into p.
func (patch Patch) Apply(p *Person) {
	if patch.GivenName != nil {
		p.GivenName = *patch.GivenName
	}
	if patch.FamilyName != nil {
		p.FamilyName = *patch.FamilyName
	}
	p.OtherNames = applyNullable(p.OtherNames, patch.OtherNames)
	p.Gender = applyNullable(p.Gender, patch.Gender)
	p.BirthDate = applyNullable(p.BirthDate, patch.BirthDate)
	p.DeathDate = applyNullable(p.DeathDate, patch.DeathDate)
	p.BirthPlace = applyNullable(p.BirthPlace, patch.BirthPlace)
	p.DeathPlace = applyNullable(p.DeathPlace, patch.DeathPlace)
	p.Bio = applyNullable(p.Bio, patch.Bio)
	if patch.Privacy != nil {
		p.Privacy = *patch.Privacy
	}
}

// Empty reports whether the patch changes nothing.
func (patch Patch) Empty() bool {
	return patch.GivenName == nil && patch.FamilyName == nil && patch.OtherNames == nil &&
		patch.Gender == nil && patch.BirthDate == nil && patch.DeathDate == nil &&
		patch.BirthPlace == nil && patch.DeathPlace == nil && patch.Bio == nil &&
		patch.Privacy == nil
}

// Filter holds the parameters for a paginated people search.
type Filter struct {
	Query   string // accent-folded match against the name key
	Gender  string
	Privacy string
}

// Global field names for validation
const (
	FieldGivenName  = "given_name"
	FieldFamilyName = "family_name"
	FieldOtherNames = "other_names"
	FieldGender     = "gender"
	FieldBirthDate  = "birth_date"
	FieldDeathDate  = "death_date"
	FieldBirthPlace = "birth_place"
	FieldDeathPlace = "death_place"
	FieldBio        = "bio"
	FieldPrivacy    = "privacy"
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
