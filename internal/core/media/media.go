package media

import (
	"time"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/revision"
)

// Media kinds.
const (
	TypePhoto    = "photo"
	TypeDocument = "document"
	TypeAudio    = "audio"
	TypeVideo    = "video"
)

// Media is an externally hosted artifact (scan, photograph, recording)
// attached to records through link rows.
type Media struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"-"`
	MediaType string     `json:"media_type"`
	URL       string     `json:"url"`
	Caption   *string    `json:"caption"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
}

// Snapshot projects the ledgered fields.
func (m *Media) Snapshot() revision.Fields {
	caption := any(nil)
	if m.Caption != nil {
		caption = *m.Caption
	}
	return revision.Fields{
		FieldMediaType: m.MediaType,
		FieldURL:       m.URL,
		FieldCaption:   caption,
	}
}

// Patch is a partial update.
type Patch struct {
	MediaType *string `json:"media_type"`
	URL       *string `json:"url"`
	Caption   *string `json:"caption"`
}

// Apply folds the patch into m.
func (patch Patch) Apply(m *Media) {
	if patch.MediaType != nil {
		m.MediaType = *patch.MediaType
	}
	if patch.URL != nil {
		m.URL = *patch.URL
	}
	if patch.Caption != nil {
		if *patch.Caption == "" {
			m.Caption = nil
		} else {
			m.Caption = patch.Caption
		}
	}
}

// Link attaches a media record to a person, relationship, or event.
type Link struct {
	ID      int64      `json:"id"`
	MediaID int64      `json:"media_id"`
	Target  entity.Ref `json:"target"`
}

// Filter holds the parameters for a media search.
type Filter struct {
	MediaType string
	Target    *entity.Ref // media linked to this record
}

// Global field names for validation
const (
	FieldMediaType = "media_type"
	FieldURL       = "url"
	FieldCaption   = "caption"
)
