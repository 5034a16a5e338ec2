package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamducminh/rootline/internal/platform/apperr"
)

func TestKindValid(t *testing.T) {
	for _, kind := range []Kind{KindPerson, KindRelationship, KindEvent, KindMedia, KindSource} {
		assert.True(t, kind.Valid(), string(kind))
	}
	assert.False(t, Kind("comic").Valid())
	assert.False(t, Kind("").Valid())
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Person", KindPerson.Label())
	assert.Equal(t, "Relationship", KindRelationship.Label())
	assert.Equal(t, "Event", KindEvent.Label())
	assert.Equal(t, "", Kind("").Label())
}

func TestRefValidate(t *testing.T) {
	assert.NoError(t, Ref{Kind: KindPerson, ID: 1}.Validate())
	assert.NoError(t, Ref{Kind: KindRelationship, ID: 7}.Validate())
	assert.NoError(t, Ref{Kind: KindEvent, ID: 3}.Validate())

	tests := []struct {
		name string
		ref  Ref
	}{
		{"unknown kind", Ref{Kind: "album", ID: 1}},
		{"media is not a link target", Ref{Kind: KindMedia, ID: 1}},
		{"source is not a link target", Ref{Kind: KindSource, ID: 1}},
		{"zero id", Ref{Kind: KindPerson, ID: 0}},
		{"negative id", Ref{Kind: KindPerson, ID: -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}
