package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		before     Fields
		after      Fields
		wantBefore Fields
		wantAfter  Fields
	}{
		{
			name:       "no changes",
			before:     Fields{"given_name": "Anna", "bio": "writer"},
			after:      Fields{"given_name": "Anna", "bio": "writer"},
			wantBefore: nil,
			wantAfter:  nil,
		},
		{
			name:       "single field changed",
			before:     Fields{"given_name": "Anna", "family_name": "Berg"},
			after:      Fields{"given_name": "Anna", "family_name": "Lindqvist"},
			wantBefore: Fields{"family_name": "Berg"},
			wantAfter:  Fields{"family_name": "Lindqvist"},
		},
		{
			name:       "field cleared",
			before:     Fields{"bio": "writer"},
			after:      Fields{"bio": nil},
			wantBefore: Fields{"bio": "writer"},
			wantAfter:  Fields{"bio": nil},
		},
		{
			name:       "field introduced",
			before:     Fields{"given_name": "Anna"},
			after:      Fields{"given_name": "Anna", "death_date": "1944-06-06"},
			wantBefore: Fields{"death_date": nil},
			wantAfter:  Fields{"death_date": "1944-06-06"},
		},
		{
			name:       "missing key equals explicit nil",
			before:     Fields{"bio": nil},
			after:      Fields{},
			wantBefore: nil,
			wantAfter:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBefore, gotAfter := Diff(tt.before, tt.after)
			assert.Equal(t, tt.wantBefore, gotBefore)
			assert.Equal(t, tt.wantAfter, gotAfter)
		})
	}
}

// The two returned maps always carry the same key set; the reconstruct path
// depends on that symmetry.
func TestDiffKeySymmetry(t *testing.T) {
	before := Fields{"a": 1, "b": "x", "c": nil}
	after := Fields{"a": 2, "b": "x", "d": true}

	gotBefore, gotAfter := Diff(before, after)
	assert.Equal(t, len(gotBefore), len(gotAfter))
	for key := range gotBefore {
		assert.Contains(t, gotAfter, key)
	}
}
