// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package namekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Smith", "smith"},
		{"accented vietnamese", "Nguyễn", "nguyen"},
		{"german umlaut", "Müller", "muller"},
		{"apostrophe", "O'Brien", "o brien"},
		{"hyphenated", "García-López", "garcia lopez"},
		{"extra whitespace", "  van  der  Berg ", "van der berg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}

func TestFor(t *testing.T) {
	assert.Equal(t, "nguyen thi minh", For("Nguyễn", "Thị Minh"))
	assert.Equal(t, "smith", For("Smith", ""))
	assert.Equal(t, "anna", For("", "Anna"))
	assert.Equal(t, "", For("", ""))
}

// Key ordering must match a byte-wise sort of the folded family+given form,
// since Postgres ORDER BY on the namekey column compares bytes.
func TestForOrdering(t *testing.T) {
	a := For("Ängström", "Karl")
	b := For("Berg", "Anna")
	assert.Less(t, a, b)
}
