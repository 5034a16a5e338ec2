// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/validate"
	"github.com/phamducminh/rootline/pkg/pointer"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "given_name", "Minh", false},
		{"empty_string", "given_name", "", true},
		{"whitespace_only", "given_name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Date checks the ISO calendar date rule.
*/
func TestValidator_Date(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		isValid bool
	}{
		{"valid_date", "1823-04-12", true},
		{"leap_day", "2000-02-29", true},
		{"bad_format", "12/04/1823", false},
		{"bad_month", "1823-13-01", false},
		{"not_a_leap_day", "1900-02-29", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Date("birth_date", tt.date)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_DateOrder verifies interval ordering with open endpoints.
*/
func TestValidator_DateOrder(t *testing.T) {
	tests := []struct {
		name    string
		start   *string
		end     *string
		isValid bool
	}{
		{"ordered", pointer.To("1850-01-01"), pointer.To("1870-06-15"), true},
		{"equal", pointer.To("1850-01-01"), pointer.To("1850-01-01"), true},
		{"inverted", pointer.To("1870-06-15"), pointer.To("1850-01-01"), false},
		{"open_start", nil, pointer.To("1850-01-01"), true},
		{"open_end", pointer.To("1850-01-01"), nil, true},
		{"both_open", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.DateOrder("end_date", tt.start, tt.end)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("family_name", "Pham").
		MaxLen("family_name", "Pham", 120).
		OneOf("privacy", "private", "public", "private", "restricted").
		Date("birth_date", "1901-11-03").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("family_name", "").            // Fails
		OneOf("privacy", "secret", "public", "private", "restricted"). // Fails
		Date("birth_date", "yesterday").        // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
