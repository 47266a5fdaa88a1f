package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommunitySlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slug string
		ok   bool
	}{
		{name: "valid with number", slug: "sketch-club-2", ok: true},
		{name: "valid plain", slug: "runners", ok: true},
		{name: "too short", slug: "ab", ok: false},
		{name: "minimum length", slug: "abc", ok: true},
		{name: "maximum length", slug: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuv", ok: true},
		{name: "too long", slug: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvw", ok: false},
		{name: "uppercase", slug: "Runners", ok: false},
		{name: "underscore", slug: "pc_gaming", ok: false},
		{name: "leading hyphen", slug: "-runners", ok: false},
		{name: "trailing hyphen", slug: "runners-", ok: false},
		{name: "reserved api", slug: "api", ok: false},
		{name: "reserved challenges", slug: "challenges", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCommunitySlug(tc.slug)
			if tc.ok && err != nil {
				t.Fatalf("expected valid slug, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid slug, got nil error")
			}
		})
	}
}

func TestValidateCommunity(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCommunity("Runners", "Weekly long runs and races"))

	err := ValidateCommunity(" ab ", "too short")
	fields := fieldsOf(t, err)
	assert.Equal(t, "Community name must be at least 3 characters", fields["name"])
	assert.Equal(t, "Description must be at least 10 characters", fields["description"])

	fields = fieldsOf(t, ValidateCommunity("", ""))
	assert.Equal(t, "Community name is required", fields["name"])
	assert.Equal(t, "Description is required", fields["description"])
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateUsername("river_song42"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("River"))
	assert.Error(t, ValidateUsername("has-dash"))
	assert.Error(t, ValidateUsername("abcdefghijklmnopqrstuvwxyzabcde"))
}
