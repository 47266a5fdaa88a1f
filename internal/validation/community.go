package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"circle/internal/models"
)

var communitySlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,48}$`)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

var reservedCommunitySlugs = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"me":            {},
	"new":           {},
	"create":        {},
	"settings":      {},
	"communities":   {},
	"challenges":    {},
	"submissions":   {},
	"users":         {},
	"notifications": {},
	"ws":            {},
	"metrics":       {},
	"health":        {},
	"login":         {},
	"signup":        {},
}

// ValidateCommunity checks name and description and returns every violation.
func ValidateCommunity(name, description string) error {
	fields := map[string]string{}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fields["name"] = "Community name is required"
	case utf8.RuneCountInString(name) < 3:
		fields["name"] = "Community name must be at least 3 characters"
	case utf8.RuneCountInString(name) > 120:
		fields["name"] = "Community name cannot exceed 120 characters"
	}

	description = strings.TrimSpace(description)
	switch {
	case description == "":
		fields["description"] = "Description is required"
	case utf8.RuneCountInString(description) < 10:
		fields["description"] = "Description must be at least 10 characters"
	}

	if len(fields) == 0 {
		return nil
	}
	return models.NewFieldValidationError(fields)
}

// ValidateCommunitySlug validates community slug format and reserved names.
func ValidateCommunitySlug(slug string) error {
	if !communitySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-48 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedCommunitySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}

// ValidateUsername checks the public handle format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of lowercase letters, numbers, and underscores")
	}
	return nil
}
