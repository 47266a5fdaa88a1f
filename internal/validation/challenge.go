package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"circle/internal/models"

	"github.com/google/uuid"
)

const (
	minChallengeTitle       = 5
	minChallengeDescription = 20
	minChallengeDuration    = 24 * time.Hour
	maxChallengeDuration    = 30 * 24 * time.Hour
)

// ChallengeDraft is the unvalidated input for a new challenge. Nil dates and
// a nil community id mean "not provided".
type ChallengeDraft struct {
	Title       string
	Description string
	CommunityID uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

// ValidateChallenge checks every creation rule and returns a single
// VALIDATION_ERROR listing all violations, or nil.
func ValidateChallenge(d ChallengeDraft, now time.Time) error {
	fields := map[string]string{}

	title := strings.TrimSpace(d.Title)
	switch {
	case title == "":
		fields["title"] = "Title is required"
	case utf8.RuneCountInString(title) < minChallengeTitle:
		fields["title"] = "Title must be at least 5 characters"
	}

	description := strings.TrimSpace(d.Description)
	switch {
	case description == "":
		fields["description"] = "Description is required"
	case utf8.RuneCountInString(description) < minChallengeDescription:
		fields["description"] = "Description must be at least 20 characters"
	}

	if d.CommunityID == uuid.Nil {
		fields["community_id"] = "Please select a community"
	}

	hasStart := d.StartDate != nil && !d.StartDate.IsZero()
	hasEnd := d.EndDate != nil && !d.EndDate.IsZero()

	switch {
	case !hasStart:
		fields["start_date"] = "Start date is required"
	case d.StartDate.Before(now):
		fields["start_date"] = "Start date cannot be in the past"
	}

	switch {
	case !hasEnd:
		fields["end_date"] = "End date is required"
	case hasStart:
		duration := d.EndDate.Sub(*d.StartDate)
		switch {
		case duration <= 0:
			fields["end_date"] = "End date must be after start date"
		case duration < minChallengeDuration:
			fields["end_date"] = "Challenge must run for at least 1 day"
		case duration > maxChallengeDuration:
			fields["end_date"] = "Challenge cannot run for more than 30 days"
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return models.NewFieldValidationError(fields)
}
