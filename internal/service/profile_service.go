package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/validation"

	"github.com/google/uuid"
)

const (
	maxFullNameLength = 120
	maxBioLength      = 500
	ensureAttempts    = 5
)

var usernameStrip = regexp.MustCompile(`[^a-z0-9_]+`)

type ProfileService struct {
	profiles repository.ProfileRepository
}

type UpdateProfileInput struct {
	Username  *string
	FullName  *string
	Bio       *string
	AvatarURL *string
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Ensure returns the profile for userID, creating one on first sight.
// hint (an email or preferred name) seeds the generated username.
func (s *ProfileService) Ensure(ctx context.Context, userID uuid.UUID, hint string) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err == nil || !models.IsCode(err, models.CodeNotFound) {
		return profile, err
	}

	base := usernameBase(hint)
	suffix := strings.ReplaceAll(userID.String(), "-", "")
	for attempt := 0; attempt < ensureAttempts; attempt++ {
		username := base
		if attempt > 0 {
			username = trimUsername(base+"_"+suffix[:attempt*2+2], 30)
		}
		profile = &models.Profile{ID: userID, Username: username}
		err = s.profiles.Create(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if !models.IsCode(err, models.CodeValidation) {
			return nil, err
		}
		// A concurrent request may have created this user's row.
		if existing, getErr := s.profiles.GetByID(ctx, userID); getErr == nil {
			return existing, nil
		}
	}
	return nil, err
}

// usernameBase derives a valid username from an email or display name.
func usernameBase(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if at := strings.IndexByte(hint, '@'); at >= 0 {
		hint = hint[:at]
	}
	hint = usernameStrip.ReplaceAllString(hint, "_")
	hint = strings.Trim(hint, "_")
	if len(hint) < 3 {
		hint = "member"
	}
	return trimUsername(hint, 20)
}

func trimUsername(s string, max int) string {
	if len(s) > max {
		s = s[:max]
	}
	return s
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.profiles.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// Update applies the provided fields. All violations are reported together.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.Profile, error) {
	fields := map[string]string{}
	update := repository.ProfileUpdate{}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			fields["username"] = err.Error()
		}
		update.Username = &username
	}
	if in.FullName != nil {
		fullName := strings.TrimSpace(*in.FullName)
		if utf8.RuneCountInString(fullName) > maxFullNameLength {
			fields["full_name"] = "Full name must be at most 120 characters"
		}
		update.FullName = &fullName
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			fields["bio"] = "Bio must be at most 500 characters"
		}
		update.Bio = &bio
	}
	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		update.AvatarURL = &avatar
	}

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}
	return s.profiles.Update(ctx, userID, update)
}
