package repository

import (
	"context"

	"circle/internal/cache"
	"circle/internal/database"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username  *string
	FullName  *string
	Bio       *string
	AvatarURL *string
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.Profile, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func usernameTakenError() error {
	return models.NewFieldValidationError(map[string]string{
		"username": "Username is already taken",
	})
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return usernameTakenError()
		}
		return models.NewStorageError(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		return r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	})
	if err != nil {
		return nil, storageErr(err, "Profile", id)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, storageErr(err, "Profile", username)
	}
	return &profile, nil
}

// Update writes only the provided fields. reputation_points is not reachable here.
func (r *profileRepository) Update(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.Profile, error) {
	fields := map[string]interface{}{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			if database.IsUniqueViolation(res.Error) {
				return nil, usernameTakenError()
			}
			return nil, models.NewStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("Profile", id)
		}
		cache.InvalidateProfile(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *profileRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, models.NewStorageError(err)
	}
	return count > 0, nil
}
