package database

import "circle/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Community{},
		&models.Membership{},
		&models.Challenge{},
		&models.Submission{},
		&models.Vote{},
		&models.ReputationEntry{},
		&models.Notification{},
		&models.Badge{},
		&models.UserBadge{},
	}
}
