// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"circle/internal/models"

	"gorm.io/gorm"
)

// storageErr maps a gorm failure to an AppError. Errors that already carry
// a kind pass through unchanged.
func storageErr(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewStorageError(err)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
