package service

import (
	"errors"

	"circle/internal/models"
)

func asAppError(err error) (*models.AppError, bool) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
