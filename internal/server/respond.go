package server

import (
	"errors"

	"circle/internal/middleware"
	"circle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.CodeValidation, models.CodeInvalidContent:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeNotEligible, models.CodeNotMember:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeAlreadyMember, models.CodeAlreadyVoted, models.CodeNotVoted, models.CodeChallengeClosed:
		return fiber.StatusConflict
	case models.CodeStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status implied by its code. Errors that
// are not AppErrors are reported as internal without leaking their text.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status := statusFor(appErr.Code)
	if status >= fiber.StatusInternalServerError {
		attrs := []any{"code", appErr.Code, "path", c.Path()}
		if appErr.Err != nil {
			attrs = append(attrs, "error", appErr.Err.Error())
		}
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed", attrs...)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		Details:   appErr.Fields,
		Retryable: appErr.Retryable(),
	})
}

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseUUID reads a uuid route parameter. A malformed id cannot name any
// row, so it is reported as NOT_FOUND.
func parseUUID(c *fiber.Ctx, param, resource string) (uuid.UUID, error) {
	raw := c.Params(param)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, models.NewNotFoundError(resource, raw)
	}
	return id, nil
}

// parseBody decodes the JSON body into dst.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}
