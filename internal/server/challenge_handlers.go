package server

import (
	"time"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/rewards"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ChallengeDetail is a challenge as seen by the viewer.
type ChallengeDetail struct {
	*models.Challenge
	CanSubmit    bool               `json:"can_submit"`
	MySubmission *models.Submission `json:"my_submission,omitempty"`
}

// GetActiveChallenges handles GET /api/challenges
func (s *Server) GetActiveChallenges(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	list, err := s.challenges.ListActive(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateChallenge handles POST /api/challenges
func (s *Server) CreateChallenge(c *fiber.Ctx) error {
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		CommunityID string     `json:"community_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		return respondError(c, models.NewFieldValidationError(map[string]string{
			"community_id": "must be a valid community id",
		}))
	}

	challenge, err := s.challenges.Create(c.UserContext(), middleware.UserID(c), service.CreateChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		CommunityID: communityID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// GetChallenge handles GET /api/challenges/:id
func (s *Server) GetChallenge(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseUUID(c, "id", "Challenge")
	if err != nil {
		return respondError(c, err)
	}

	challenge, err := s.challenges.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	detail := ChallengeDetail{Challenge: challenge}

	viewerID := middleware.UserID(c)
	if viewerID == uuid.Nil {
		return c.JSON(detail)
	}
	if detail.CanSubmit, err = s.challenges.CanSubmit(ctx, viewerID, challenge); err != nil {
		return respondError(c, err)
	}
	if detail.MySubmission, err = s.submissions.Mine(ctx, id, viewerID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// GetChallengeSubmissions handles GET /api/challenges/:id/submissions
func (s *Server) GetChallengeSubmissions(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id", "Challenge")
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c, 50)
	list, err := s.submissions.ListForChallenge(c.UserContext(), id, middleware.UserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Submit handles PUT /api/challenges/:id/submission. The first call creates
// the submission and later calls update it in place.
func (s *Server) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseUUID(c, "id", "Challenge")
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		ContentURL     string `json:"content_url"`
		SubmissionType string `json:"submission_type"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := s.submissions.Submit(ctx, middleware.UserID(c), id, service.SubmitInput{
		Title:          req.Title,
		Description:    req.Description,
		ContentURL:     req.ContentURL,
		SubmissionType: req.SubmissionType,
	})
	if err != nil {
		return respondError(c, err)
	}

	rewards.Apply(ctx, "submission", func() error {
		return s.rewards.OnSubmission(ctx, res)
	})

	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(res.Submission)
}
