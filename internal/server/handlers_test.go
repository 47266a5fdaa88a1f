package server

import (
	"net/http"
	"testing"
	"time"

	"circle/internal/config"
	"circle/internal/featureflags"
	"circle/internal/models"
	"circle/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fixture struct {
	leader    *models.Profile
	member    *models.Profile
	outsider  *models.Profile
	community *models.Community
	challenge *models.Challenge
}

func (ts *testServer) fixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		leader:   testutil.CreateProfile(t, ts.db, "leader"),
		member:   testutil.CreateProfile(t, ts.db, "member"),
		outsider: testutil.CreateProfile(t, ts.db, "outsider"),
	}
	f.community = testutil.CreateCommunity(t, ts.db, "climbers", f.leader)
	testutil.AddMember(t, ts.db, f.community, f.member)

	now := time.Now().UTC()
	f.challenge = testutil.CreateChallenge(t, ts.db, f.community,
		now.Add(-time.Hour), now.Add(48*time.Hour), models.ChallengeStatusActive)
	return f
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/health/live", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := ts.do(t, http.MethodGet, "/health/ready", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, status)
	ready := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, body)
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "disabled", ready.Checks["redis"])
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/api/me", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, errorCode(t, body))

	status, _ = ts.do(t, http.MethodPost, "/api/submissions/"+uuid.NewString()+"/vote", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetMe_CreatesProfileFromEmail(t *testing.T) {
	ts := newTestServer(t)
	userID := uuid.New()

	req := newRequest(t, http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID, "Alice.Smith@example.com"))
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Profile
	require.NoError(t, ts.db.First(&stored, "id = ?", userID).Error)
	assert.Equal(t, "alice_smith", stored.Username)

	// A second call returns the same row.
	status, body := ts.do(t, http.MethodGet, "/api/me", userID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice_smith", decode[models.Profile](t, body).Username)
}

func TestUpdateMe_ReportsFieldErrors(t *testing.T) {
	ts := newTestServer(t)
	userID := uuid.New()

	status, body := ts.do(t, http.MethodPatch, "/api/me", userID, map[string]string{
		"username": "No Spaces Allowed",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	resp := decode[ErrorResponse](t, body)
	assert.Equal(t, models.CodeValidation, resp.Code)
	assert.Contains(t, resp.Details, "username")

	status, body = ts.do(t, http.MethodPatch, "/api/me", userID, map[string]string{
		"username": "new_name",
		"bio":      "Climbs on weekends",
	})
	require.Equal(t, http.StatusOK, status)
	profile := decode[models.Profile](t, body)
	assert.Equal(t, "new_name", profile.Username)
	assert.Equal(t, "Climbs on weekends", profile.Bio)
}

func TestCreateCommunity(t *testing.T) {
	ts := newTestServer(t)
	userID := uuid.New()

	status, body := ts.do(t, http.MethodPost, "/api/communities", userID, map[string]string{
		"name":        "Night Runners",
		"description": "We run after dark",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[models.Community](t, body)
	assert.Equal(t, "night-runners", created.Slug)
	assert.Equal(t, int64(1), created.MemberCount)
	assert.Equal(t, userID, created.LeaderID)

	status, body = ts.do(t, http.MethodPost, "/api/communities", userID, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[ErrorResponse](t, body).Details, "name")
}

func TestJoinAndLeave(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)

	status, body := ts.do(t, http.MethodPost, "/api/communities/climbers/join", f.outsider.ID, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	joined := decode[map[string]interface{}](t, body)
	assert.EqualValues(t, 3, joined["member_count"])
	assert.Equal(t, true, joined["is_member"])

	status, body = ts.do(t, http.MethodPost, "/api/communities/climbers/join", f.outsider.ID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeAlreadyMember, errorCode(t, body))

	status, body = ts.do(t, http.MethodGet, "/api/communities/climbers", f.outsider.ID, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decode[map[string]interface{}](t, body)
	assert.Equal(t, true, detail["is_member"])
	assert.Equal(t, false, detail["is_leader"])

	status, body = ts.do(t, http.MethodPost, "/api/communities/"+f.community.ID.String()+"/leave", f.outsider.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, decode[map[string]interface{}](t, body)["member_count"])

	status, body = ts.do(t, http.MethodPost, "/api/communities/climbers/leave", f.outsider.ID, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeNotMember, errorCode(t, body))

	status, _ = ts.do(t, http.MethodPost, "/api/communities/climbers/leave", f.leader.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodPost, "/api/communities/nowhere/join", f.outsider.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, errorCode(t, body))
}

func TestCreateChallenge(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)

	start := time.Now().UTC().Add(24 * time.Hour)
	end := start.Add(7 * 24 * time.Hour)
	req := map[string]interface{}{
		"title":        "Longest wall climb",
		"description":  "Film your longest route this week",
		"community_id": f.community.ID.String(),
		"start_date":   start,
		"end_date":     end,
	}

	status, body := ts.do(t, http.MethodPost, "/api/challenges", f.member.ID, req)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeNotEligible, errorCode(t, body))

	status, body = ts.do(t, http.MethodPost, "/api/challenges", f.leader.ID, req)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[models.Challenge](t, body)
	assert.Equal(t, models.ChallengeStatusUpcoming, created.Status)

	req["community_id"] = "not-a-uuid"
	status, body = ts.do(t, http.MethodPost, "/api/challenges", f.leader.ID, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[ErrorResponse](t, body).Details, "community_id")
}

func TestGetChallenge_ViewerFields(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)
	path := "/api/challenges/" + f.challenge.ID.String()

	status, body := ts.do(t, http.MethodGet, path, uuid.Nil, nil)
	require.Equal(t, http.StatusOK, status)
	anon := decode[map[string]interface{}](t, body)
	assert.Equal(t, false, anon["can_submit"])
	assert.NotContains(t, anon, "my_submission")

	status, body = ts.do(t, http.MethodGet, path, f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]interface{}](t, body)["can_submit"])

	status, _ = ts.do(t, http.MethodGet, "/api/challenges/not-a-uuid", uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitVoteFlow(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)
	submitPath := "/api/challenges/" + f.challenge.ID.String() + "/submission"

	entry := map[string]string{
		"title":           "Crux at dusk",
		"content_url":     testVideoURL,
		"submission_type": "video",
	}

	status, body := ts.do(t, http.MethodPut, submitPath, f.outsider.ID, entry)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeNotEligible, errorCode(t, body))

	status, body = ts.do(t, http.MethodPut, submitPath, f.member.ID, entry)
	require.Equal(t, http.StatusCreated, status, string(body))
	sub := decode[models.Submission](t, body)

	entry["title"] = "Crux at dawn"
	status, body = ts.do(t, http.MethodPut, submitPath, f.member.ID, entry)
	require.Equal(t, http.StatusOK, status)
	updated := decode[models.Submission](t, body)
	assert.Equal(t, sub.ID, updated.ID)
	assert.Equal(t, "Crux at dawn", updated.Title)

	votePath := "/api/submissions/" + sub.ID.String() + "/vote"
	status, body = ts.do(t, http.MethodPost, votePath, f.leader.ID, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int64(1), decode[models.Submission](t, body).VoteCount)

	status, body = ts.do(t, http.MethodPost, votePath, f.leader.ID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeAlreadyVoted, errorCode(t, body))

	status, body = ts.do(t, http.MethodGet, "/api/me/reputation", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	rep := decode[struct {
		Total   int64                     `json:"total"`
		History []*models.ReputationEntry `json:"history"`
	}](t, body)
	assert.Equal(t, int64(12), rep.Total)
	assert.Len(t, rep.History, 2)

	status, body = ts.do(t, http.MethodGet, "/api/me/badges", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	badges := decode[[]*models.UserBadge](t, body)
	require.Len(t, badges, 1)
	assert.Equal(t, "first-submission", badges[0].Badge.Slug)

	status, body = ts.do(t, http.MethodGet, "/api/me/notifications/unread-count", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, decode[map[string]interface{}](t, body)["unread"])

	status, body = ts.do(t, http.MethodDelete, votePath, f.leader.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), decode[models.Submission](t, body).VoteCount)

	status, body = ts.do(t, http.MethodDelete, votePath, f.leader.ID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeNotVoted, errorCode(t, body))

	status, body = ts.do(t, http.MethodGet, "/api/me/reputation", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, decode[map[string]interface{}](t, body)["total"])
}

func TestSubmit_ClosedChallenge(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)

	now := time.Now().UTC()
	expired := testutil.CreateChallenge(t, ts.db, f.community,
		now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.ChallengeStatusActive)

	status, body := ts.do(t, http.MethodPut, "/api/challenges/"+expired.ID.String()+"/submission", f.member.ID,
		map[string]string{"title": "Late", "content_url": testVideoURL, "submission_type": "video"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeChallengeClosed, errorCode(t, body))
}

func TestNotifications_MarkRead(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)

	n := &models.Notification{UserID: f.member.ID, Kind: "vote", Title: "Someone voted"}
	require.NoError(t, ts.db.Create(n).Error)
	require.NoError(t, ts.db.Create(&models.Notification{UserID: f.member.ID, Kind: "vote", Title: "Another"}).Error)

	status, _ := ts.do(t, http.MethodPost, "/api/me/notifications/"+n.ID.String()+"/read", f.member.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body := ts.do(t, http.MethodPost, "/api/me/notifications/read-all", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, body)["updated"])

	status, _ = ts.do(t, http.MethodPost, "/api/me/notifications/"+n.ID.String()+"/read", f.leader.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebsocket_UnavailableWithoutRedis(t *testing.T) {
	ts := newTestServer(t)
	f := ts.fixture(t)

	status, _ := ts.do(t, http.MethodGet, "/ws/notifications", f.member.ID, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestGetFeatureFlags(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.FeatureFlags = "block_self_vote,dark_mode=off"
	})
	f := ts.fixture(t)

	status, _ := ts.do(t, http.MethodGet, "/api/me/features", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodGet, "/api/me/features", f.member.ID, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	flags := decode[struct {
		Flags     []string        `json:"flags"`
		Evaluated map[string]bool `json:"evaluated"`
	}](t, body)
	assert.Equal(t, []string{featureflags.BlockSelfVote, "dark_mode"}, flags.Flags)
	assert.True(t, flags.Evaluated[featureflags.BlockSelfVote])
	assert.False(t, flags.Evaluated["dark_mode"])
}
