package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"circle/internal/bootstrap"
	"circle/internal/config"
	"circle/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-with-enough-entropy-0123456789"

type testServer struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		JWTSecret:        testSecret,
		Env:              "test",
		SubmissionPoints: 10,
		VotePoints:       2,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	db := testutil.NewTestDB(t)
	require.NoError(t, bootstrap.SyncBadges(db, cfg))

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return &testServer{srv: srv, app: srv.NewApp(), db: db}
}

func tokenFor(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// do sends a request as userID (uuid.Nil for anonymous) and returns the
// status and raw body.
func (ts *testServer) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) (int, []byte) {
	t.Helper()

	req := newRequest(t, method, path, body)
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID, ""))
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[ErrorResponse](t, raw).Code
}
