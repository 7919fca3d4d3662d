package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/repository/memory"
	"interview-practice-be/internal/service"
	internalWS "interview-practice-be/internal/websocket"
	"interview-practice-be/pkg/interview"
)

type nopGateway struct{}

func (nopGateway) BeginSession(context.Context) (string, error)         { return "", nil }
func (nopGateway) SubmitAnswer(context.Context, string) (string, error) { return "", nil }
func (nopGateway) EndSession(context.Context, []interview.Turn) (json.RawMessage, error) {
	return nil, nil
}

func TestUpgradeGuards(t *testing.T) {
	const secret = "ws-secret"
	svc := service.NewInterviewService(service.InterviewServiceDeps{
		Sessions:  memory.NewSessionRepository(time.Minute),
		Gateway:   nopGateway{},
		Logger:    logger.NewNop(),
		JWTSecret: secret,
	})
	h := NewSessionWsHandler(svc, internalWS.NewHub(nil, logger.NewNop()), secret, logger.NewNop())

	app := fiber.New()
	h.RegisterRoutes(app.Group("/api"))

	res, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	upgrade := func(token string) int {
		req := httptest.NewRequest("GET", "/api/ws?token="+token, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	// Missing token.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/ws", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Valid token but a plain GET.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/ws?token="+res.Token, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	// Token for a session that is gone.
	stale, err := serverutils.IssueSessionToken(secret, "gone", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, upgrade(stale))
}
