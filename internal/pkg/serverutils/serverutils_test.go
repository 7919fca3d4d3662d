package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/internal/pkg/mailer"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/pkg/interview"
	"interview-practice-be/pkg/speech"
	"interview-practice-be/pkg/store"
	"interview-practice-be/pkg/webhook"
)

func TestStatusFor(t *testing.T) {
	type req struct {
		Text string `validate:"required"`
	}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", interview.ErrEmptyAnswer, 400},
		{"struct validation", ValidateRequest(req{}), 400},
		{"not found", fmt.Errorf("lookup: %w", store.ErrSessionNotFound), 404},
		{"unknown utterance", speech.ErrUnknownUtterance, 404},
		{"busy", interview.ErrBusy, 409},
		{"transition", &interview.TransitionError{Event: "start", Stage: interview.StageUpload}, 409},
		{"not listening", speech.ErrNotListening, 409},
		{"archive off", contract.ErrRepositoryUnavailable, 503},
		{"mailer off", mailer.ErrNotConfigured, 503},
		{"backend", &webhook.BackendError{Status: 500}, 502},
		{"fiber error", fiber.NewError(413, "too big"), 413},
		{"unknown", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := StatusFor(tt.err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestValidationMessage(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
	}
	_, msg := StatusFor(ValidateRequest(req{Email: "nope"}))
	assert.Equal(t, "Email must be a valid email", msg)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/busy", func(ctx *fiber.Ctx) error { return interview.ErrBusy })
	app.Get("/ok", func(ctx *fiber.Ctx) error { return ctx.JSON(SuccessResponse("ok", 1)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/busy", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	var body Response
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, 409, body.Code)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSessionToken(t *testing.T) {
	token, err := IssueSessionToken("secret", "sess-1", time.Minute)
	require.NoError(t, err)

	id, err := ParseSessionToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	_, err = ParseSessionToken("other", token)
	assert.Error(t, err)

	expired, _ := IssueSessionToken("secret", "sess-1", -time.Minute)
	_, err = ParseSessionToken("secret", expired)
	assert.Error(t, err)
}

func TestSessionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", SessionMiddleware("secret"), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals(SessionIDLocal).(string))
	})
	token, _ := IssueSessionToken("secret", "sess-9", time.Minute)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		path   string
		status int
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/me", 200},
		{"query", func(r *http.Request) {}, "/me?token=" + token, 200},
		{"missing", func(r *http.Request) {}, "/me", 401},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "/me", 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(r)
			resp, err := app.Test(r)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == 200 {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "sess-9", string(b))
			}
		})
	}
}
