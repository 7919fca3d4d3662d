package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/pkg/interview"
)

type recorded struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newBackend(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var parsed map[string]interface{}
		_ = json.Unmarshal(raw, &parsed)
		calls = append(calls, recorded{Method: r.Method, Path: r.URL.Path, Body: parsed})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second), &calls
}

func TestBeginSession(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `{"response": "Tell me about React."}`)

	prompt, err := c.BeginSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tell me about React.", prompt)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/vapi-webhook", got.Path)
	assert.Equal(t, map[string]interface{}{"event": "call.started"}, got.Body)
}

func TestSubmitAnswer(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `{"response": "Why?"}`)

	prompt, err := c.SubmitAnswer(context.Background(), "I built a dashboard.")
	require.NoError(t, err)
	assert.Equal(t, "Why?", prompt)
	assert.Equal(t, map[string]interface{}{
		"event": "input.transcription.completed",
		"data":  map[string]interface{}{"text": "I built a dashboard."},
	}, (*calls)[0].Body)
}

func TestPromptShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing response", `{}`, ""},
		{"null response", `{"response": null}`, ""},
		{"object response", `{"response": {"text": "x"}}`, ""},
		{"empty string", `{"response": ""}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBackend(t, http.StatusOK, tt.body)
			prompt, err := c.BeginSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, prompt)
		})
	}
}

func TestEndSessionSendsConversation(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `{"response": {"overallScore": 80}}`)
	conv := []interview.Turn{
		{From: interview.SpeakerAI, Text: "Q1", Timestamp: 1},
		{From: interview.SpeakerUser, Text: "A1", Timestamp: 2},
	}

	raw, err := c.EndSession(context.Background(), conv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"overallScore": 80}`, string(raw))

	body := (*calls)[0].Body
	assert.Equal(t, "call.ended", body["event"])
	data := body["data"].(map[string]interface{})
	turns := data["conversation"].([]interface{})
	require.Len(t, turns, 2)
	assert.Equal(t, map[string]interface{}{"from": "ai", "text": "Q1", "timestamp": float64(1)}, turns[0])
}

func TestEndSessionEmptyConversationIsArray(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `{"response": {}}`)
	_, err := c.EndSession(context.Background(), nil)
	require.NoError(t, err)
	data := (*calls)[0].Body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["conversation"])
}

func TestBackendError(t *testing.T) {
	c, _ := newBackend(t, http.StatusInternalServerError, `{"detail": "boom"}`)

	_, err := c.SubmitAnswer(context.Background(), "answer")
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 500, be.Status)
	assert.Equal(t, "API error 500", err.Error())
	assert.True(t, be.IsServerError())
	assert.Contains(t, be.Body, "boom")
}

func TestNetworkErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(url, time.Second)
		_, err := c.BeginSession(context.Background())
		var ne *NetworkError
		require.True(t, errors.As(err, &ne))
		assert.Equal(t, EventCallStarted, ne.Event)
	})

	t.Run("undecodable body", func(t *testing.T) {
		c, _ := newBackend(t, http.StatusOK, `not json`)
		_, err := c.EndSession(context.Background(), nil)
		var ne *NetworkError
		require.True(t, errors.As(err, &ne))
		assert.Equal(t, EventCallEnded, ne.Event)
	})
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
}
