package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"interview-practice-be/pkg/interview"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	Path           = "/vapi-webhook"

	EventCallStarted            = "call.started"
	EventTranscriptionCompleted = "input.transcription.completed"
	EventCallEnded              = "call.ended"

	// maxBodyBytes caps how much of a reply is read into memory.
	maxBodyBytes = 4 << 20
)

// Client talks to the interview backend over its single webhook endpoint.
// It keeps no state between calls and never retries.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// Ensure Client satisfies the session gateway.
var _ interview.Gateway = &Client{}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  NewHTTPClient(timeout),
	}
}

// NewHTTPClient returns an http.Client with dial and handshake timeouts set.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// --- Wire structs ---

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type transcriptionData struct {
	Text string `json:"text"`
}

type endedData struct {
	Conversation []interview.Turn `json:"conversation"`
}

type reply struct {
	Response json.RawMessage `json:"response"`
}

// BeginSession announces a new interview and returns the opening prompt.
// An empty string means the backend sent no usable prompt.
func (c *Client) BeginSession(ctx context.Context) (string, error) {
	raw, err := c.postEvent(ctx, envelope{Event: EventCallStarted})
	if err != nil {
		return "", err
	}
	return promptText(raw), nil
}

// SubmitAnswer forwards one answer and returns the follow-up prompt.
func (c *Client) SubmitAnswer(ctx context.Context, text string) (string, error) {
	raw, err := c.postEvent(ctx, envelope{
		Event: EventTranscriptionCompleted,
		Data:  transcriptionData{Text: text},
	})
	if err != nil {
		return "", err
	}
	return promptText(raw), nil
}

// EndSession sends the whole transcript and returns the raw scoring payload.
// The payload is untrusted; callers normalize it.
func (c *Client) EndSession(ctx context.Context, conversation []interview.Turn) (json.RawMessage, error) {
	if conversation == nil {
		conversation = []interview.Turn{}
	}
	return c.postEvent(ctx, envelope{
		Event: EventCallEnded,
		Data:  endedData{Conversation: conversation},
	})
}

func (c *Client) postEvent(ctx context.Context, payload envelope) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &NetworkError{Event: payload.Event, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Event: payload.Event, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &NetworkError{Event: payload.Event, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Event: payload.Event, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{Event: payload.Event, Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var r reply
	if err := json.Unmarshal(bodyBytes, &r); err != nil {
		return nil, &NetworkError{Event: payload.Event, Err: fmt.Errorf("decode response: %w", err)}
	}
	return r.Response, nil
}

// promptText accepts only a JSON string as a prompt.
func promptText(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
