// Package speech renders interviewer turns as audio and captures one spoken
// answer at a time.
//
// Audio never plays on the server. A Synthesizer produces a clip, the view
// fetches and plays it and acknowledges the end of playback. A Recognizer
// transcribes the single clip the view records for an open Capture. Both
// providers are optional: without a synthesizer utterances complete at once,
// without a recognizer listening is unavailable.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Synthesizer turns text into a playable clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// Recognizer transcribes one recorded clip. It returns the single best
// transcript, or "" when nothing was recognized.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error)
}

// Audio is a synthesized clip.
type Audio struct {
	Data        []byte
	ContentType string

	// Duration is the estimated playback duration.
	Duration time.Duration
}

type TranscribeOptions struct {
	// Language is a BCP 47 tag such as "en-US".
	Language string
}

// Logger is the subset of the service logger the adapter uses.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

var (
	// ErrUnsupported means no recognizer is configured.
	ErrUnsupported = errors.New("speech: recognition not supported")

	// ErrNotListening is returned by Submit when no capture is waiting for audio.
	ErrNotListening = errors.New("speech: no open capture")

	// ErrUnknownUtterance is returned for an id that is not the current utterance.
	ErrUnknownUtterance = errors.New("speech: unknown utterance")

	// ErrCanceled ends an utterance or capture that was stopped early.
	ErrCanceled = errors.New("speech: canceled")
)

// APIError is a non-2xx reply from a speech provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("speech [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

type EventType string

const (
	SpeakingStarted  EventType = "speaking.started"
	SpeakingAudio    EventType = "speaking.audio"
	SpeakingEnded    EventType = "speaking.ended"
	ListeningStarted EventType = "listening.started"
	ListeningResult  EventType = "listening.result"
	ListeningNoMatch EventType = "listening.nomatch"
	ListeningError   EventType = "listening.error"
	ListeningEnded   EventType = "listening.ended"
)

// Event is pushed to the view for every speech lifecycle change.
type Event struct {
	Type  EventType `json:"type"`
	ID    string    `json:"id"`
	Text  string    `json:"text,omitempty"`
	Error string    `json:"error,omitempty"`
}

// EstimateDuration guesses playback time at roughly 150 words per minute.
func EstimateDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * 400 * time.Millisecond
	if d < time.Second {
		d = time.Second
	}
	return d
}
