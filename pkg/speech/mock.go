package speech

import (
	"context"
	"sync"
)

// MockSynthesizer implements Synthesizer for tests.
type MockSynthesizer struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns a tiny clip with the estimated duration.
	SynthesizeFunc func(ctx context.Context, text string) (*Audio, error)

	mu    sync.Mutex
	texts []string
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return &Audio{Data: []byte("ID3"), ContentType: "audio/mpeg", Duration: EstimateDuration(text)}, nil
}

// Texts returns every text passed to Synthesize.
func (m *MockSynthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// MockRecognizer implements Recognizer for tests.
type MockRecognizer struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns Text.
	TranscribeFunc func(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error)
	Text           string

	mu    sync.Mutex
	calls []TranscribeOptions
}

func (m *MockRecognizer) Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, opts)
	}
	return m.Text, nil
}

func (m *MockRecognizer) Calls() []TranscribeOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranscribeOptions(nil), m.calls...)
}
