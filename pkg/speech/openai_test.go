package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAISynthesizer(t *testing.T) {
	var got openAISpeechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	s := NewOpenAISynthesizer("sk-test", "", "", srv.URL)
	audio, err := s.Synthesize(context.Background(), "Tell me about yourself.")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio.Data)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Equal(t, EstimateDuration("Tell me about yourself."), audio.Duration)
	assert.Equal(t, openAISpeechRequest{Model: DefaultTTSModel, Voice: DefaultVoice, Input: "Tell me about yourself.", ResponseFormat: "mp3"}, got)
}

func TestOpenAISynthesizerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAISynthesizer("k", "", "", srv.URL).Synthesize(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestOpenAIRecognizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, DefaultSTTModel, r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "json", r.FormValue("response_format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip-bytes", string(data))
		assert.NotEmpty(t, hdr.Filename)

		_, _ = w.Write([]byte(`{"text": " I led the team. "}`))
	}))
	defer srv.Close()

	r := NewOpenAIRecognizer("k", "", srv.URL)
	text, err := r.Transcribe(context.Background(), []byte("clip-bytes"), TranscribeOptions{Language: "en-US"})
	require.NoError(t, err)
	assert.Equal(t, "I led the team.", text)
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "en", baseLanguage("en-US"))
	assert.Equal(t, "de", baseLanguage("DE"))
	assert.Equal(t, "", baseLanguage(""))
}
