package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	DefaultTTSModel = "tts-1"
	DefaultVoice    = "alloy"
	DefaultSTTModel = "whisper-1"

	providerOpenAI = "openai"
)

// OpenAISynthesizer calls the OpenAI speech endpoint and returns MP3 audio.
type OpenAISynthesizer struct {
	APIKey  string
	Model   string
	Voice   string
	BaseURL string
	Client  *http.Client
}

var _ Synthesizer = &OpenAISynthesizer{}

func NewOpenAISynthesizer(apiKey, model, voice, baseURL string) *OpenAISynthesizer {
	if model == "" {
		model = DefaultTTSModel
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAISynthesizer{
		APIKey:  apiKey,
		Model:   model,
		Voice:   voice,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type openAISpeechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	body, err := json.Marshal(openAISpeechRequest{
		Model:          o.Model,
		Voice:          o.Voice,
		Input:          text,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai speech request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp.StatusCode, data)
	}

	return &Audio{
		Data:        data,
		ContentType: "audio/mpeg",
		Duration:    EstimateDuration(text),
	}, nil
}

// OpenAIRecognizer uploads a clip to the OpenAI transcription endpoint.
type OpenAIRecognizer struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

var _ Recognizer = &OpenAIRecognizer{}

func NewOpenAIRecognizer(apiKey, model, baseURL string) *OpenAIRecognizer {
	if model == "" {
		model = DefaultSTTModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIRecognizer{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type openAITranscription struct {
	Text string `json:"text"`
}

func (o *OpenAIRecognizer) Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", o.Model); err != nil {
		return "", err
	}
	if lang := baseLanguage(opts.Language); lang != "" {
		if err := mw.WriteField("language", lang); err != nil {
			return "", err
		}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", err
	}

	fw, err := mw.CreateFormFile("file", "answer"+mimetype.Detect(audio).Extension())
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai transcription request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseError(resp.StatusCode, data)
	}

	var out openAITranscription
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}

// baseLanguage maps "en-US" to "en"; the transcription API takes ISO 639-1.
func baseLanguage(tag string) string {
	lang, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(lang)
}

func parseError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &APIError{Provider: providerOpenAI, StatusCode: status, Message: msg}
}
