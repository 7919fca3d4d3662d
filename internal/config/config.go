package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Gateway  GatewayConfig
	Speech   SpeechConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

// DatabaseConfig is optional; an empty connection disables archiving.
type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// GatewayConfig points at the interview backend (webhook + resume parsing).
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SpeechConfig struct {
	TTSProvider   string // "none" or "openai"
	STTProvider   string // "none" or "openai"
	OpenAIAPIKey  string
	OpenAIBaseURL string
	TTSModel      string
	Voice         string
	STTModel      string
	Language      string
	ListenTimeout time.Duration
}

type SessionConfig struct {
	TTL       time.Duration
	JWTSecret string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "debug"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Interview Practice"),
		},
		Gateway: GatewayConfig{
			BaseURL: strings.TrimRight(getEnv("GATEWAY_BASE_URL", "http://127.0.0.1:8000"), "/"),
			Timeout: time.Duration(getEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Speech: SpeechConfig{
			TTSProvider:   strings.ToLower(getEnv("SPEECH_TTS_PROVIDER", "none")),
			STTProvider:   strings.ToLower(getEnv("SPEECH_STT_PROVIDER", "none")),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			TTSModel:      getEnv("SPEECH_TTS_MODEL", "tts-1"),
			Voice:         getEnv("SPEECH_TTS_VOICE", "alloy"),
			STTModel:      getEnv("SPEECH_STT_MODEL", "whisper-1"),
			Language:      getEnv("SPEECH_LANGUAGE", "en-US"),
			ListenTimeout: time.Duration(getEnvAsInt("SPEECH_LISTEN_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Session: SessionConfig{
			TTL:       time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "interview-practice-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
