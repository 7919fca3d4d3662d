package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"interview-practice-be/internal/config"
	"interview-practice-be/internal/controller"
	"interview-practice-be/internal/handler"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/mailer"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/implementation"
	"interview-practice-be/internal/repository/memory"
	"interview-practice-be/internal/service"
	"interview-practice-be/internal/websocket"
	"interview-practice-be/pkg/events"
	pktNats "interview-practice-be/pkg/nats"
	"interview-practice-be/pkg/resume"
	"interview-practice-be/pkg/speech"
	"interview-practice-be/pkg/webhook"
)

type Container struct {
	// Controllers
	InterviewController controller.IInterviewController

	// Background services, started by main.go. Nil without a database.
	ConsumerService service.IConsumerService

	// WebSockets
	SessionWsHandler *handler.SessionWsHandler
	WebSocketHub     *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires everything. db may be nil, in which case interviews are
// not archived.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.LogLevel, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	var feedbackMailer mailer.IFeedbackMailer
	if cfg.SMTP.Host != "" {
		feedbackMailer = mailer.NewFeedbackMailer(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	}

	// 2. Event bus (in-process archive queue)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	c.WebSocketHub = wsHub

	// 4. Repositories
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL)

	var recordRepo contract.InterviewRecordRepository
	var archivePublisher service.IPublisherService
	if db != nil {
		recordRepo = implementation.NewInterviewRecordRepository(db)
		archivePublisher = service.NewPublisherService(service.ArchiveTopic, pubSub)
		c.ConsumerService = service.NewConsumerService(pubSub, service.ArchiveTopic, recordRepo, sysLogger)
	} else {
		log.Printf("[INFO] No database configured, interview archiving is disabled")
	}

	// 5. Services
	interviewService := service.NewInterviewService(service.InterviewServiceDeps{
		Sessions:    sessionRepo,
		Gateway:     webhook.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout),
		Uploader:    resume.NewUploader(cfg.Gateway.BaseURL, cfg.Gateway.Timeout),
		Speech:      newSpeechProviders(cfg.Speech),
		Broadcaster: wsHub,
		Events:      eventPublisher,
		Archive:     archivePublisher,
		Records:     recordRepo,
		Mailer:      feedbackMailer,
		Logger:      sysLogger,
		JWTSecret:   cfg.Session.JWTSecret,
		SessionTTL:  cfg.Session.TTL,
	})

	// 6. Controllers & handlers
	c.InterviewController = controller.NewInterviewController(interviewService, cfg.Session.JWTSecret)
	c.SessionWsHandler = handler.NewSessionWsHandler(interviewService, wsHub, cfg.Session.JWTSecret, wsLogger)

	return c
}

// Close releases bus and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newSpeechProviders(cfg config.SpeechConfig) service.SpeechProviders {
	p := service.SpeechProviders{
		ListenTimeout: cfg.ListenTimeout,
		Language:      cfg.Language,
	}

	switch cfg.TTSProvider {
	case "openai":
		p.Synthesizer = speech.NewOpenAISynthesizer(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.Voice, cfg.OpenAIBaseURL)
		log.Printf("[INFO] Using TTS Provider: OPENAI (%s)", cfg.TTSModel)
	default:
		log.Printf("[INFO] TTS disabled, AI turns are shown as text only")
	}

	switch cfg.STTProvider {
	case "openai":
		p.Recognizer = speech.NewOpenAIRecognizer(cfg.OpenAIAPIKey, cfg.STTModel, cfg.OpenAIBaseURL)
		log.Printf("[INFO] Using STT Provider: OPENAI (%s)", cfg.STTModel)
	default:
		log.Printf("[INFO] STT disabled, answers are typed")
	}

	return p
}
