package config

import (
	"errors"
	"fmt"

	"github.com/Dhruvin6677/ai-buddy/database/postgres"
	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	assistantHandler "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/handler"
	assistantRepository "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/repository"
	assistantService "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/service"
	briefingHandler "github.com/Dhruvin6677/ai-buddy/internal/api/briefing/handler"
	briefingService "github.com/Dhruvin6677/ai-buddy/internal/api/briefing/service"
	trainHandler "github.com/Dhruvin6677/ai-buddy/internal/api/train/handler"
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/gemini"
	"github.com/Dhruvin6677/ai-buddy/pkg/google"
	"github.com/Dhruvin6677/ai-buddy/pkg/irctc"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/openai"
	"github.com/Dhruvin6677/ai-buddy/pkg/redis"
	"github.com/Dhruvin6677/ai-buddy/pkg/scheduler"
	"github.com/Dhruvin6677/ai-buddy/pkg/utils"
	"github.com/Dhruvin6677/ai-buddy/pkg/whatsapp"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	cfg              AppConfig
	db               *sqlx.DB
	log              *logrus.Logger
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	handlers         []handler
	googleProvider   google.ItfGoogle
	redisServer      redis.IRedis
	whatsappClient   whatsapp.IWhatsapp
	chat             llm.IChat
	irctcClient      irctc.IClient
	scheduler        scheduler.IScheduler
	assistantService assistantService.IAssistantService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithAppConfig(cfg AppConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to Postgres and applies migrations. Without a DSN the
// server runs with in-memory reminders only.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New(s.cfg.DatabaseDSN, s.log)
		if errors.Is(err, postgres.ErrMissingDSN) {
			s.log.Warn("DB_DSN not set, reminders will not survive a restart")
			return nil
		}
		if err != nil {
			s.log.Errorf("Failed to connect to database: %v", err)
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if err := postgres.Migrate(context.Background(), db, s.log); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer() ServerOption {
	return func(s *Server) error {
		if s.cfg.RedisAddress == "" {
			s.log.Warn("REDIS_ADDRESS not set, draft sessions are kept in memory")
			return nil
		}
		s.redisServer = redis.New(redis.Config{
			Address:  s.cfg.RedisAddress,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		}, s.log)
		return nil
	}
}

// WithGoogleProvider needs Redis for OAuth tokens, so it must come after
// WithRedisServer.
func WithGoogleProvider() ServerOption {
	return func(s *Server) error {
		if s.redisServer == nil {
			s.log.Warn("Google integration disabled: token store (Redis) is not configured")
			return nil
		}

		provider, err := google.New(google.Config{
			ClientID:     s.cfg.GoogleClientID,
			ClientSecret: s.cfg.GoogleClientSecret,
			RedirectURL:  s.cfg.GoogleRedirectURL,
		}, s.redisServer, s.log)
		if errors.Is(err, google.ErrMissingCredentials) {
			s.log.Warn("Google integration disabled: client credentials are not configured")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create google provider: %w", err)
		}

		s.googleProvider = provider
		return nil
	}
}

func WithLLMClient() ServerOption {
	return func(s *Server) error {
		var (
			chat llm.IChat
			err  error
		)

		switch s.cfg.LLMProvider {
		case "gemini":
			chat, err = gemini.NewGeminiClient(context.Background(), gemini.Config{
				APIKey:    s.cfg.GeminiAPIKey,
				ModelName: s.cfg.GeminiModelName,
			})
		default:
			chat, err = openai.NewChat(openai.Config{
				APIKey:     s.cfg.GroqAPIKey,
				BaseURL:    s.cfg.GroqBaseURL,
				SmartModel: s.cfg.GroqSmartModel,
				FastModel:  s.cfg.GroqFastModel,
			})
		}

		if errors.Is(err, llm.ErrMissingAPIKey) {
			s.log.WithFields(logrus.Fields{
				"provider": s.cfg.LLMProvider,
			}).Warn("LLM API key not set, AI features run degraded")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create %s client: %w", s.cfg.LLMProvider, err)
		}

		s.chat = chat
		return nil
	}
}

func WithTrainProvider() ServerOption {
	return func(s *Server) error {
		client, err := irctc.New(irctc.Config{
			APIKey:  s.cfg.RapidAPIKey,
			Host:    s.cfg.RapidAPIHost,
			Timeout: s.cfg.TrainLiveTimeout,
		}, s.log)
		if errors.Is(err, irctc.ErrMissingAPIKey) {
			s.log.Warn("RAPIDAPI_KEY not set, train status uses shortcut and simulation")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create train client: %w", err)
		}

		s.irctcClient = client
		return nil
	}
}

func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		if !s.cfg.WhatsappEnabled {
			s.log.Info("WhatsApp channel disabled")
			return nil
		}

		client, err := whatsapp.New(context.Background(), whatsapp.Config{
			StoreDSN: s.cfg.WhatsappStoreDSN,
		}, s.log)
		if err != nil {
			s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Config{
			RequestsPerSecond: s.cfg.RateLimitPerSecond,
			Burst:             s.cfg.RateLimitBurst,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithScheduler() ServerOption {
	return func(s *Server) error {
		s.scheduler = scheduler.New(s.log)
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Train Domain
	trainServices := trainService.NewTrainService(s.log, trainService.Config{
		DemoPNR:     s.cfg.TrainDemoPNR,
		LiveTimeout: s.cfg.TrainLiveTimeout,
	}, s.irctcClient)
	trainHandlers := trainHandler.New(s.log, s.middleware, trainServices)

	// Assistant Domain
	sessionTTL := 2 * s.cfg.DraftSessionTimeout
	var sessions assistantRepository.SessionStore
	if s.redisServer != nil {
		sessions = assistantRepository.NewRedisSessionStore(s.redisServer, sessionTTL, s.log)
	} else {
		sessions = assistantRepository.NewMemorySessionStore(sessionTTL)
	}

	var reminderRepo assistantRepository.Repository
	if s.db != nil {
		reminderRepo = assistantRepository.New(s.db, s.log)
	}

	var notifier assistantService.Notifier
	if s.whatsappClient != nil {
		notifier = s.whatsappClient
	}

	s.assistantService = assistantService.NewAssistantService(s.log, assistantService.Config{
		BotName:         s.cfg.BotName,
		BotOwner:        s.cfg.BotOwner,
		Location:        s.cfg.Location,
		ClassifyTimeout: s.cfg.ClassifyTimeout,
		DraftTimeout:    s.cfg.DraftTimeout,
		SessionTimeout:  s.cfg.DraftSessionTimeout,
	}, assistantService.Dependencies{
		Chat:      s.chat,
		Sessions:  sessions,
		Reminders: reminderRepo,
		Google:    s.googleProvider,
		Notifier:  notifier,
		Scheduler: s.scheduler,
		Train:     trainServices,
		Utils:     s.utils,
	})
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, s.assistantService)

	// Briefing Domain
	briefingServices := briefingService.NewBriefingService(s.log, briefingService.Config{
		City:     s.cfg.BriefingCity,
		Timeout:  s.cfg.BriefingTimeout,
		Location: s.cfg.Location,
	}, s.chat)
	briefingHandlers := briefingHandler.New(s.log, s.validator, s.middleware, briefingServices)

	s.listenWhatsapp()
	s.restoreReminders()

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers, trainHandlers, briefingHandlers)
}

// listenWhatsapp routes every inbound chat message through the assistant.
func (s *Server) listenWhatsapp() {
	if s.whatsappClient == nil {
		return
	}

	s.whatsappClient.OnMessage(func(ctx context.Context, in whatsapp.InboundMessage) (string, error) {
		reply, err := s.assistantService.HandleMessage(ctx, assistant.IncomingMessage{
			UserID:     in.UserID,
			SenderName: in.SenderName,
			Text:       in.Text,
		})
		if err != nil {
			return "", err
		}
		return reply.Text, nil
	})
}

func (s *Server) restoreReminders() {
	ctx := contextPkg.WithRequestID(context.Background(), "startup")
	n, err := s.assistantService.RestorePendingReminders(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to restore pending reminders")
		return
	}
	if n > 0 {
		s.log.Infof("Restored %d pending reminders", n)
	}
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := s.cfg.Port
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops timers and releases connections. Pending reminders stay in
// the database and are re-armed on the next start.
func (s *Server) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.whatsappClient != nil {
		if err := s.whatsappClient.Disconnect(); err != nil {
			s.log.Errorf("Failed to disconnect WhatsApp: %v", err)
		}
	}
	if err := s.engine.Shutdown(); err != nil {
		s.log.Errorf("Failed to shut down http server: %v", err)
	}
	if s.redisServer != nil {
		_ = s.redisServer.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
