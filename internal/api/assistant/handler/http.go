package assistantHandler

import (
	assistantService "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/service"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	assistantService assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: assistantService,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	assistant.Post("/messages", h.middleware.NewRateLimiter, h.HandleMessage)
	assistant.Post("/classify", h.middleware.NewRateLimiter, h.ClassifyIntent)

	assistant.Get("/sessions/:user_id", h.GetSession)
	assistant.Delete("/sessions/:user_id", h.AbandonSession)

	assistant.Get("/reminders/:user_id", h.ListReminders)

	assistant.Get("/google/connect/:user_id", h.GoogleConnect)
	assistant.Get("/google/callback", h.GoogleCallback)
}
