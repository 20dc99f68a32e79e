package briefingHandler

import (
	briefingService "github.com/Dhruvin6677/ai-buddy/internal/api/briefing/service"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type BriefingHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	briefingService briefingService.IBriefingService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	briefingService briefingService.IBriefingService,
) *BriefingHandler {
	return &BriefingHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		briefingService: briefingService,
	}
}

func (h *BriefingHandler) Start(srv fiber.Router) {
	briefing := srv.Group("/briefing")

	briefing.Post("", h.middleware.NewRateLimiter, h.GenerateBriefing)
}
