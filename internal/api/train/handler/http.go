package trainHandler

import (
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type TrainHandler struct {
	log          *logrus.Logger
	middleware   middleware.Middleware
	trainService trainService.ITrainService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	trainService trainService.ITrainService,
) *TrainHandler {
	return &TrainHandler{
		log:          log,
		middleware:   middleware,
		trainService: trainService,
	}
}

func (h *TrainHandler) Start(srv fiber.Router) {
	train := srv.Group("/train")

	train.Get("/pnr/:pnr", h.GetPNRStatus)
}
