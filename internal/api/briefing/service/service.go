package briefingService

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const DefaultCity = "Vijayawada"

type IBriefingService interface {
	GenerateBriefing(ctx context.Context, in entity.BriefingInput) entity.BriefingBundle
}

type Config struct {
	// City is used when neither the request nor the weather payload names one.
	City     string
	Timeout  time.Duration
	Location *time.Location
}

type briefingService struct {
	log  *logrus.Logger
	cfg  Config
	chat llm.IChat
	now  func() time.Time
}

func NewBriefingService(log *logrus.Logger, cfg Config, chat llm.IChat) IBriefingService {
	return newBriefingService(log, cfg, chat, time.Now)
}

func newBriefingService(log *logrus.Logger, cfg Config, chat llm.IChat, now func() time.Time) *briefingService {
	if cfg.City == "" {
		cfg.City = DefaultCity
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if chat == nil {
		log.Warn("[briefingService] no LLM provider configured, briefings use static text")
	}

	return &briefingService{
		log:  log,
		cfg:  cfg,
		chat: chat,
		now:  now,
	}
}
