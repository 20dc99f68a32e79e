package assistantService

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	assistantRepository "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/repository"
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/google"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
	"github.com/Dhruvin6677/ai-buddy/pkg/scheduler"
	"github.com/Dhruvin6677/ai-buddy/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAssistantService interface {
	HandleMessage(ctx context.Context, msg assistant.IncomingMessage) (*assistant.Reply, error)
	ClassifyIntent(ctx context.Context, text string, now time.Time) entity.ClassificationResult
	StartDraft(ctx context.Context, msg assistant.IncomingMessage) (assistant.DraftReply, error)
	ContinueDraft(ctx context.Context, msg assistant.IncomingMessage) (assistant.DraftReply, error)
	AbandonDraft(ctx context.Context, userID string) error
	GetSession(ctx context.Context, userID string) (entity.DraftSession, error)
	ListReminders(ctx context.Context, userID string) ([]entity.Reminder, error)
	RestorePendingReminders(ctx context.Context) (int, error)
	GoogleAuthURL(userID string) (string, error)
	ConnectGoogle(ctx context.Context, userID, code string) error
}

// Notifier delivers text to a user outside a request, e.g. a due reminder.
type Notifier interface {
	SendMessage(ctx context.Context, userID, message string) error
}

type Config struct {
	BotName  string
	BotOwner string
	Location *time.Location

	ClassifyTimeout time.Duration
	DraftTimeout    time.Duration
	ReplyTimeout    time.Duration
	// SessionTimeout is how long a draft may sit idle before it is abandoned.
	SessionTimeout time.Duration
	EventDuration  time.Duration
}

// Dependencies are the collaborators of the assistant. Chat, Reminders,
// Google and Notifier may be nil when their configuration is missing.
type Dependencies struct {
	Chat      llm.IChat
	Sessions  assistantRepository.SessionStore
	Reminders assistantRepository.Repository
	Google    google.ItfGoogle
	Notifier  Notifier
	Scheduler scheduler.IScheduler
	Train     trainService.ITrainService
	Utils     utils.IUtils
	Now       func() time.Time
}

type assistantService struct {
	log       *logrus.Logger
	cfg       Config
	chat      llm.IChat
	sessions  assistantRepository.SessionStore
	reminders assistantRepository.Repository
	google    google.ItfGoogle
	notifier  Notifier
	scheduler scheduler.IScheduler
	train     trainService.ITrainService
	utils     utils.IUtils
	resolver  *nlp.TimeResolver
	now       func() time.Time
	locks     *userLocks
}

func NewAssistantService(log *logrus.Logger, cfg Config, deps Dependencies) IAssistantService {
	return newAssistantService(log, cfg, deps)
}

func newAssistantService(log *logrus.Logger, cfg Config, deps Dependencies) *assistantService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.BotName == "" {
		cfg.BotName = "AI Buddy"
	}
	if cfg.ClassifyTimeout <= 0 {
		cfg.ClassifyTimeout = 10 * time.Second
	}
	if cfg.DraftTimeout <= 0 {
		cfg.DraftTimeout = 45 * time.Second
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 20 * time.Second
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = 30 * time.Minute
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	sched := deps.Scheduler
	if sched == nil {
		sched = scheduler.New(log)
	}
	u := deps.Utils
	if u == nil {
		u = utils.New()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = assistantRepository.NewMemorySessionStore(2 * cfg.SessionTimeout)
	}

	if deps.Chat == nil {
		log.Warn("[assistantService] no LLM provider configured, classification degrades to general_query")
	}
	if deps.Reminders == nil {
		log.Warn("[assistantService] reminder storage not configured, reminders live in memory only")
	}

	return &assistantService{
		log:       log,
		cfg:       cfg,
		chat:      deps.Chat,
		sessions:  sessions,
		reminders: deps.Reminders,
		google:    deps.Google,
		notifier:  deps.Notifier,
		scheduler: sched,
		train:     deps.Train,
		utils:     u,
		resolver:  nlp.NewTimeResolver(cfg.Location),
		now:       now,
		locks:     newUserLocks(),
	}
}

func (s *assistantService) currentTime() time.Time {
	return s.now().In(s.cfg.Location)
}
