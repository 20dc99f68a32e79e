package trainService

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/fallback"
	"github.com/Dhruvin6677/ai-buddy/pkg/irctc"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const DefaultDemoPNR = "8204567890"

var pnrRe = regexp.MustCompile(`^\d{10}$`)

type ITrainService interface {
	LookupPNR(ctx context.Context, pnr string) fallback.Result[entity.TrainStatus]
}

type Config struct {
	DemoPNR string
	// LiveTimeout bounds the live provider call.
	LiveTimeout time.Duration
}

type trainService struct {
	log   *logrus.Logger
	chain *fallback.Chain[entity.TrainStatus]
}

// NewTrainService wires shortcut, live and simulated layers. A nil client
// means the live layer is skipped.
func NewTrainService(log *logrus.Logger, cfg Config, client irctc.IClient) ITrainService {
	return newTrainService(log, cfg, client, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newTrainService(log *logrus.Logger, cfg Config, client irctc.IClient, now func() time.Time, rng *rand.Rand) *trainService {
	if cfg.DemoPNR == "" {
		cfg.DemoPNR = DefaultDemoPNR
	}
	if cfg.LiveTimeout <= 0 {
		cfg.LiveTimeout = irctc.DefaultTimeout
	}

	strategies := []fallback.Strategy[entity.TrainStatus]{
		&shortcutLayer{demoPNR: cfg.DemoPNR, now: now},
	}
	if client != nil {
		strategies = append(strategies, &liveLayer{client: client, timeout: cfg.LiveTimeout, log: log})
	} else {
		log.Warn("[trainService] live PNR provider not configured, using shortcut and simulation only")
	}

	return &trainService{
		log: log,
		chain: fallback.NewChain[entity.TrainStatus](log,
			&simulatedLayer{now: now, rng: &lockedRand{rng: rng}},
			strategies,
			fallback.WithNormalizer[entity.TrainStatus](NormalizePNR),
			fallback.WithValidator[entity.TrainStatus](ValidPNR),
		),
	}
}

func (s *trainService) LookupPNR(ctx context.Context, pnr string) fallback.Result[entity.TrainStatus] {
	return s.chain.Acquire(ctx, pnr)
}

// NormalizePNR drops whitespace and the dashes people type between digit
// groups.
func NormalizePNR(pnr string) string {
	return strings.ReplaceAll(fallback.NormalizeKey(pnr), "-", "")
}

// ValidPNR reports whether a normalised key looks like a PNR.
func ValidPNR(pnr string) bool {
	return pnrRe.MatchString(pnr)
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
