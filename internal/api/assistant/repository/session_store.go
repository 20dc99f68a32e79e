package assistantRepository

import (
	"errors"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/redis"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const sessionKeyPrefix = "draft_session:"

// SessionStore holds at most one draft session per user. Get returns
// assistant.ErrSessionNotFound when the user has none.
type SessionStore interface {
	Get(ctx context.Context, userID string) (entity.DraftSession, error)
	Save(ctx context.Context, session entity.DraftSession) error
	Delete(ctx context.Context, userID string) error
}

type redisSessionStore struct {
	redis redis.IRedis
	ttl   time.Duration
	log   *logrus.Logger
}

// NewRedisSessionStore keeps sessions in redis. ttl bounds how long an idle
// session survives in storage; it should exceed the draft idle timeout.
func NewRedisSessionStore(r redis.IRedis, ttl time.Duration, log *logrus.Logger) SessionStore {
	return &redisSessionStore{redis: r, ttl: ttl, log: log}
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (entity.DraftSession, error) {
	var session entity.DraftSession
	if err := s.redis.GetJSON(ctx, sessionKeyPrefix+userID, &session); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.DraftSession{}, assistant.ErrSessionNotFound
		}
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("[redisSessionStore.Get] failed to load session")
		return entity.DraftSession{}, errors.Join(assistant.ErrSessionStore, err)
	}
	return session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session entity.DraftSession) error {
	if err := s.redis.SetJSON(ctx, sessionKeyPrefix+session.UserID, session, s.ttl); err != nil {
		return errors.Join(assistant.ErrSessionStore, err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Delete(ctx, sessionKeyPrefix+userID); err != nil {
		return errors.Join(assistant.ErrSessionStore, err)
	}
	return nil
}

type memorySessionStore struct {
	cache *cache.Cache
}

// NewMemorySessionStore keeps sessions in process memory. Used when redis is
// not configured.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *memorySessionStore) Get(_ context.Context, userID string) (entity.DraftSession, error) {
	v, ok := s.cache.Get(sessionKeyPrefix + userID)
	if !ok {
		return entity.DraftSession{}, assistant.ErrSessionNotFound
	}
	session := v.(entity.DraftSession)
	session.Turns = append([]entity.Turn(nil), session.Turns...)
	return session, nil
}

func (s *memorySessionStore) Save(_ context.Context, session entity.DraftSession) error {
	session.Turns = append([]entity.Turn(nil), session.Turns...)
	s.cache.SetDefault(sessionKeyPrefix+session.UserID, session)
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, userID string) error {
	s.cache.Delete(sessionKeyPrefix + userID)
	return nil
}
