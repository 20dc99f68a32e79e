// Package scheduler runs one-shot jobs at a wall-clock time inside the process.
package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type IScheduler interface {
	Schedule(id string, at time.Time, job func())
	Cancel(id string) bool
	Pending() int
	Stop()
}

type scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	log     *logrus.Logger
	now     func() time.Time
}

func New(log *logrus.Logger) IScheduler {
	return &scheduler{
		timers: make(map[string]*time.Timer),
		log:    log,
		now:    time.Now,
	}
}

// Schedule runs job at the given time, replacing any job with the same id.
// Times in the past run immediately.
func (s *scheduler) Schedule(id string, at time.Time, job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}

	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[id] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		defer func() {
			if r := recover(); r != nil {
				s.log.WithFields(logrus.Fields{
					"job_id": id,
					"panic":  r,
				}).Error("[scheduler] job panicked")
			}
		}()
		job()
	})
	s.timers[id] = t

	s.log.WithFields(logrus.Fields{
		"job_id": id,
		"at":     at.Format(time.RFC3339),
	}).Debug("[scheduler.Schedule] job scheduled")
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, id)
	return true
}

func (s *scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}
