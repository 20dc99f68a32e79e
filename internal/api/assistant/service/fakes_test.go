package assistantService

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	assistantRepository "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/repository"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/pkg/google"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/sirupsen/logrus"
)

var monday10am = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeChat answers with scripted replies in call order. An error at the same
// index wins over the reply.
type fakeChat struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	delay    time.Duration
	requests []llm.Request
}

func (f *fakeChat) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.replies) {
		return f.replies[idx], nil
	}
	return "", errors.New("no scripted reply")
}

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeChat) request(i int) llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

type fakeGoogle struct {
	mu         sync.Mutex
	connected  bool
	sent       []google.Email
	sendErr    error
	rows       [][]interface{}
	failItem   string
	events     []google.CalendarEvent
	exchangeOK bool
}

func (f *fakeGoogle) AuthURL(userID string) string {
	return "https://accounts.example.com/auth?state=" + userID
}

func (f *fakeGoogle) Exchange(_ context.Context, _ string, code string) error {
	if !f.exchangeOK || code == "" {
		return errors.New("invalid grant")
	}
	f.connected = true
	return nil
}

func (f *fakeGoogle) Connected(context.Context, string) bool { return f.connected }

func (f *fakeGoogle) CreateEvent(_ context.Context, _ string, ev google.CalendarEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return "https://calendar.example.com/event/1", nil
}

func (f *fakeGoogle) AppendExpense(_ context.Context, _ string, row []interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failItem != "" && row[2] == f.failItem {
		return "", errors.New("permission denied")
	}
	f.rows = append(f.rows, row)
	return "https://docs.example.com/sheet/1", nil
}

func (f *fakeGoogle) SendEmail(_ context.Context, _ string, email google.Email) (google.SendReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return google.SendReport{}, f.sendErr
	}
	f.sent = append(f.sent, email)
	return google.SendReport{Attached: len(email.Attachments)}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) SendMessage(_ context.Context, _ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// fakeScheduler records jobs so tests decide when they run.
type fakeScheduler struct {
	mu   sync.Mutex
	jobs map[string]scheduledJob
}

type scheduledJob struct {
	at  time.Time
	run func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]scheduledJob{}}
}

func (f *fakeScheduler) Schedule(id string, at time.Time, job func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id] = scheduledJob{at: at, run: job}
}

func (f *fakeScheduler) Cancel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.jobs[id]
	delete(f.jobs, id)
	return ok
}

func (f *fakeScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func (f *fakeScheduler) Stop() {}

func (f *fakeScheduler) job(id string) (scheduledJob, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	return j, ok
}

// fire runs and removes a job, the way a timer would.
func (f *fakeScheduler) fire(t *testing.T, id string) {
	t.Helper()
	f.mu.Lock()
	j, ok := f.jobs[id]
	delete(f.jobs, id)
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no job %q scheduled", id)
	}
	j.run()
}

type fakeReminders struct {
	mu        sync.Mutex
	reminders map[string]entity.Reminder
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{reminders: map[string]entity.Reminder{}}
}

func (f *fakeReminders) NewClient(bool) (assistantRepository.Client, error) {
	return assistantRepository.Client{
		Reminder: f,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (f *fakeReminders) CreateReminder(_ context.Context, r entity.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[r.ID] = r
	return nil
}

func (f *fakeReminders) GetReminderByID(_ context.Context, id string) (entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return entity.Reminder{}, assistantRepository.ErrReminderNotFound
	}
	return r, nil
}

func (f *fakeReminders) ListUpcomingByUser(_ context.Context, userID string, from time.Time) ([]entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID && r.Status == entity.ReminderStatusPending && !r.RemindAt.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminders) ListPending(context.Context) ([]entity.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Reminder
	for _, r := range f.reminders {
		if r.Status == entity.ReminderStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminders) Reschedule(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(r *entity.Reminder) { r.RemindAt = at })
}

func (f *fakeReminders) UpdateStatus(_ context.Context, id string, status entity.ReminderStatus) error {
	return f.update(id, func(r *entity.Reminder) { r.Status = status })
}

func (f *fakeReminders) SetEventLink(_ context.Context, id string, link string) error {
	return f.update(id, func(r *entity.Reminder) { r.EventLink = link })
}

func (f *fakeReminders) update(id string, fn func(*entity.Reminder)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return assistantRepository.ErrReminderNotFound
	}
	fn(&r)
	f.reminders[id] = r
	return nil
}

type harness struct {
	svc       *assistantService
	chat      *fakeChat
	clock     *testClock
	google    *fakeGoogle
	notifier  *fakeNotifier
	scheduler *fakeScheduler
	reminders *fakeReminders
	sessions  assistantRepository.SessionStore
	logger    *logrus.Logger
}

// failingDeleteSessions is a session store whose Delete always fails.
type failingDeleteSessions struct {
	assistantRepository.SessionStore
	err error
}

func (f *failingDeleteSessions) Delete(context.Context, string) error {
	return f.err
}

type harnessOption func(*harness, *Config, *Dependencies)

func withoutChat() harnessOption {
	return func(h *harness, _ *Config, d *Dependencies) {
		h.chat = nil
		d.Chat = nil
	}
}

func withoutGoogle() harnessOption {
	return func(h *harness, _ *Config, d *Dependencies) {
		h.google = nil
		d.Google = nil
	}
}

func withoutReminderStore() harnessOption {
	return func(h *harness, _ *Config, d *Dependencies) {
		h.reminders = nil
		d.Reminders = nil
	}
}

func withSessions(store assistantRepository.SessionStore) harnessOption {
	return func(h *harness, _ *Config, d *Dependencies) {
		h.sessions = store
		d.Sessions = store
	}
}

func withLogger(l *logrus.Logger) harnessOption {
	return func(h *harness, _ *Config, _ *Dependencies) {
		h.logger = l
	}
}

func withConfig(fn func(*Config)) harnessOption {
	return func(_ *harness, c *Config, _ *Dependencies) {
		fn(c)
	}
}

func newHarness(t *testing.T, chat *fakeChat, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		chat:      chat,
		clock:     &testClock{now: monday10am},
		google:    &fakeGoogle{connected: true},
		notifier:  &fakeNotifier{},
		scheduler: newFakeScheduler(),
		reminders: newFakeReminders(),
		sessions:  assistantRepository.NewMemorySessionStore(time.Hour),
		logger:    log.NewDiscardLogger(),
	}

	cfg := Config{
		BotName:        "AI Buddy",
		BotOwner:       "Dhruvin",
		Location:       time.UTC,
		SessionTimeout: 30 * time.Minute,
	}
	deps := Dependencies{
		Sessions:  h.sessions,
		Google:    h.google,
		Notifier:  h.notifier,
		Scheduler: h.scheduler,
		Reminders: h.reminders,
		Now:       h.clock.Now,
	}
	if chat != nil {
		deps.Chat = chat
	}

	for _, opt := range opts {
		opt(h, &cfg, &deps)
	}

	h.svc = newAssistantService(h.logger, cfg, deps)
	return h
}
