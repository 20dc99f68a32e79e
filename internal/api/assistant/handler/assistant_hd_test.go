package assistantHandler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssistant struct {
	lastMessage assistant.IncomingMessage
	sessions    map[string]entity.DraftSession
	reminders   []entity.Reminder
	connected   map[string]string
}

func newStubAssistant() *stubAssistant {
	return &stubAssistant{
		sessions:  map[string]entity.DraftSession{},
		connected: map[string]string{},
	}
}

func (s *stubAssistant) HandleMessage(_ context.Context, msg assistant.IncomingMessage) (*assistant.Reply, error) {
	s.lastMessage = msg
	return &assistant.Reply{Text: "Hi " + msg.SenderName, Intent: entity.IntentGeneralQuery}, nil
}

func (s *stubAssistant) ClassifyIntent(_ context.Context, text string, _ time.Time) entity.ClassificationResult {
	if strings.Contains(text, "pnr") {
		return entity.ClassificationResult{Intent: entity.IntentTrainTracking, Train: &entity.TrainEntity{PNR: "8204567890"}}
	}
	return entity.GeneralQuery()
}

func (s *stubAssistant) StartDraft(context.Context, assistant.IncomingMessage) (assistant.DraftReply, error) {
	return assistant.DraftReply{}, nil
}

func (s *stubAssistant) ContinueDraft(context.Context, assistant.IncomingMessage) (assistant.DraftReply, error) {
	return assistant.DraftReply{}, nil
}

func (s *stubAssistant) AbandonDraft(_ context.Context, userID string) error {
	if _, ok := s.sessions[userID]; !ok {
		return assistant.ErrSessionNotFound
	}
	delete(s.sessions, userID)
	return nil
}

func (s *stubAssistant) GetSession(_ context.Context, userID string) (entity.DraftSession, error) {
	session, ok := s.sessions[userID]
	if !ok {
		return entity.DraftSession{}, assistant.ErrSessionNotFound
	}
	return session, nil
}

func (s *stubAssistant) ListReminders(_ context.Context, userID string) ([]entity.Reminder, error) {
	if userID == "nostore" {
		return nil, assistant.ErrRemindersUnavailable
	}
	return s.reminders, nil
}

func (s *stubAssistant) RestorePendingReminders(context.Context) (int, error) { return 0, nil }

func (s *stubAssistant) GoogleAuthURL(userID string) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?state=" + userID, nil
}

func (s *stubAssistant) ConnectGoogle(_ context.Context, userID, code string) error {
	if code == "bad" {
		return assistant.ErrGoogleExchange
	}
	s.connected[userID] = code
	return nil
}

func newTestApp(svc *stubAssistant) *fiber.App {
	logger := log.NewDiscardLogger()
	mw := middleware.New(logger, middleware.Config{})

	app := fiber.New(fiber.Config{
		StrictRouting: true,
		JSONEncoder:   jsoniter.Marshal,
		JSONDecoder:   jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc).Start(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHandleMessageHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok",
			body:       `{"user_id": "919800000001", "sender_name": "Asha", "text": "hello", "attachments": ["/tmp/a.pdf"]}`,
			wantStatus: http.StatusOK,
			wantBody:   `"text":"Hi Asha"`,
		},
		{
			name:       "missing text",
			body:       `{"user_id": "919800000001"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "VALIDATION_ERROR",
		},
		{
			name:       "broken json",
			body:       `{"user_id": `,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStubAssistant()
			status, body := do(t, newTestApp(svc), http.MethodPost, "/api/v1/assistant/messages", tt.body)

			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestHandleMessageHandler_ForwardsAttachments(t *testing.T) {
	svc := newStubAssistant()
	status, _ := do(t, newTestApp(svc), http.MethodPost, "/api/v1/assistant/messages",
		`{"user_id": "919800000001", "sender_name": "Asha", "text": "send it", "attachments": ["/tmp/a.pdf"]}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"/tmp/a.pdf"}, svc.lastMessage.Attachments)
}

func TestClassifyHandler(t *testing.T) {
	status, body := do(t, newTestApp(newStubAssistant()), http.MethodPost, "/api/v1/assistant/classify", `{"text": "track pnr 8204567890"}`)

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"intent": "train_tracking", "entities": {"pnr": "8204567890"}}`, body)
}

func TestSessionHandlers(t *testing.T) {
	svc := newStubAssistant()
	svc.sessions["919800000001"] = entity.DraftSession{
		ID:     "01HSESSION",
		UserID: "919800000001",
		State:  entity.DraftStateDrafting,
		Turns:  []entity.Turn{{Role: "user", Content: "write to my boss"}},
	}
	app := newTestApp(svc)

	status, body := do(t, app, http.MethodGet, "/api/v1/assistant/sessions/919800000001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"state":"Drafting"`)

	status, _ = do(t, app, http.MethodDelete, "/api/v1/assistant/sessions/919800000001", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodGet, "/api/v1/assistant/sessions/919800000001", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "no active draft session")

	status, _ = do(t, app, http.MethodDelete, "/api/v1/assistant/sessions/919800000001", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListRemindersHandler(t *testing.T) {
	svc := newStubAssistant()
	svc.reminders = []entity.Reminder{{
		ID:         "r1",
		Task:       "call mom",
		RemindAt:   time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC),
		Recurrence: "daily",
	}}
	app := newTestApp(svc)

	status, body := do(t, app, http.MethodGet, "/api/v1/assistant/reminders/919800000001", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"reminders": [{"id": "r1", "task": "call mom", "remind_at": "2024-01-15T21:00:00Z", "recurrence": "daily"}]}`, body)

	status, _ = do(t, app, http.MethodGet, "/api/v1/assistant/reminders/nostore", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestGoogleHandlers(t *testing.T) {
	svc := newStubAssistant()
	app := newTestApp(svc)

	status, body := do(t, app, http.MethodGet, "/api/v1/assistant/google/connect/919800000001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "state=919800000001")

	status, _ = do(t, app, http.MethodGet, "/api/v1/assistant/google/callback?state=919800000001", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/assistant/google/callback?state=919800000001&code=bad", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/assistant/google/callback?state=919800000001&code=4%2F0Aean", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4/0Aean", svc.connected["919800000001"])
}
