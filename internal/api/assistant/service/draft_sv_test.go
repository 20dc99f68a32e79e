package assistantService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	assistantRepository "github.com/Dhruvin6677/ai-buddy/internal/api/assistant/repository"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID = "919800000001"

	clarifyingQuestion = "Happy to help! Who is your boss (name or email), which dates do you need off, and what is the reason?"
	firstDraft         = "Subject: Leave Request\n\nDear Mr. Rao,\n\nI would like to request leave on 18 and 19 January for a family function.\n\nRegards,\nAsha\n\nShall I send this, or do you want to make changes?"
	revisedDraft       = "Subject: Leave Application for 18-19 January\n\nDear Mr. Rao,\n\nI would like to request leave on 18 and 19 January for a family function.\n\nRegards,\nAsha\n\nShall I send this, or do you want to make changes?"
	commitNow          = "Sending it now!\n```json\nJSON_ACTION: {\"action\": \"SEND_EMAIL\", \"recipient_email\": null, \"subject\": \"Leave Application for 18-19 January\", \"body\": \"Dear Mr. Rao,\\n\\nI would like to request leave.\\n\\nRegards,\\nAsha\", \"scheduled_time\": \"NOW\"}\n```"
)

func msg(text string) assistant.IncomingMessage {
	return assistant.IncomingMessage{UserID: userID, SenderName: "Asha", Text: text}
}

// seedDrafting puts the user in Drafting with one exchange on record.
func seedDrafting(t *testing.T, h *harness) entity.DraftSession {
	t.Helper()
	s := entity.DraftSession{
		ID:             "01HSEED",
		UserID:         userID,
		SenderIdentity: "Asha",
		RecipientHint:  "rao@example.com",
		State:          entity.DraftStateDrafting,
		CreatedAt:      monday10am,
		UpdatedAt:      monday10am,
	}
	s.Append(llm.RoleUser, "write to my boss rao@example.com about leave on 18 and 19 jan for a family function", monday10am)
	s.Append(llm.RoleAssistant, firstDraft, monday10am)
	require.NoError(t, h.sessions.Save(context.Background(), s))
	return s
}

func storedSession(t *testing.T, h *harness) entity.DraftSession {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func TestStartDraft_VagueRequestStaysGathering(t *testing.T) {
	chat := &fakeChat{replies: []string{clarifyingQuestion}}
	h := newHarness(t, chat)

	reply, err := h.svc.StartDraft(context.Background(), msg("write to my boss about leave"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateGathering, reply.State)
	assert.Equal(t, clarifyingQuestion, reply.Text)
	assert.Nil(t, reply.Action)

	s := storedSession(t, h)
	assert.Equal(t, entity.DraftStateGathering, s.State)
	assert.Equal(t, "Asha", s.SenderIdentity)
	require.Len(t, s.Turns, 2)
	assert.Equal(t, llm.RoleUser, s.Turns[0].Role)
	assert.Equal(t, llm.RoleAssistant, s.Turns[1].Role)

	req := chat.request(0)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "The sender is Asha.")
	assert.Equal(t, "write to my boss about leave", req.Messages[1].Content)
}

func TestContinueDraft_RevisionStaysDrafting(t *testing.T) {
	chat := &fakeChat{replies: []string{revisedDraft}}
	h := newHarness(t, chat)
	seedDrafting(t, h)

	reply, err := h.svc.ContinueDraft(context.Background(), msg("revise the subject to mention the dates"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateDrafting, reply.State)
	assert.Equal(t, revisedDraft, reply.Text)

	s := storedSession(t, h)
	assert.Equal(t, entity.DraftStateDrafting, s.State)
	require.Len(t, s.Turns, 4)
	assert.Equal(t, firstDraft, s.Turns[1].Content)

	req := chat.request(0)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, firstDraft, req.Messages[2].Content)
	assert.Equal(t, "revise the subject to mention the dates", req.Messages[3].Content)
}

func TestContinueDraft_QuestionAboutDraftStaysDrafting(t *testing.T) {
	h := newHarness(t, &fakeChat{replies: []string{"What would you like the new subject to say?"}})
	seedDrafting(t, h)

	reply, err := h.svc.ContinueDraft(context.Background(), msg("revise the subject"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateDrafting, reply.State)
	assert.Equal(t, entity.DraftStateDrafting, storedSession(t, h).State)
}

func TestContinueDraft_CommitSendsNow(t *testing.T) {
	h := newHarness(t, &fakeChat{replies: []string{commitNow}})
	seedDrafting(t, h)

	reply, err := h.svc.ContinueDraft(context.Background(), msg("yes, send it now"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateCommitted, reply.State)
	require.NotNil(t, reply.Action)
	assert.Equal(t, entity.ActionSendEmail, reply.Action.Action)
	assert.True(t, reply.Action.IsImmediate())
	assert.Equal(t, "✅ Email successfully sent to rao@example.com!", reply.Text)

	require.Len(t, h.google.sent, 1)
	assert.Equal(t, "rao@example.com", h.google.sent[0].To)
	assert.Equal(t, "Leave Application for 18-19 January", h.google.sent[0].Subject)

	_, err = h.sessions.Get(context.Background(), userID)
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
}

func TestContinueDraft_CommitFenceIdempotent(t *testing.T) {
	payload := `{"action": "SEND_EMAIL", "recipient_email": "hr@example.com", "subject": "Leave", "body": "Please approve.", "scheduled_time": "NOW"}`
	outputs := map[string]string{
		"bare":   "JSON_ACTION: " + payload,
		"fenced": "```json\nJSON_ACTION: " + payload + "\n```",
		"prose":  "Done! Here it is:\n```\n" + payload + "\n```\nLet me know if you need anything else.",
	}

	var actions []entity.CommitAction
	for name, out := range outputs {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, &fakeChat{replies: []string{out}})
			seedDrafting(t, h)

			reply, err := h.svc.ContinueDraft(context.Background(), msg("send"))

			require.NoError(t, err)
			require.Equal(t, entity.DraftStateCommitted, reply.State)
			require.NotNil(t, reply.Action)
			actions = append(actions, *reply.Action)
			assert.Equal(t, "hr@example.com", h.google.sent[0].To)
		})
	}

	require.Len(t, actions, 3)
	assert.Equal(t, actions[0], actions[1])
	assert.Equal(t, actions[0], actions[2])
}

func TestContinueDraft_MalformedCommitSurfacesRawText(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{
			name: "truncated json",
			out:  `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": null, "subject": "Leave", "body": "Dear`,
		},
		{
			name: "invalid recipient",
			out:  `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": "rao at example", "subject": "Leave", "body": "Dear Mr. Rao", "scheduled_time": "NOW"}`,
		},
		{
			name: "unparseable schedule",
			out:  `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": null, "subject": "Leave", "body": "Dear Mr. Rao", "scheduled_time": "whenever"}`,
		},
		{
			name: "missing body",
			out:  `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": null, "subject": "Leave", "scheduled_time": "NOW"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeChat{replies: []string{tt.out}})
			seedDrafting(t, h)

			reply, err := h.svc.ContinueDraft(context.Background(), msg("yes send it"))

			require.NoError(t, err)
			assert.Equal(t, entity.DraftStateAwaitingConfirmation, reply.State)
			assert.Equal(t, tt.out, reply.Text)
			assert.Nil(t, reply.Action)
			assert.Empty(t, h.google.sent)

			s := storedSession(t, h)
			assert.Equal(t, entity.DraftStateAwaitingConfirmation, s.State)
			assert.Len(t, s.Turns, 4)
		})
	}
}

func TestContinueDraft_CommitBeforeDraftShownIsPreview(t *testing.T) {
	out := `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": "rao@example.com", "subject": "Leave", "body": "Dear Mr. Rao, I need leave.", "scheduled_time": "NOW"}`
	h := newHarness(t, &fakeChat{replies: []string{out}})

	reply, err := h.svc.StartDraft(context.Background(), msg("email rao@example.com that I need leave tomorrow and send it"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateDrafting, reply.State)
	assert.Nil(t, reply.Action)
	assert.Contains(t, reply.Text, "Subject: Leave")
	assert.Contains(t, reply.Text, confirmQuestion)
	assert.Empty(t, h.google.sent)
	assert.Equal(t, "rao@example.com", storedSession(t, h).RecipientHint)
}

func TestContinueDraft_ScheduledSend(t *testing.T) {
	out := `JSON_ACTION: {"action": "SEND_EMAIL", "recipient_email": null, "subject": "Leave", "body": "Dear Mr. Rao", "scheduled_time": "2024-01-16 10:00:00"}`
	h := newHarness(t, &fakeChat{replies: []string{out}})
	session := seedDrafting(t, h)

	reply, err := h.svc.ContinueDraft(context.Background(), msg("send it tomorrow at 10am"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateCommitted, reply.State)
	assert.Contains(t, reply.Text, "scheduled for Tue, 16 Jan 2024 at 10:00 AM")
	assert.Empty(t, h.google.sent)

	job, ok := h.scheduler.job("email:" + session.ID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), job.at)

	h.scheduler.fire(t, "email:"+session.ID)
	require.Len(t, h.google.sent, 1)
	assert.Equal(t, []string{"✅ Email successfully sent to rao@example.com!"}, h.notifier.all())
}

func TestContinueDraft_SendFailureIsReported(t *testing.T) {
	h := newHarness(t, &fakeChat{replies: []string{commitNow}})
	h.google.sendErr = errors.New("googleapi: Error 403")
	seedDrafting(t, h)

	reply, err := h.svc.ContinueDraft(context.Background(), msg("send it"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateCommitted, reply.State)
	assert.Contains(t, reply.Text, "❌ Failed to send email:")
	assert.NotContains(t, reply.Text, "403")
}

func TestContinueDraft_UpstreamFailureLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
		opts []harnessOption
	}{
		{
			name: "error",
			chat: &fakeChat{errs: []error{errors.New("connection reset")}},
		},
		{
			name: "timeout",
			chat: &fakeChat{delay: time.Second, replies: []string{revisedDraft}},
			opts: []harnessOption{withConfig(func(c *Config) { c.DraftTimeout = 20 * time.Millisecond })},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.chat, tt.opts...)
			seedDrafting(t, h)

			reply, err := h.svc.ContinueDraft(context.Background(), msg("revise the subject"))

			require.NoError(t, err)
			assert.Equal(t, draftUpstreamErrorText, reply.Text)
			assert.Equal(t, entity.DraftStateDrafting, reply.State)

			s := storedSession(t, h)
			assert.Equal(t, entity.DraftStateDrafting, s.State)
			assert.Len(t, s.Turns, 2)
		})
	}
}

func TestStartDraft_UpstreamFailureKeepsEmptySession(t *testing.T) {
	h := newHarness(t, &fakeChat{errs: []error{errors.New("connection reset")}})

	reply, err := h.svc.StartDraft(context.Background(), msg("write an email to my landlord"))

	require.NoError(t, err)
	assert.Equal(t, draftUpstreamErrorText, reply.Text)
	assert.Equal(t, entity.DraftStateGathering, reply.State)

	s := storedSession(t, h)
	assert.Equal(t, entity.DraftStateGathering, s.State)
	assert.Empty(t, s.Turns)
}

func TestContinueDraft_CancelKeywords(t *testing.T) {
	for _, word := range []string{"cancel", "STOP", " abort ", "/cancel"} {
		t.Run(word, func(t *testing.T) {
			chat := &fakeChat{}
			h := newHarness(t, chat)
			seedDrafting(t, h)

			reply, err := h.svc.ContinueDraft(context.Background(), msg(word))

			require.NoError(t, err)
			assert.Equal(t, entity.DraftStateAbandoned, reply.State)
			assert.Equal(t, draftCancelledText, reply.Text)
			assert.Zero(t, chat.calls())

			_, err = h.svc.GetSession(context.Background(), userID)
			assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
		})
	}
}

func TestAbandonDraft(t *testing.T) {
	h := newHarness(t, &fakeChat{replies: []string{clarifyingQuestion}})
	_, err := h.svc.StartDraft(context.Background(), msg("write to my boss about leave"))
	require.NoError(t, err)

	require.NoError(t, h.svc.AbandonDraft(context.Background(), userID))
	assert.ErrorIs(t, h.svc.AbandonDraft(context.Background(), userID), assistant.ErrSessionNotFound)
	assert.ErrorIs(t, h.svc.AbandonDraft(context.Background(), ""), assistant.ErrInvalidUserID)
}

func TestGetSession_IdleTimeoutAbandons(t *testing.T) {
	h := newHarness(t, &fakeChat{})
	seedDrafting(t, h)

	s, err := h.svc.GetSession(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateDrafting, s.State)

	h.clock.Advance(31 * time.Minute)

	_, err = h.svc.GetSession(context.Background(), userID)
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
	_, err = h.sessions.Get(context.Background(), userID)
	assert.ErrorIs(t, err, assistant.ErrSessionNotFound)
}

func TestGetSession_TerminalSessionDropped(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		wantWarn  bool
	}{
		{name: "delete succeeds"},
		{name: "delete failure is logged", deleteErr: errors.New("redis down"), wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var store assistantRepository.SessionStore = assistantRepository.NewMemorySessionStore(time.Hour)
			if tt.deleteErr != nil {
				store = &failingDeleteSessions{SessionStore: store, err: tt.deleteErr}
			}
			logger, hook := test.NewNullLogger()
			h := newHarness(t, &fakeChat{}, withSessions(store), withLogger(logger))

			require.NoError(t, store.Save(context.Background(), entity.DraftSession{
				ID:     "s-1",
				UserID: userID,
				State:  entity.DraftStateCommitted,
			}))

			ctx := contextPkg.WithRequestID(context.Background(), "req-9")
			_, err := h.svc.GetSession(ctx, userID)
			assert.ErrorIs(t, err, assistant.ErrSessionNotFound)

			var warned *logrus.Entry
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warned = e
				}
			}
			if !tt.wantWarn {
				assert.Nil(t, warned)
				return
			}
			require.NotNil(t, warned)
			assert.Equal(t, "req-9", warned.Data["request_id"])
			assert.Equal(t, userID, warned.Data["user_id"])
			assert.Equal(t, "redis down", warned.Data["error"])
		})
	}
}

func TestContinueDraft_NoSessionStartsOne(t *testing.T) {
	h := newHarness(t, &fakeChat{replies: []string{clarifyingQuestion}})

	reply, err := h.svc.ContinueDraft(context.Background(), msg("draft an email"))

	require.NoError(t, err)
	assert.Equal(t, entity.DraftStateGathering, reply.State)
	assert.Equal(t, entity.DraftStateGathering, storedSession(t, h).State)
}

func TestGatherSlots(t *testing.T) {
	s := entity.DraftSession{}
	s.Append(llm.RoleUser, "write to my boss about leave", monday10am)
	slots := gatherSlots(s)
	assert.True(t, slots.recipient)
	assert.True(t, slots.reason)
	assert.Equal(t, []string{"key facts"}, slots.missing())

	empty := gatherSlots(entity.DraftSession{})
	assert.Equal(t, []string{"recipient", "reason", "key facts"}, empty.missing())
}
