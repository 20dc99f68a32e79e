package assistantService

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/jsonextract"
	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	draftUpstreamErrorText = "⚠️ I'm having trouble connecting to the AI right now. Please try again later."
	draftCancelledText     = "🗑️ Okay, I've discarded the email draft."
	confirmQuestion        = "Shall I send this, or do you want to make changes?"
)

var (
	emailAddressRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	cancelWords    = []string{"cancel", "stop", "abort", "/cancel", "never mind", "nevermind"}
)

func (s *assistantService) StartDraft(ctx context.Context, msg assistant.IncomingMessage) (assistant.DraftReply, error) {
	if err := validateMessage(msg); err != nil {
		return assistant.DraftReply{}, err
	}
	unlock := s.locks.Lock(msg.UserID)
	defer unlock()

	return s.startDraft(ctx, msg, recipientFromText(msg.Text))
}

// ContinueDraft feeds one user turn into the active session, starting a new
// one when the user has none.
func (s *assistantService) ContinueDraft(ctx context.Context, msg assistant.IncomingMessage) (assistant.DraftReply, error) {
	if err := validateMessage(msg); err != nil {
		return assistant.DraftReply{}, err
	}
	unlock := s.locks.Lock(msg.UserID)
	defer unlock()

	session, active, err := s.activeSession(ctx, msg.UserID)
	if err != nil {
		return assistant.DraftReply{}, err
	}
	if !active {
		return s.startDraft(ctx, msg, recipientFromText(msg.Text))
	}
	return s.continueDraft(ctx, msg, session)
}

// AbandonDraft is the external cancel. It is valid from any non-terminal
// state.
func (s *assistantService) AbandonDraft(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return assistant.ErrInvalidUserID
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, assistant.ErrSessionNotFound) {
			return err
		}
		return assistant.ErrSessionStore
	}
	return s.abandon(ctx, session, "cancelled")
}

func (s *assistantService) GetSession(ctx context.Context, userID string) (entity.DraftSession, error) {
	if strings.TrimSpace(userID) == "" {
		return entity.DraftSession{}, assistant.ErrInvalidUserID
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	session, active, err := s.activeSession(ctx, userID)
	if err != nil {
		return entity.DraftSession{}, err
	}
	if !active {
		return entity.DraftSession{}, assistant.ErrSessionNotFound
	}
	return session, nil
}

// activeSession loads the user's session and drops it when it is terminal or
// has been idle past the session timeout.
func (s *assistantService) activeSession(ctx context.Context, userID string) (entity.DraftSession, bool, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, assistant.ErrSessionNotFound) {
			return entity.DraftSession{}, false, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("[assistantService.activeSession] failed to load draft session")
		return entity.DraftSession{}, false, assistant.ErrSessionStore
	}

	if session.IsTerminal() {
		if err := s.sessions.Delete(ctx, userID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"user_id":    userID,
				"session_id": session.ID,
				"error":      err.Error(),
			}).Warn("[assistantService.activeSession] failed to drop terminal draft session")
		}
		return entity.DraftSession{}, false, nil
	}

	if session.IdleSince(s.currentTime()) > s.cfg.SessionTimeout {
		if err := s.abandon(ctx, session, "timeout"); err != nil {
			return entity.DraftSession{}, false, err
		}
		return entity.DraftSession{}, false, nil
	}

	return session, true, nil
}

func (s *assistantService) abandon(ctx context.Context, session entity.DraftSession, reason string) error {
	session.Abandon(s.currentTime())
	if err := s.sessions.Delete(ctx, session.UserID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    session.UserID,
			"error":      err.Error(),
		}).Error("[assistantService.abandon] failed to delete draft session")
		return assistant.ErrSessionStore
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"user_id":    session.UserID,
		"session_id": session.ID,
		"reason":     reason,
	}).Info("[assistantService.abandon] draft session abandoned")
	return nil
}

func (s *assistantService) startDraft(ctx context.Context, msg assistant.IncomingMessage, recipientHint string) (assistant.DraftReply, error) {
	now := s.currentTime()

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return assistant.DraftReply{}, err
	}

	session := entity.DraftSession{
		ID:             id,
		UserID:         msg.UserID,
		SenderIdentity: strings.TrimSpace(msg.SenderName),
		RecipientHint:  recipientHint,
		Attachments:    msg.Attachments,
		State:          entity.DraftStateGathering,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return s.draftTurn(ctx, session, msg.Text, true)
}

func (s *assistantService) continueDraft(ctx context.Context, msg assistant.IncomingMessage, session entity.DraftSession) (assistant.DraftReply, error) {
	if isCancel(msg.Text) {
		if err := s.abandon(ctx, session, "user"); err != nil {
			return assistant.DraftReply{}, err
		}
		return assistant.DraftReply{Text: draftCancelledText, State: entity.DraftStateAbandoned}, nil
	}

	if session.RecipientHint == "" {
		session.RecipientHint = recipientFromText(msg.Text)
	}
	session.Attachments = mergeAttachments(session.Attachments, msg.Attachments)

	return s.draftTurn(ctx, session, msg.Text, false)
}

// draftTurn replays the whole conversation to the model and advances the
// session on its answer. A failed call leaves the stored session as it was.
func (s *assistantService) draftTurn(ctx context.Context, session entity.DraftSession, text string, isNew bool) (assistant.DraftReply, error) {
	requestID := contextPkg.GetRequestID(ctx)
	now := s.currentTime()
	before := session

	session.Append(llm.RoleUser, text, now)
	if session.State == entity.DraftStateDrafting {
		session.State = entity.DraftStateAwaitingConfirmation
	}

	if s.chat == nil {
		return assistant.DraftReply{Text: aiUnavailableText, State: before.State}, nil
	}

	c, cancel := context.WithTimeout(ctx, s.cfg.DraftTimeout)
	defer cancel()

	out, err := s.chat.Complete(c, llm.Request{
		Messages:    s.draftMessages(session, now),
		Tier:        llm.TierSmart,
		Temperature: 0.6,
		MaxTokens:   1024,
	})
	if err != nil {
		err = llm.NormalizeError(c, err)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    session.UserID,
			"state":      before.State.String(),
			"error":      err.Error(),
		}).Warn("[assistantService.draftTurn] drafting call failed")

		if isNew {
			if err := s.sessions.Save(ctx, before); err != nil {
				return assistant.DraftReply{}, assistant.ErrSessionStore
			}
		}
		return assistant.DraftReply{Text: draftUpstreamErrorText, State: before.State}, nil
	}

	out = strings.TrimSpace(out)
	session.Append(llm.RoleAssistant, out, s.currentTime())
	reply := s.advance(ctx, &session, out)

	if session.State == entity.DraftStateCommitted {
		if err := s.sessions.Delete(ctx, session.UserID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    session.UserID,
				"error":      err.Error(),
			}).Error("[assistantService.draftTurn] failed to delete committed session")
		}
	} else if err := s.sessions.Save(ctx, session); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    session.UserID,
			"error":      err.Error(),
		}).Error("[assistantService.draftTurn] failed to save draft session")
		return assistant.DraftReply{}, assistant.ErrSessionStore
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    session.UserID,
		"from":       before.State.String(),
		"to":         session.State.String(),
	}).Debug("[assistantService.draftTurn] draft session advanced")

	return reply, nil
}

// advance applies the model's answer to the state machine. A commit is only
// honoured right after a draft was shown, and only if the payload validates.
func (s *assistantService) advance(ctx context.Context, session *entity.DraftSession, out string) assistant.DraftReply {
	fragment, matched := jsonextract.FindObject(out, "action", entity.ActionSendEmail)

	switch {
	case matched && session.State == entity.DraftStateAwaitingConfirmation:
		action, err := entity.ParseCommitAction(fragment)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"user_id":    session.UserID,
				"error":      err.Error(),
			}).Warn("[assistantService.advance] commit payload rejected")
			return assistant.DraftReply{Text: out, State: session.State}
		}
		session.State = entity.DraftStateCommitted
		return assistant.DraftReply{
			Text:   s.executeCommit(ctx, *session, action),
			State:  entity.DraftStateCommitted,
			Action: &action,
		}

	case matched:
		session.State = entity.DraftStateDrafting
		if action, err := entity.ParseCommitAction(fragment); err == nil {
			return assistant.DraftReply{Text: draftPreview(action), State: session.State}
		}
		return assistant.DraftReply{Text: out, State: session.State}

	case containsDraft(out):
		session.State = entity.DraftStateDrafting

	case session.State != entity.DraftStateGathering:
		session.State = entity.DraftStateDrafting
	}

	return assistant.DraftReply{Text: out, State: session.State}
}

func (s *assistantService) draftMessages(session entity.DraftSession, now time.Time) []llm.Message {
	messages := make([]llm.Message, 0, len(session.Turns)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: draftSystemPrompt(session, now, gatherSlots(session)),
	})
	for _, turn := range session.Turns {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

// draftSlots is a rough reading of what the user has told us so far. It only
// steers the prompt; the model decides when to draft.
type draftSlots struct {
	recipient bool
	reason    bool
	facts     bool
}

func gatherSlots(session entity.DraftSession) draftSlots {
	var parts []string
	for _, turn := range session.Turns {
		if turn.Role == llm.RoleUser {
			parts = append(parts, turn.Content)
		}
	}
	text := strings.Join(parts, " ")

	return draftSlots{
		recipient: session.RecipientHint != "" || emailAddressRe.MatchString(text) ||
			nlp.ContainsAnyWord(text, "to my", "boss", "manager", "hr", "team", "teacher", "professor", "client", "sir", "madam"),
		reason: nlp.ContainsAnyWord(text, "about", "regarding", "because", "reason", "for", "since", "due to"),
		facts:  len(strings.Fields(text)) >= 12,
	}
}

func (d draftSlots) missing() []string {
	var out []string
	if !d.recipient {
		out = append(out, "recipient")
	}
	if !d.reason {
		out = append(out, "reason")
	}
	if !d.facts {
		out = append(out, "key facts")
	}
	return out
}

func draftPreview(action entity.CommitAction) string {
	return "Subject: " + action.Subject + "\n\n" + action.Body + "\n\n" + confirmQuestion
}

func containsDraft(out string) bool {
	return strings.Contains(strings.ToLower(out), "subject:")
}

func isCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, w := range cancelWords {
		if t == w {
			return true
		}
	}
	return false
}

func recipientFromText(text string) string {
	return emailAddressRe.FindString(text)
}

func mergeAttachments(have, add []string) []string {
	seen := make(map[string]struct{}, len(have))
	for _, a := range have {
		seen[a] = struct{}{}
	}
	for _, a := range add {
		if _, ok := seen[a]; ok || strings.TrimSpace(a) == "" {
			continue
		}
		seen[a] = struct{}{}
		have = append(have, a)
	}
	return have
}

func validateMessage(msg assistant.IncomingMessage) error {
	if strings.TrimSpace(msg.UserID) == "" {
		return assistant.ErrInvalidUserID
	}
	if strings.TrimSpace(msg.Text) == "" {
		return assistant.ErrEmptyMessage
	}
	return nil
}
