package assistant

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
)

type IncomingMessage struct {
	UserID      string   `json:"user_id" validate:"required"`
	SenderName  string   `json:"sender_name"`
	Text        string   `json:"text" validate:"required"`
	Attachments []string `json:"attachments"`
}

type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

type Reply struct {
	Text       string        `json:"text"`
	Intent     entity.Intent `json:"intent"`
	DraftState string        `json:"draft_state,omitempty"`
}

// DraftReply is what one drafting turn produces.
type DraftReply struct {
	Text   string               `json:"text"`
	State  entity.DraftState    `json:"state"`
	Action *entity.CommitAction `json:"action,omitempty"`
}

type SessionResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	State         string        `json:"state"`
	RecipientHint string        `json:"recipient_hint,omitempty"`
	Turns         []entity.Turn `json:"turns"`
	UpdatedAt     string        `json:"updated_at"`
}

func NewSessionResponse(s entity.DraftSession) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		State:         s.State.String(),
		RecipientHint: s.RecipientHint,
		Turns:         s.Turns,
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

type ReminderResponse struct {
	ID         string `json:"id"`
	Task       string `json:"task"`
	RemindAt   string `json:"remind_at"`
	Recurrence string `json:"recurrence,omitempty"`
	EventLink  string `json:"event_link,omitempty"`
}

type ReminderListResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
}

func NewReminderListResponse(reminders []entity.Reminder) ReminderListResponse {
	out := ReminderListResponse{Reminders: make([]ReminderResponse, 0, len(reminders))}
	for _, r := range reminders {
		out.Reminders = append(out.Reminders, ReminderResponse{
			ID:         r.ID,
			Task:       r.Task,
			RemindAt:   r.RemindAt.Format(time.RFC3339),
			Recurrence: r.Recurrence,
			EventLink:  r.EventLink,
		})
	}
	return out
}

type GoogleConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

type GoogleCallbackQuery struct {
	State string `query:"state" validate:"required"`
	Code  string `query:"code" validate:"required"`
}
