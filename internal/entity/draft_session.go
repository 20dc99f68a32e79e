package entity

import (
	"fmt"
	"time"
)

type DraftState uint8

const (
	DraftStateGathering            DraftState = 0
	DraftStateDrafting             DraftState = 1
	DraftStateAwaitingConfirmation DraftState = 2
	DraftStateCommitted            DraftState = 3
	DraftStateAbandoned            DraftState = 4
)

var DraftStateMap = map[DraftState]string{
	DraftStateGathering:            "Gathering",
	DraftStateDrafting:             "Drafting",
	DraftStateAwaitingConfirmation: "AwaitingConfirmation",
	DraftStateCommitted:            "Committed",
	DraftStateAbandoned:            "Abandoned",
}

func (s DraftState) String() string {
	return DraftStateMap[s]
}

func (s DraftState) MarshalText() ([]byte, error) {
	name, ok := DraftStateMap[s]
	if !ok {
		return nil, fmt.Errorf("unknown draft state %d", s)
	}
	return []byte(name), nil
}

func (s *DraftState) UnmarshalText(b []byte) error {
	for state, name := range DraftStateMap {
		if name == string(b) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown draft state %q", b)
}

func (s DraftState) IsTerminal() bool {
	return s == DraftStateCommitted || s == DraftStateAbandoned
}

type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// DraftSession is the per-user email drafting conversation. It is the only
// state that survives between messages.
type DraftSession struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Turns          []Turn     `json:"turns"`
	SenderIdentity string     `json:"sender_identity"`
	RecipientHint  string     `json:"recipient_hint,omitempty"`
	Attachments    []string   `json:"attachments,omitempty"`
	State          DraftState `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (d *DraftSession) IsTerminal() bool {
	return d.State.IsTerminal()
}

func (d *DraftSession) Append(role, content string, at time.Time) {
	d.Turns = append(d.Turns, Turn{Role: role, Content: content, At: at})
	d.UpdatedAt = at
}

// Abandon is the external transition; it is accepted from any non-terminal
// state.
func (d *DraftSession) Abandon(at time.Time) bool {
	if d.IsTerminal() {
		return false
	}
	d.State = DraftStateAbandoned
	d.UpdatedAt = at
	return true
}

func (d *DraftSession) IdleSince(now time.Time) time.Duration {
	return now.Sub(d.UpdatedAt)
}
