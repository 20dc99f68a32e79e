package entity

import (
	"errors"
	"time"
)

var ErrReminderTimestampMissing = errors.New("reminder has no resolved timestamp")

// ReminderEntity is one reminder as extracted from a message. Timestamp is the
// canonical text form of At.
type ReminderEntity struct {
	Task       string    `json:"task"`
	Timestamp  string    `json:"timestamp"`
	Recurrence string    `json:"recurrence,omitempty"`
	At         time.Time `json:"-"`
}

func (r ReminderEntity) Validate() error {
	if r.At.IsZero() {
		return ErrReminderTimestampMissing
	}
	return nil
}

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusDelivered ReminderStatus = "delivered"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

type Reminder struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	Task       string         `db:"task" json:"task"`
	RemindAt   time.Time      `db:"remind_at" json:"remind_at"`
	Recurrence string         `db:"recurrence" json:"recurrence,omitempty"`
	Status     ReminderStatus `db:"status" json:"status"`
	EventLink  string         `db:"event_link" json:"event_link,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

func (r Reminder) IsRecurring() bool {
	return r.Recurrence != ""
}
