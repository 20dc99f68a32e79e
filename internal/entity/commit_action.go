package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
	"github.com/go-playground/validator/v10"
)

const (
	ActionSendEmail = "SEND_EMAIL"
	ScheduleNow     = "NOW"
)

var ErrMalformedAction = errors.New("malformed commit action")

// CommitAction is the terminal payload the drafting model emits once the user
// approves a draft.
type CommitAction struct {
	Action         string  `json:"action" validate:"required,eq=SEND_EMAIL"`
	RecipientEmail *string `json:"recipient_email" validate:"omitempty,email"`
	Subject        string  `json:"subject" validate:"required"`
	Body           string  `json:"body" validate:"required"`
	ScheduledTime  string  `json:"scheduled_time" validate:"required,scheduled_time"`
}

var actionValidator = newActionValidator()

func newActionValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("scheduled_time", func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if strings.EqualFold(value, ScheduleNow) {
			return true
		}
		_, err := time.Parse(nlp.TimestampLayout, value)
		return err == nil
	})
	return v
}

// ParseCommitAction decodes and strictly validates a fragment located by
// jsonextract.FindObject.
func ParseCommitAction(fragment string) (CommitAction, error) {
	var action CommitAction
	if err := json.Unmarshal([]byte(fragment), &action); err != nil {
		return CommitAction{}, errors.Join(ErrMalformedAction, err)
	}

	if action.RecipientEmail != nil {
		trimmed := strings.TrimSpace(*action.RecipientEmail)
		if trimmed == "" || strings.EqualFold(trimmed, "null") {
			action.RecipientEmail = nil
		} else {
			action.RecipientEmail = &trimmed
		}
	}
	action.ScheduledTime = strings.TrimSpace(action.ScheduledTime)

	if err := actionValidator.Struct(action); err != nil {
		return CommitAction{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	return action, nil
}

func (a CommitAction) IsImmediate() bool {
	return strings.EqualFold(a.ScheduledTime, ScheduleNow)
}

// SendAt returns the scheduled time interpreted in loc.
func (a CommitAction) SendAt(loc *time.Location) (time.Time, error) {
	if a.IsImmediate() {
		return time.Time{}, nil
	}
	return time.ParseInLocation(nlp.TimestampLayout, a.ScheduledTime, loc)
}

func (a CommitAction) Recipient(fallback string) string {
	if a.RecipientEmail != nil {
		return *a.RecipientEmail
	}
	return fallback
}
