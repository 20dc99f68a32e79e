package assistantService

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/google"
	"github.com/Dhruvin6677/ai-buddy/pkg/nlp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	reminderTimeLayout  = "Mon, 02 Jan at 03:04 PM"
	reminderMissingTime = "⏰ When should I remind you? Please include a time, e.g. \"remind me to call mom at 9pm\"."
)

func (s *assistantService) setReminders(ctx context.Context, userID string, reminders []entity.ReminderEntity) string {
	if len(reminders) == 0 {
		return reminderMissingTime
	}

	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			task := r.Task
			if task == "" {
				task = "that"
			}
			lines = append(lines, fmt.Sprintf("⏰ I couldn't work out when to remind you about *%s*. When should I remind you?", task))
			continue
		}

		reminder, err := s.createReminder(ctx, userID, r)
		if err != nil {
			lines = append(lines, fmt.Sprintf("❌ I couldn't save the reminder for *%s*. Please try again.", r.Task))
			continue
		}

		line := fmt.Sprintf("✅ Reminder set: *%s* on %s", reminder.Task, reminder.RemindAt.Format(reminderTimeLayout))
		if reminder.IsRecurring() {
			line += fmt.Sprintf(" (repeats %s)", reminder.Recurrence)
		}
		if reminder.EventLink != "" {
			line += "\n🗓 Also added to your Google Calendar: " + reminder.EventLink
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n\n")
}

func (s *assistantService) createReminder(ctx context.Context, userID string, r entity.ReminderEntity) (entity.Reminder, error) {
	requestID := contextPkg.GetRequestID(ctx)
	now := s.currentTime()

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.Reminder{}, err
	}

	task := r.Task
	if task == "" {
		task = "Reminder"
	}

	reminder := entity.Reminder{
		ID:         id,
		UserID:     userID,
		Task:       task,
		RemindAt:   r.At,
		Recurrence: r.Recurrence,
		Status:     entity.ReminderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.reminders != nil {
		repo, err := s.reminders.NewClient(false)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("[assistantService.createReminder] failed to create repository client")
			return entity.Reminder{}, err
		}

		if err := repo.Reminder.CreateReminder(ctx, reminder); err != nil {
			return entity.Reminder{}, err
		}

		if link := s.addToCalendar(ctx, reminder); link != "" {
			reminder.EventLink = link
			if err := repo.Reminder.SetEventLink(ctx, reminder.ID, link); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id":  requestID,
					"reminder_id": reminder.ID,
					"error":       err.Error(),
				}).Warn("[assistantService.createReminder] failed to store event link")
			}
		}
	} else {
		reminder.EventLink = s.addToCalendar(ctx, reminder)
	}

	s.arm(reminder)

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"user_id":     userID,
		"reminder_id": reminder.ID,
		"remind_at":   reminder.RemindAt,
		"recurrence":  reminder.Recurrence,
	}).Info("[assistantService.createReminder] reminder created")

	return reminder, nil
}

func (s *assistantService) addToCalendar(ctx context.Context, reminder entity.Reminder) string {
	if s.google == nil || !s.google.Connected(ctx, reminder.UserID) {
		return ""
	}

	link, err := s.google.CreateEvent(ctx, reminder.UserID, google.CalendarEvent{
		Summary:  reminder.Task,
		Start:    reminder.RemindAt,
		Duration: s.cfg.EventDuration,
		TimeZone: s.cfg.Location.String(),
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"reminder_id": reminder.ID,
			"error":       err.Error(),
		}).Warn("[assistantService.addToCalendar] calendar event creation failed")
		return ""
	}
	return link
}

func (s *assistantService) arm(reminder entity.Reminder) {
	s.scheduler.Schedule("reminder:"+reminder.ID, reminder.RemindAt, func() {
		s.deliver(reminder)
	})
}

// deliver sends a due reminder and, for recurring ones, arms the next
// occurrence.
func (s *assistantService) deliver(reminder entity.Reminder) {
	ctx := contextPkg.WithRequestID(context.Background(), "reminder:"+reminder.ID)
	s.notify(ctx, reminder.UserID, "⏰ *Reminder:* "+reminder.Task)

	now := s.currentTime()
	if !reminder.IsRecurring() {
		s.updateReminder(ctx, reminder.ID, func(c reminderClient) error {
			return c.UpdateStatus(ctx, reminder.ID, entity.ReminderStatusDelivered)
		})
		return
	}

	next := reminder.RemindAt
	for !next.After(now) {
		n, ok := nlp.NextOccurrence(next, reminder.Recurrence)
		if !ok {
			return
		}
		next = n
	}
	reminder.RemindAt = next

	s.updateReminder(ctx, reminder.ID, func(c reminderClient) error {
		return c.Reschedule(ctx, reminder.ID, next)
	})
	s.arm(reminder)
}

type reminderClient interface {
	Reschedule(ctx context.Context, id string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status entity.ReminderStatus) error
}

func (s *assistantService) updateReminder(ctx context.Context, id string, fn func(reminderClient) error) {
	if s.reminders == nil {
		return
	}
	repo, err := s.reminders.NewClient(false)
	if err == nil {
		err = fn(repo.Reminder)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"reminder_id": id,
			"error":       err.Error(),
		}).Error("[assistantService.updateReminder] failed to update reminder")
	}
}

func (s *assistantService) ListReminders(ctx context.Context, userID string) ([]entity.Reminder, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, assistant.ErrInvalidUserID
	}
	if s.reminders == nil {
		return nil, assistant.ErrRemindersUnavailable
	}

	repo, err := s.reminders.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Reminder.ListUpcomingByUser(ctx, userID, s.currentTime())
}

func (s *assistantService) remindersText(ctx context.Context, userID string) string {
	reminders, err := s.ListReminders(ctx, userID)
	if err != nil {
		if errors.Is(err, assistant.ErrRemindersUnavailable) {
			return "⚠️ Reminder storage isn't set up, so I can't list your reminders right now."
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("[assistantService.remindersText] failed to list reminders")
		return "❌ I couldn't fetch your reminders. Please try again later."
	}

	if len(reminders) == 0 {
		return "📭 You have no upcoming reminders."
	}

	var b strings.Builder
	b.WriteString("🗒️ *Your upcoming reminders:*")
	for i, r := range reminders {
		fmt.Fprintf(&b, "\n%d. %s on %s", i+1, r.Task, r.RemindAt.In(s.cfg.Location).Format(reminderTimeLayout))
		if r.IsRecurring() {
			fmt.Fprintf(&b, " (%s)", r.Recurrence)
		}
	}
	return b.String()
}

// RestorePendingReminders re-arms stored reminders after a restart. Reminders
// that fell due while the process was down fire immediately.
func (s *assistantService) RestorePendingReminders(ctx context.Context) (int, error) {
	if s.reminders == nil {
		return 0, nil
	}

	repo, err := s.reminders.NewClient(false)
	if err != nil {
		return 0, err
	}

	pending, err := repo.Reminder.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	for _, r := range pending {
		r.RemindAt = r.RemindAt.In(s.cfg.Location)
		s.arm(r)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"count":      len(pending),
	}).Info("[assistantService.RestorePendingReminders] reminders re-armed")

	return len(pending), nil
}
