package assistantRepository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var ErrReminderNotFound = errors.New("reminder not found")

type ReminderDB struct {
	ID         sql.NullString `db:"id"`
	UserID     sql.NullString `db:"user_id"`
	Task       sql.NullString `db:"task"`
	RemindAt   time.Time      `db:"remind_at"`
	Recurrence sql.NullString `db:"recurrence"`
	Status     sql.NullString `db:"status"`
	EventLink  sql.NullString `db:"event_link"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r ReminderDB) toEntity() entity.Reminder {
	return entity.Reminder{
		ID:         r.ID.String,
		UserID:     r.UserID.String,
		Task:       r.Task.String,
		RemindAt:   r.RemindAt,
		Recurrence: r.Recurrence.String,
		Status:     entity.ReminderStatus(r.Status.String),
		EventLink:  r.EventLink.String,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *reminderRepository) CreateReminder(c context.Context, reminder entity.Reminder) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"id":         reminder.ID,
		"user_id":    reminder.UserID,
		"task":       reminder.Task,
		"remind_at":  reminder.RemindAt,
		"recurrence": reminder.Recurrence,
		"status":     string(reminder.Status),
		"event_link": reminder.EventLink,
		"created_at": now,
		"updated_at": now,
	}

	query, args, err := sqlx.Named(queryCreateReminder, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateReminder")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating reminder")
		return err
	}

	return nil
}

func (r *reminderRepository) GetReminderByID(c context.Context, id string) (entity.Reminder, error) {
	requestID := contextPkg.GetRequestID(c)
	var reminder ReminderDB

	query, args, err := sqlx.Named(queryGetReminderByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetReminderByID named query preparation err")
		return entity.Reminder{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&reminder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Reminder{}, ErrReminderNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting reminder")
		return entity.Reminder{}, err
	}

	return reminder.toEntity(), nil
}

func (r *reminderRepository) ListUpcomingByUser(c context.Context, userID string, from time.Time) ([]entity.Reminder, error) {
	return r.list(c, queryListUpcomingByUser, map[string]interface{}{
		"user_id": userID,
		"from":    from,
	})
}

func (r *reminderRepository) ListPending(c context.Context) ([]entity.Reminder, error) {
	return r.list(c, queryListPending, map[string]interface{}{})
}

func (r *reminderRepository) list(c context.Context, namedQuery string, argsKV map[string]interface{}) ([]entity.Reminder, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for listing reminders")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []ReminderDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing reminders")
		return nil, err
	}

	reminders := make([]entity.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, row.toEntity())
	}
	return reminders, nil
}

func (r *reminderRepository) Reschedule(c context.Context, id string, at time.Time) error {
	return r.exec(c, queryReschedule, map[string]interface{}{
		"id":         id,
		"remind_at":  at,
		"updated_at": time.Now(),
	})
}

func (r *reminderRepository) UpdateStatus(c context.Context, id string, status entity.ReminderStatus) error {
	return r.exec(c, queryUpdateStatus, map[string]interface{}{
		"id":         id,
		"status":     string(status),
		"updated_at": time.Now(),
	})
}

func (r *reminderRepository) SetEventLink(c context.Context, id string, link string) error {
	return r.exec(c, querySetEventLink, map[string]interface{}{
		"id":         id,
		"event_link": link,
		"updated_at": time.Now(),
	})
}

func (r *reminderRepository) exec(c context.Context, namedQuery string, argsKV map[string]interface{}) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for reminder update")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating reminder")
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrReminderNotFound
	}
	return nil
}
