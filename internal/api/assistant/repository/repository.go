package assistantRepository

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Reminder: &reminderRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Reminder interface {
		CreateReminder(ctx context.Context, reminder entity.Reminder) error
		GetReminderByID(ctx context.Context, id string) (entity.Reminder, error)
		ListUpcomingByUser(ctx context.Context, userID string, from time.Time) ([]entity.Reminder, error)
		ListPending(ctx context.Context) ([]entity.Reminder, error)
		Reschedule(ctx context.Context, id string, at time.Time) error
		UpdateStatus(ctx context.Context, id string, status entity.ReminderStatus) error
		SetEventLink(ctx context.Context, id string, link string) error
	}

	Commit   func() error
	Rollback func() error
}

type reminderRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
