package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var ErrMissingDSN = errors.New("database dsn is not configured")

//go:embed migrations/*.sql
var migrations embed.FS

func New(dsn string, log *logrus.Logger) (*sqlx.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrMissingDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(50)
	db.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to Postgres")
	return db, nil
}

// Migrate applies every embedded migration in file name order. Migrations
// are written to be idempotent.
func Migrate(ctx context.Context, db *sqlx.DB, log *logrus.Logger) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		script, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("migration %s: %w", entry.Name(), err)
		}
		log.WithFields(logrus.Fields{"migration": entry.Name()}).Debug("Applied migration")
	}
	return nil
}
