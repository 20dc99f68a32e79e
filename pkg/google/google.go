package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhruvin6677/ai-buddy/pkg/redis"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

var (
	ErrMissingCredentials = errors.New("google oauth client is not configured")
	ErrNotConnected       = errors.New("google account is not connected")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

const tokenKeyPrefix = "google:token:"

var scopes = []string{
	calendar.CalendarEventsScope,
	sheets.SpreadsheetsScope,
	drive.DriveMetadataReadonlyScope,
	gmail.GmailSendScope,
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type ItfGoogle interface {
	AuthURL(userID string) string
	Exchange(ctx context.Context, userID, code string) error
	Connected(ctx context.Context, userID string) bool
	CreateEvent(ctx context.Context, userID string, ev CalendarEvent) (string, error)
	AppendExpense(ctx context.Context, userID string, row []interface{}) (string, error)
	SendEmail(ctx context.Context, userID string, email Email) (SendReport, error)
}

type googleProvider struct {
	config *oauth2.Config
	tokens redis.IRedis
	log    *logrus.Logger
}

// New builds the Google collaborator. Tokens are stored per user in redis.
func New(cfg Config, tokens redis.IRedis, log *logrus.Logger) (ItfGoogle, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, ErrMissingCredentials
	}
	if tokens == nil {
		return nil, errors.New("google token store is required")
	}

	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		tokens: tokens,
		log:    log,
	}, nil
}

func (g *googleProvider) AuthURL(userID string) string {
	return g.config.AuthCodeURL(userID, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *googleProvider) Exchange(ctx context.Context, userID, code string) error {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("[google.Exchange] failed to exchange code")
		return err
	}

	return g.tokens.SetJSON(ctx, tokenKeyPrefix+userID, token, 0)
}

func (g *googleProvider) Connected(ctx context.Context, userID string) bool {
	_, err := g.token(ctx, userID)
	return err == nil
}

func (g *googleProvider) token(ctx context.Context, userID string) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := g.tokens.GetJSON(ctx, tokenKeyPrefix+userID, &token); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	return &token, nil
}

func (g *googleProvider) clientOption(ctx context.Context, userID string) (option.ClientOption, error) {
	token, err := g.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	src := g.config.TokenSource(context.Background(), token)
	refreshed, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if refreshed.AccessToken != token.AccessToken {
		if err := g.tokens.SetJSON(ctx, tokenKeyPrefix+userID, refreshed, 0); err != nil {
			g.log.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("[google.clientOption] failed to persist refreshed token")
		}
	}

	return option.WithTokenSource(oauth2.ReuseTokenSource(refreshed, src)), nil
}

type CalendarEvent struct {
	Summary  string
	Start    time.Time
	Duration time.Duration
	TimeZone string
}

// CreateEvent inserts an event into the user's primary calendar and returns
// its link.
func (g *googleProvider) CreateEvent(ctx context.Context, userID string, ev CalendarEvent) (string, error) {
	opt, err := g.clientOption(ctx, userID)
	if err != nil {
		return "", err
	}

	svc, err := calendar.NewService(ctx, opt)
	if err != nil {
		return "", err
	}

	if ev.Duration <= 0 {
		ev.Duration = 30 * time.Minute
	}

	created, err := svc.Events.Insert("primary", &calendar.Event{
		Summary: ev.Summary,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.Start.Add(ev.Duration).Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return created.HtmlLink, nil
}
