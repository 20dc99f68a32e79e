package assistantService

import (
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *assistantService) GoogleAuthURL(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", assistant.ErrInvalidUserID
	}
	if s.google == nil {
		return "", assistant.ErrGoogleUnavailable
	}
	return s.google.AuthURL(userID), nil
}

func (s *assistantService) ConnectGoogle(ctx context.Context, userID, code string) error {
	if strings.TrimSpace(userID) == "" {
		return assistant.ErrInvalidUserID
	}
	if s.google == nil {
		return assistant.ErrGoogleUnavailable
	}

	if err := s.google.Exchange(ctx, userID, code); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("[assistantService.ConnectGoogle] token exchange failed")
		return assistant.ErrGoogleExchange
	}

	s.notify(ctx, userID, "✅ Your Google account is connected. Calendar, Sheets and Gmail are ready.")
	return nil
}
