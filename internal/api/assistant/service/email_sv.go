package assistantService

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/google"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const scheduledSendLayout = "Mon, 02 Jan 2006 at 03:04 PM"

// executeCommit hands an approved draft to Gmail, now or at the scheduled
// time, and returns the text shown to the user.
func (s *assistantService) executeCommit(ctx context.Context, session entity.DraftSession, action entity.CommitAction) string {
	recipient := strings.TrimSpace(action.Recipient(session.RecipientHint))
	if recipient == "" {
		return "❌ Failed to send email: I don't have the recipient's email address. Please start again and include it."
	}
	if s.google == nil {
		return "❌ Failed to send email: Gmail is not connected."
	}

	email := google.Email{
		To:          recipient,
		Subject:     action.Subject,
		Body:        action.Body,
		Attachments: session.Attachments,
	}

	now := s.currentTime()
	at, err := action.SendAt(s.cfg.Location)
	if action.IsImmediate() || err != nil || !at.After(now) {
		return s.sendEmail(ctx, session.UserID, email)
	}

	userID := session.UserID
	s.scheduler.Schedule("email:"+session.ID, at, func() {
		bg := contextPkg.WithRequestID(context.Background(), "scheduled-email:"+session.ID)
		result := s.sendEmail(bg, userID, email)
		s.notify(bg, userID, result)
	})

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"user_id":    userID,
		"session_id": session.ID,
		"send_at":    at,
	}).Info("[assistantService.executeCommit] email scheduled")

	return fmt.Sprintf("⏰ Email to %s is scheduled for %s.", recipient, at.Format(scheduledSendLayout))
}

func (s *assistantService) sendEmail(ctx context.Context, userID string, email google.Email) string {
	report, err := s.google.SendEmail(ctx, userID, email)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("[assistantService.sendEmail] gmail send failed")

		reason := "the mail service rejected the request. Please try again later."
		if errors.Is(err, google.ErrNotConnected) {
			reason = "your Google account is not connected."
		}
		return "❌ Failed to send email: " + reason
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Email successfully sent to %s!", email.To)
	if report.Attached > 0 {
		fmt.Fprintf(&b, "\n📎 Attachments: %d", report.Attached)
	}
	if len(report.Missing) > 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      report.MissingError().Error(),
		}).Warn("[assistantService.sendEmail] some attachments were not found")
		fmt.Fprintf(&b, "\n⚠️ Not found: %s", strings.Join(report.Missing, ", "))
	}
	return b.String()
}

func (s *assistantService) notify(ctx context.Context, userID, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(ctx, userID, text); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("[assistantService.notify] failed to deliver message")
	}
}
