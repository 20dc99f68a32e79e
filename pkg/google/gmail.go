package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	gmail "google.golang.org/api/gmail/v1"
	"gopkg.in/gomail.v2"
)

type Email struct {
	To          string
	Subject     string
	Body        string
	Attachments []string
}

// SendReport lists which attachments made it into the message. Missing files
// do not stop the send.
type SendReport struct {
	Attached int
	Missing  []string
}

func (r SendReport) MissingError() error {
	if len(r.Missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrAttachmentNotFound, r.Missing)
}

// BuildMIME renders an RFC 822 message with the attachments that exist on
// disk.
func BuildMIME(email Email) ([]byte, SendReport, error) {
	m := gomail.NewMessage()
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)

	var report SendReport
	for _, path := range email.Attachments {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			report.Missing = append(report.Missing, filepath.Base(path))
			continue
		}
		m.Attach(path)
		report.Attached++
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, report, err
	}
	return buf.Bytes(), report, nil
}

func (g *googleProvider) SendEmail(ctx context.Context, userID string, email Email) (SendReport, error) {
	raw, report, err := BuildMIME(email)
	if err != nil {
		return report, err
	}

	opt, err := g.clientOption(ctx, userID)
	if err != nil {
		return report, err
	}

	svc, err := gmail.NewService(ctx, opt)
	if err != nil {
		return report, err
	}

	_, err = svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	return report, err
}
