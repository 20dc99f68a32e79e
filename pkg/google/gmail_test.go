package google

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMIME_ReportsMissingAttachments(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "invoice.txt")
	require.NoError(t, os.WriteFile(present, []byte("total: 100"), 0o600))

	raw, report, err := BuildMIME(Email{
		To:          "boss@example.com",
		Subject:     "Invoice",
		Body:        "Please find the invoice attached.",
		Attachments: []string{present, filepath.Join(dir, "missing.pdf")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attached)
	assert.Equal(t, []string{"missing.pdf"}, report.Missing)
	assert.ErrorIs(t, report.MissingError(), ErrAttachmentNotFound)

	msg := string(raw)
	assert.True(t, strings.Contains(msg, "To: boss@example.com"))
	assert.True(t, strings.Contains(msg, "Subject: Invoice"))
	assert.True(t, strings.Contains(msg, `filename="invoice.txt"`))
}

func TestBuildMIME_NoAttachments(t *testing.T) {
	_, report, err := BuildMIME(Email{To: "a@example.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	assert.Zero(t, report.Attached)
	assert.NoError(t, report.MissingError())
}
