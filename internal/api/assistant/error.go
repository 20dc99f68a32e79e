package assistant

import "github.com/Dhruvin6677/ai-buddy/pkg/response"

var (
	ErrInvalidUserID        = response.NewError(400, "invalid user id")
	ErrEmptyMessage         = response.NewError(400, "message text is empty")
	ErrSessionNotFound      = response.NewError(404, "no active draft session")
	ErrSessionStore         = response.NewError(500, "draft session store failure")
	ErrRemindersUnavailable = response.NewError(503, "reminder storage is not configured")
	ErrGoogleUnavailable    = response.NewError(503, "google integration is not configured")
	ErrGoogleExchange       = response.NewError(400, "failed to connect google account")
)

var ErrInvalidRequest = response.NewError(400, "invalid request body")
