package briefing

import "github.com/Dhruvin6677/ai-buddy/pkg/response"

var (
	ErrInvalidRequest = response.NewError(400, "invalid briefing request")
)
