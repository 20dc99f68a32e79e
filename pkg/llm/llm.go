// Package llm holds the provider-neutral chat contract shared by the openai and
// gemini adapters and the services that consume them.
package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Tier selects which configured model serves a request.
type Tier uint8

const (
	TierSmart Tier = iota
	TierFast
)

var (
	ErrMissingAPIKey      = errors.New("llm api key is not configured")
	ErrEmptyResponse      = errors.New("llm returned no choices")
	ErrUpstreamTimeout    = errors.New("llm request timed out")
	ErrMalformedResponse  = errors.New("llm response is not valid structured data")
	ErrUnsupportedMessage = errors.New("llm conversation must end with a user message")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages    []Message
	Tier        Tier
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}

type IChat interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// NormalizeError maps deadline and network timeouts onto ErrUpstreamTimeout so
// callers can branch on a single sentinel.
func NormalizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrUpstreamTimeout, err)
	}
	return err
}

// UserText builds a single-turn user request.
func UserText(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// StripCodeFence removes a surrounding markdown fence from a model reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
