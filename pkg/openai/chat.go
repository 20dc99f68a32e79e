package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dhruvin6677/ai-buddy/pkg/llm"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultSmartModel = "llama-3.3-70b-versatile"
	DefaultFastModel  = "llama-3.1-8b-instant"
)

type Config struct {
	APIKey     string
	BaseURL    string
	SmartModel string
	FastModel  string
}

type chatService struct {
	client     *openai.Client
	smartModel string
	fastModel  string
}

// NewChat returns an OpenAI-compatible chat client. Groq is the default
// endpoint; any compatible base URL works.
func NewChat(cfg Config) (llm.IChat, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, llm.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}

	smart := cfg.SmartModel
	if smart == "" {
		smart = DefaultSmartModel
	}
	fast := cfg.FastModel
	if fast == "" {
		fast = DefaultFastModel
	}

	return &chatService{
		client:     openai.NewClientWithConfig(clientCfg),
		smartModel: smart,
		fastModel:  fast,
	}, nil
}

func (c *chatService) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	model := c.smartModel
	if req.Tier == llm.TierFast {
		model = c.fastModel
	}

	completion := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		completion.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		return "", llm.NormalizeError(ctx, fmt.Errorf("chat completion error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(role string) string {
	switch role {
	case llm.RoleSystem:
		return openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
