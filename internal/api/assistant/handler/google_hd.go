package assistantHandler

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) GoogleConnect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	url, err := h.assistantService.GoogleAuthURL(ctx.Params("user_id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "google_connect")
	}

	if ctx.Query("redirect") == "true" {
		return ctx.Redirect(url, fiber.StatusTemporaryRedirect)
	}
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, assistant.GoogleConnectResponse{AuthURL: url})
}

// GoogleCallback finishes the OAuth flow. The state parameter carries the
// user id set by GoogleConnect.
func (h *AssistantHandler) GoogleCallback(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var query assistant.GoogleCallbackQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.Handle(ctx, requestID, assistant.ErrInvalidRequest, ctx.Path(), "parse_query")
	}

	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.assistantService.ConnectGoogle(c, query.State, query.Code); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "google_callback")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Google account connected. You can return to WhatsApp.",
		})
	}
}
