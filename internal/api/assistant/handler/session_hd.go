package assistantHandler

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/assistant"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/handlerUtil"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) GetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userID := ctx.Params("user_id")

	session, err := h.assistantService.GetSession(c, userID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, assistant.NewSessionResponse(session))
	}
}

func (h *AssistantHandler) AbandonSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userID := ctx.Params("user_id")

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Abandoning draft session")

	if err := h.assistantService.AbandonDraft(c, userID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "abandon_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Draft session abandoned",
		})
	}
}

func (h *AssistantHandler) ListReminders(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	reminders, err := h.assistantService.ListReminders(c, ctx.Params("user_id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_reminders")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, assistant.NewReminderListResponse(reminders))
	}
}
