package briefingHandler

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/briefing"
	"github.com/Dhruvin6677/ai-buddy/internal/entity"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/handlerUtil"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *BriefingHandler) GenerateBriefing(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing briefing request")

	var req briefing.BriefingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, briefing.ErrInvalidRequest, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	bundle := h.briefingService.GenerateBriefing(c, entity.BriefingInput{
		UserName:      req.UserName,
		FestivalName:  req.FestivalName,
		Quote:         req.Quote,
		Author:        req.Author,
		HistoryEvents: req.HistoryEvents,
		City:          req.City,
		Weather:       req.Weather,
	})

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, bundle)
	}
}
