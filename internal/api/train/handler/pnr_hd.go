package trainHandler

import (
	"time"

	"github.com/Dhruvin6677/ai-buddy/internal/api/train"
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	contextPkg "github.com/Dhruvin6677/ai-buddy/pkg/context"
	"github.com/Dhruvin6677/ai-buddy/pkg/handlerUtil"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *TrainHandler) GetPNRStatus(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	pnr := trainService.NormalizePNR(ctx.Params("pnr"))

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"pnr":        pnr,
	}).Debug("Processing pnr status request")

	if !trainService.ValidPNR(pnr) {
		return errHandler.Handle(ctx, requestID, train.ErrInvalidPNR, ctx.Path(), "validate_pnr")
	}

	result := h.trainService.LookupPNR(c, pnr)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, train.PNRStatusResponse{
			Success:     result.Success,
			Data:        result.Data,
			SourceLayer: string(result.SourceLayer),
			Message:     trainService.FormatStatus(result),
		})
	}
}
