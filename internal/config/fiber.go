package config

import (
	"errors"
	"time"

	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const maxBodySize = 4 * 1024 * 1024

func NewFiber(cfg AppConfig, logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           cfg.BotName,
			BodyLimit:         maxBodySize,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      90 * time.Second,
			IdleTimeout:       2 * time.Minute,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: cfg.Env == "development",
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler:      errorHandler(logger),
		})

	return app
}

// errorHandler answers errors that escape the route handlers, such as
// unknown routes or oversized bodies, in the same JSON shape as handlerUtil.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		body := fiber.Map{"error": message}
		if code >= fiber.StatusInternalServerError {
			body["trace_id"] = log.ErrorWithTraceID(logger, log.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}, "Unhandled error")
		}

		return c.Status(code).JSON(body)
	}
}
