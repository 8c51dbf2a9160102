package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, status y duración.
// Los 5xx se registran como error junto con la causa guardada por writeError.
func RequestLogger(log *logger.Logger) fiber.Handler {
	httpLog := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		status := c.Response().StatusCode()
		if chainErr != nil {
			if fe, ok := chainErr.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := httpLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = httpLog.Error()
			if cause, ok := c.Locals(LocalError).(error); ok {
				ev = ev.Err(cause)
			} else if chainErr != nil {
				ev = ev.Err(chainErr)
			}
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return chainErr
	}
}
