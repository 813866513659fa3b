package httpapi

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/jma-weather/internal/weather"
)

// NewApp builds the Fiber app with the shared middleware and routes.
// Access logs are written to accessLog.
func NewApp(service *weather.Service, accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "jma-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// A long range walks one upstream page per month.
		WriteTimeout: 5 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: accessLog,
	}))

	RegisterRoutes(app, service)
	return app
}
