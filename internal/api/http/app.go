package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/metrics"
	"github.com/i474232898/ski-day-tracker/internal/roi"
	"github.com/i474232898/ski-day-tracker/internal/store"
	"github.com/i474232898/ski-day-tracker/internal/tracker"
	"github.com/i474232898/ski-day-tracker/internal/weather"
)

// NewApp builds the Fiber app with the centralized error handler.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          ErrorHandler,
	})
	app.Use(recover.New())
	return app
}

// ErrorHandler renders every error as {"error": true, "message": ...} with a
// status derived from the error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidDay),
		errors.Is(err, tracker.ErrMissingUser),
		errors.Is(err, goals.ErrInvalidGoal),
		errors.Is(err, roi.ErrInvalidPricing),
		errors.Is(err, weather.ErrInvalidSettings):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrNoAPIKey), errors.Is(err, weather.ErrAlertsDisabled):
		return fiber.StatusConflict
	case errors.Is(err, weather.ErrBudgetExhausted):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// metricsMiddleware records every request by its route pattern.
func metricsMiddleware(m *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		m.RecordAPIRequest(c.Route().Path, c.Method(), strconv.Itoa(status), time.Since(start))
		return err
	}
}
