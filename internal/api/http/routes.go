package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/metrics"
	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/tracker"
	"github.com/i474232898/ski-day-tracker/internal/weather"
)

var validate = validator.New()

// Deps are the services behind the HTTP API. Metrics and Gatherer may be
// nil.
type Deps struct {
	Tracker  *tracker.Tracker
	Weather  *weather.Service
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Metrics != nil {
		app.Use(metricsMiddleware(d.Metrics))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "ski-day-tracker",
		})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")
	registerDayRoutes(v1, d.Tracker)
	registerStatsRoutes(v1, d.Tracker)
	registerStateRoutes(v1, d.Tracker)
	if d.Weather != nil {
		registerWeatherRoutes(v1, d.Weather)
	}
}

func registerDayRoutes(v1 fiber.Router, t *tracker.Tracker) {
	v1.Get("/users/:user/days", func(c *fiber.Ctx) error {
		days, err := t.Days(c.UserContext(), c.Params("user"))
		if err != nil {
			return err
		}
		return c.JSON(days)
	})

	v1.Post("/users/:user/days", func(c *fiber.Ctx) error {
		var in skiday.DayInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		res, err := t.AddDay(c.UserContext(), c.Params("user"), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	v1.Put("/users/:user/days/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var in skiday.DayInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		res, err := t.UpdateDay(c.UserContext(), c.Params("user"), id, in)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Delete("/users/:user/days/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := t.DeleteDay(c.UserContext(), c.Params("user"), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/users/:user/summary", func(c *fiber.Ctx) error {
		summary, err := t.Summary(c.UserContext(), c.Params("user"))
		if err != nil {
			return err
		}
		return c.JSON(summary)
	})

	v1.Get("/users/:user/goals", func(c *fiber.Ctx) error {
		progress, err := t.Goals(c.UserContext(), c.Params("user"))
		if err != nil {
			return err
		}
		return c.JSON(progress)
	})

	v1.Post("/users/:user/goals", func(c *fiber.Ctx) error {
		var req goalRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		g, err := t.AddGoal(c.UserContext(), c.Params("user"), goals.Type(req.Type), req.Target)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	v1.Delete("/users/:user/goals/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := t.DeleteGoal(c.UserContext(), c.Params("user"), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/users/:user/badges", func(c *fiber.Ctx) error {
		statuses, err := t.Badges(c.UserContext(), c.Params("user"))
		if err != nil {
			return err
		}
		return c.JSON(statuses)
	})
}

func registerStatsRoutes(v1 fiber.Router, t *tracker.Tracker) {
	v1.Get("/stats/leaderboard", func(c *fiber.Ctx) error {
		board, err := t.Leaderboard(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(board)
	})

	v1.Get("/stats/mountains", func(c *fiber.Ctx) error {
		mountains, err := t.Mountains(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(mountains)
	})

	v1.Get("/stats/extremes", func(c *fiber.Ctx) error {
		extremes, err := t.Extremes(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(extremes)
	})

	v1.Get("/stats/compare", func(c *fiber.Ctx) error {
		q := compareQuery{A: c.Query("a"), B: c.Query("b")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cmp, err := t.Compare(c.UserContext(), q.A, q.B)
		if err != nil {
			return err
		}
		return c.JSON(cmp)
	})

	v1.Get("/pass/roi", func(c *fiber.Ctx) error {
		price := 0.0
		if raw := c.Query("price"); raw != "" {
			p, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "price must be a number")
			}
			price = p
		}
		report, err := t.PassROI(c.UserContext(), price)
		if err != nil {
			return err
		}
		return c.JSON(report)
	})
}

func registerWeatherRoutes(v1 fiber.Router, w *weather.Service) {
	v1.Get("/weather/resorts", func(c *fiber.Ctx) error {
		return c.JSON(w.Catalog())
	})

	v1.Get("/weather/settings", func(c *fiber.Ctx) error {
		settings, err := w.Settings(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(settings)
	})

	v1.Put("/weather/settings", func(c *fiber.Ctx) error {
		var settings weather.Settings
		if err := c.BodyParser(&settings); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := w.SaveSettings(c.UserContext(), settings); err != nil {
			return err
		}
		return c.JSON(settings)
	})

	v1.Get("/weather/alerts", func(c *fiber.Ctx) error {
		if c.QueryBool("cached") {
			report, err := w.LastReport(c.UserContext())
			if errors.Is(err, weather.ErrNoReport) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			if err != nil {
				return err
			}
			return c.JSON(report)
		}
		report, err := w.CheckAlerts(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(report)
	})
}

type goalRequest struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
}

type compareQuery struct {
	A string `validate:"required"`
	B string `validate:"required"`
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	return id, nil
}
