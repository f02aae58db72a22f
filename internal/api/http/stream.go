package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/tracker"
)

const streamKeepAlive = 25 * time.Second

func registerStateRoutes(v1 fiber.Router, t *tracker.Tracker) {
	v1.Get("/state", func(c *fiber.Ctx) error {
		state, err := t.State(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	// PUT replaces the whole document; the last writer wins.
	v1.Put("/state", func(c *fiber.Ctx) error {
		var state skiday.UserState
		if err := json.Unmarshal(c.Body(), &state); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid state document")
		}
		if err := t.ReplaceState(c.UserContext(), state); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/state/stream", func(c *fiber.Ctx) error {
		initial, err := t.State(c.UserContext())
		if err != nil {
			return err
		}

		updates := make(chan skiday.UserState, 8)
		cancel := t.Subscribe(func(s skiday.UserState) {
			select {
			case updates <- s:
			default:
				// Slow client; it catches up on the next change.
			}
		})

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer cancel()
			if err := writeStateEvent(w, initial); err != nil {
				return
			}

			ping := time.NewTicker(streamKeepAlive)
			defer ping.Stop()
			for {
				select {
				case s := <-updates:
					if err := writeStateEvent(w, s); err != nil {
						return
					}
				case <-ping.C:
					fmt.Fprint(w, ": ping\n\n")
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		})
		return nil
	})
}

// writeStateEvent writes one server-sent "state" event and flushes it.
func writeStateEvent(w *bufio.Writer, state skiday.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
