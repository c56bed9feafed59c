package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-collector/internal/airquality"
	"github.com/i474232898/air-quality-collector/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, locations airquality.Locations, measurements airquality.Store, collector *airquality.Collector) {
	v1 := app.Group("/api/v1")

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(locations.List())
	})

	v1.Get("/measurements/latest", func(c *fiber.Ctx) error {
		req, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := measurements.Latest(c.Context(), req.Location)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurements for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurements")
		}

		return c.JSON(rec)
	})

	v1.Get("/measurements/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recs, err := measurements.Range(c.Context(), req.Location.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurements for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurement history")
		}

		return c.JSON(fiber.Map{
			"location":     req.Location.Location,
			"from":         req.From,
			"to":           req.To,
			"measurements": recs,
		})
	})

	v1.Post("/collect/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, ok := locations.Get(id); !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown location id")
		}

		if !collector.CollectOne(c.Context(), id) {
			return fiber.NewError(fiber.StatusBadGateway, "collection failed for location")
		}

		return c.JSON(fiber.Map{
			"location": id,
			"stored":   true,
		})
	})
}

// locationQuery holds the query parameter identifying a location.
type locationQuery struct {
	Location string `validate:"required"`
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{Location: c.Query("location")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
