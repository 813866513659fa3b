package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/jma-weather/internal/export"
	"github.com/i474232898/jma-weather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "jma-weather",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		var req dailyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rangeReq := req.toRangeRequest()
		records, err := service.GetRange(c.UserContext(), rangeReq)
		if err != nil {
			if errors.Is(err, weather.ErrInvalidRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch observations: "+err.Error())
		}

		if req.Format == "csv" {
			var buf bytes.Buffer
			if err := export.WriteCSV(&buf, records); err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
			return c.Send(buf.Bytes())
		}

		if records == nil {
			records = weather.ResultTable{}
		}
		return c.JSON(fiber.Map{
			"station": rangeReq.Station,
			"from":    req.From.Format(time.DateOnly),
			"to":      req.To.Format(time.DateOnly),
			"records": records,
		})
	})
}

// dailyQuery holds query parameters for the daily endpoint.
type dailyQuery struct {
	Code   string
	ID     int
	From   time.Time
	To     time.Time
	Format string `validate:"omitempty,oneof=csv json"`
}

func (q dailyQuery) toRangeRequest() weather.RangeRequest {
	return weather.RangeRequest{
		Station: weather.Station{Code: q.Code, ID: q.ID},
		From:    q.From,
		To:      q.To,
	}
}

func (q *dailyQuery) bind(c *fiber.Ctx) error {
	q.Code = c.Query("code")
	q.Format = c.Query("format")

	idStr := c.Query("id")
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if q.Code == "" || idStr == "" || fromStr == "" || toStr == "" {
		return errors.New("code, id, from and to query parameters are required")
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return errors.New("id must be an integer")
	}
	q.ID = id

	if q.From, err = weather.ParseDate(fromStr); err != nil {
		return err
	}
	if q.To, err = weather.ParseDate(toStr); err != nil {
		return err
	}
	return nil
}
