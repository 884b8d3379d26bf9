package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weather-records/internal/daterange"
	"weather-records/internal/export"
	"weather-records/internal/geocoding"
	"weather-records/internal/store"
	"weather-records/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *weather.Service, records *store.Facade, geo *geocoding.Client) {
	v1 := app.Group("/api/v1")

	// draft mirrors the editing form: it always holds the series for the
	// most recently requested location/date-range pair.
	draft := weather.NewDraft()

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		var q dailyQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		r, err := svc.ValidateRange(q.Start, q.End)
		if err != nil {
			return rangeError(err)
		}

		loc := q.toLocation()
		gen := draft.Begin(loc, r)

		obs, err := svc.FetchRange(c.UserContext(), loc.Coordinates, r)
		if err != nil {
			// The draft keeps its previous series on failure.
			return upstreamError(err)
		}

		if !draft.Apply(gen, obs) {
			return fiber.NewError(fiber.StatusConflict, "request superseded by a newer one")
		}

		return c.JSON(fiber.Map{
			"location":     loc,
			"dateRange":    r,
			"observations": obs,
		})
	})

	v1.Get("/records", func(c *fiber.Ctx) error {
		list, err := records.List(c.UserContext())
		if err != nil {
			return storeError(err)
		}
		if list == nil {
			list = []weather.Record{}
		}
		return c.JSON(list)
	})

	v1.Post("/records", func(c *fiber.Ctx) error {
		rec, err := bindRecord(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		created, err := records.Create(c.UserContext(), rec)
		if err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	v1.Put("/records/:id", func(c *fiber.Ctx) error {
		rec, err := bindRecord(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		updated, err := records.Update(c.UserContext(), c.Params("id"), rec)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(updated)
	})

	v1.Delete("/records/:id", func(c *fiber.Ctx) error {
		if err := records.Delete(c.UserContext(), c.Params("id")); err != nil {
			return storeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/records/:id/export", func(c *fiber.Ctx) error {
		format, err := export.ParseFormat(c.Query("format", "json"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := records.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return storeError(err)
		}

		doc, err := export.Encode(rec, format)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode record")
		}

		c.Set(fiber.HeaderContentType, doc.MIMEType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
		return c.Send(doc.Bytes)
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		locations, err := geo.Search(c.UserContext(), query)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to resolve location")
		}
		return c.JSON(locations)
	})

	v1.Get("/geocode/reverse", func(c *fiber.Ctx) error {
		coords, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		name, err := geo.Reverse(c.UserContext(), coords)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to resolve location")
		}
		return c.JSON(fiber.Map{"displayName": name})
	})
}

// dailyQuery holds the query parameters of the aggregation endpoint.
type dailyQuery struct {
	Name      string
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Start     daterange.Date
	End       daterange.Date
}

func (q *dailyQuery) bind(c *fiber.Ctx) error {
	coords, err := parseCoordinates(c)
	if err != nil {
		return err
	}
	q.Latitude = coords.Latitude
	q.Longitude = coords.Longitude
	q.Name = c.Query("name")

	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" || endStr == "" {
		return errors.New("start_date and end_date query parameters are required")
	}

	if q.Start, err = daterange.Parse(startStr); err != nil {
		return err
	}
	if q.End, err = daterange.Parse(endStr); err != nil {
		return err
	}

	return validate.Struct(q)
}

func (q dailyQuery) toLocation() weather.Location {
	return weather.Location{
		DisplayName: q.Name,
		Coordinates: weather.Coordinates{Latitude: q.Latitude, Longitude: q.Longitude},
	}
}

func parseCoordinates(c *fiber.Ctx) (weather.Coordinates, error) {
	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return weather.Coordinates{}, errors.New("latitude and longitude query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("invalid longitude %q", lonStr)
	}

	coords := weather.Coordinates{Latitude: lat, Longitude: lon}
	if err := coords.Validate(); err != nil {
		return weather.Coordinates{}, err
	}
	return coords, nil
}

func bindRecord(c *fiber.Ctx) (weather.Record, error) {
	var rec weather.Record
	if err := c.BodyParser(&rec); err != nil {
		return weather.Record{}, errors.New("invalid record body")
	}
	if err := rec.Location.Coordinates.Validate(); err != nil {
		return weather.Record{}, err
	}
	return rec, nil
}

func rangeError(err error) error {
	switch {
	case errors.Is(err, daterange.ErrFutureDate),
		errors.Is(err, daterange.ErrRangeTooLong),
		errors.Is(err, daterange.ErrInvertedRange):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

func upstreamError(err error) error {
	var upstream *weather.UpstreamError
	if errors.As(err, &upstream) {
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}

func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrIncompleteRecord):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "record not found")
	case errors.Is(err, store.ErrPersistence):
		return fiber.NewError(fiber.StatusBadGateway, "records service unavailable")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
