// Package export renders stored weather records as downloadable documents:
// a structured JSON form that can be read back, and a tabular CSV form.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"weather-records/internal/daterange"
	"weather-records/internal/weather"
)

// Format selects the output document type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q: use json or csv", s)
}

// Document is a rendered export ready to hand to a download sink.
type Document struct {
	Bytes    []byte
	Filename string
	MIMEType string
}

const csvHeader = "Date,Temperature (°C),Description,Humidity (%),Wind Speed (m/s)"

// Encode renders the record in the requested format. Numeric observation
// values are rounded to one decimal place in both forms, so an export is
// accurate to 0.1 unit but not bit-identical to the stored record.
func Encode(rec weather.Record, format Format) (Document, error) {
	var (
		data []byte
		mime string
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = encodeJSON(rec)
		mime = "application/json"
	case FormatCSV:
		data = encodeCSV(rec)
		mime = "text/csv"
	default:
		return Document{}, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return Document{}, err
	}

	return Document{
		Bytes:    data,
		Filename: fmt.Sprintf("weather-record-%s.%s", rec.CreatedAt.Format(daterange.Layout), format),
		MIMEType: mime,
	}, nil
}

// jsonDocument is the structured export shape. Dates are YYYY-MM-DD strings
// and absent metrics are null.
type jsonDocument struct {
	Location     jsonLocation      `json:"location"`
	DateRange    jsonDateRange     `json:"dateRange"`
	CreatedAt    string            `json:"createdAt"`
	Observations []jsonObservation `json:"observations"`
}

type jsonLocation struct {
	DisplayName string  `json:"displayName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type jsonDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type jsonObservation struct {
	Date             string   `json:"date"`
	MeanTemperatureC float64  `json:"meanTemperatureC"`
	Description      string   `json:"description"`
	HumidityPercent  *float64 `json:"humidityPercent"`
	WindSpeedMs      *float64 `json:"windSpeedMs"`
}

func encodeJSON(rec weather.Record) ([]byte, error) {
	doc := jsonDocument{
		Location: jsonLocation{
			DisplayName: rec.Location.DisplayName,
			Latitude:    rec.Location.Coordinates.Latitude,
			Longitude:   rec.Location.Coordinates.Longitude,
		},
		DateRange: jsonDateRange{
			Start: rec.DateRange.Start.String(),
			End:   rec.DateRange.End.String(),
		},
		CreatedAt:    rec.CreatedAt.Format(daterange.Layout),
		Observations: make([]jsonObservation, 0, len(rec.Observations)),
	}

	for _, o := range rec.Observations {
		doc.Observations = append(doc.Observations, jsonObservation{
			Date:             o.Date.String(),
			MeanTemperatureC: round1(o.Temperature),
			Description:      o.Description,
			HumidityPercent:  round1Ptr(o.Humidity),
			WindSpeedMs:      round1Ptr(o.WindSpeed),
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Decode reads a JSON export back into a record. Only the exported fields
// are reconstructed; the record comes back without an id.
func Decode(data []byte) (weather.Record, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return weather.Record{}, fmt.Errorf("parsing export document: %w", err)
	}

	start, err := daterange.Parse(doc.DateRange.Start)
	if err != nil {
		return weather.Record{}, err
	}
	end, err := daterange.Parse(doc.DateRange.End)
	if err != nil {
		return weather.Record{}, err
	}
	createdAt, err := daterange.Parse(doc.CreatedAt)
	if err != nil {
		return weather.Record{}, err
	}

	rec := weather.Record{
		Location: weather.Location{
			DisplayName: doc.Location.DisplayName,
			Coordinates: weather.Coordinates{
				Latitude:  doc.Location.Latitude,
				Longitude: doc.Location.Longitude,
			},
		},
		DateRange:    daterange.Range{Start: start, End: end},
		CreatedAt:    createdAt.Time(),
		Observations: make([]weather.DailyObservation, 0, len(doc.Observations)),
	}

	for _, o := range doc.Observations {
		date, err := daterange.Parse(o.Date)
		if err != nil {
			return weather.Record{}, err
		}
		rec.Observations = append(rec.Observations, weather.DailyObservation{
			Date:        date,
			Temperature: o.MeanTemperatureC,
			Description: o.Description,
			Humidity:    o.HumidityPercent,
			WindSpeed:   o.WindSpeedMs,
		})
	}

	return rec, nil
}

func encodeCSV(rec weather.Record) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Location: %s\n", escapeField(rec.Location.DisplayName))
	fmt.Fprintf(&buf, "# Latitude: %s\n", formatCoord(rec.Location.Coordinates.Latitude))
	fmt.Fprintf(&buf, "# Longitude: %s\n", formatCoord(rec.Location.Coordinates.Longitude))
	fmt.Fprintf(&buf, "# Date Range: %s to %s\n", rec.DateRange.Start, rec.DateRange.End)
	buf.WriteByte('\n')
	buf.WriteString(csvHeader)
	buf.WriteByte('\n')

	for _, o := range rec.Observations {
		fields := []string{
			o.Date.String(),
			formatMetric(&o.Temperature),
			o.Description,
			formatMetric(o.Humidity),
			formatMetric(o.WindSpeed),
		}
		for i, field := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(escapeField(field))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// escapeField quotes a field that contains a comma, a double quote, or a
// newline, doubling every internal quote. Clean fields pass through as-is.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatMetric renders a metric with one decimal place, or an empty field
// for an absent value.
func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(round1(*v), 'f', 1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round1Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := round1(*v)
	return &rounded
}
