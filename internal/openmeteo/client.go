package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/search"
	"go.uber.org/zap"
)

const (
	ProviderName       = "openmeteo"
	DefaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultTimeout     = 10 * time.Second

	MsgLocationNotFound   = "Location not found. Please check the city name and try again."
	MsgWeatherUnavailable = "Weather data temporarily unavailable. Please try again in a moment."
	MsgServiceUnavailable = "Weather service temporarily unavailable. Please try again later."

	notAvailable = "N/A"
)

// Location is the top geocoding match for a place name
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geocodeResponse struct {
	Results []Location `json:"results"`
}

// Current holds the current-conditions block. Nil fields were absent in the response.
type Current struct {
	Temperature *float64 `json:"temperature_2m"`
	Rain        *float64 `json:"rain"`
	WeatherCode *int     `json:"weathercode"`
	WindSpeed   *float64 `json:"windspeed_10m"`
}

type forecastResponse struct {
	Current *Current `json:"current"`
}

// Client resolves a place name to coordinates and reports its current weather
type Client struct {
	geocodeURL  string
	forecastURL string
	timeout     time.Duration
	fetcher     fetch.Doer
	logger      *zap.Logger
}

// Config configures a weather client. Zero values use the public Open-Meteo endpoints.
type Config struct {
	GeocodeURL  string
	ForecastURL string
	Timeout     time.Duration
}

// NewClient creates a new weather client
func NewClient(cfg Config, fetcher fetch.Doer, logger *zap.Logger) *Client {
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultGeocodeURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
		timeout:     cfg.Timeout,
		fetcher:     fetcher,
		logger:      logger.Named(ProviderName),
	}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// Fetch treats query as a location name and returns one current-weather line.
// The whole lookup, geocoding included, is bounded by the client timeout.
func (c *Client) Fetch(ctx context.Context, query string) search.Result {
	location := strings.TrimSpace(query)
	c.logger.Info("fetching weather", zap.String("location", location))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	loc, err := c.geocode(ctx, location)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("weather lookup timed out", zap.Error(err))
			return search.Failed(ProviderName, MsgServiceUnavailable, err)
		}
		c.logger.Warn("geocoding failed", zap.String("location", location), zap.Error(err))
		return search.NotFound(ProviderName, MsgLocationNotFound)
	}
	if loc == nil {
		c.logger.Info("no geocoding match", zap.String("location", location))
		return search.NotFound(ProviderName, MsgLocationNotFound)
	}

	current, err := c.current(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		c.logger.Error("forecast request failed", zap.Error(err))
		return search.Failed(ProviderName, MsgWeatherUnavailable, err)
	}
	if current == nil {
		return search.Failed(ProviderName, MsgWeatherUnavailable, errors.New("forecast response has no current block"))
	}

	return search.Found(ProviderName, []string{FormatCurrent(*loc, *current)})
}

// geocode returns the single best match for name, or nil when nothing matched
func (c *Client) geocode(ctx context.Context, name string) (*Location, error) {
	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.geocodeURL,
		Query:  url.Values{"name": {name}, "count": {"1"}},
	})
	if err != nil {
		return nil, err
	}

	var geo geocodeResponse
	if err := json.Unmarshal(resp.Body, &geo); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(geo.Results) == 0 {
		return nil, nil
	}
	return &geo.Results[0], nil
}

func (c *Client) current(ctx context.Context, lat, lon float64) (*Current, error) {
	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.forecastURL,
		Query: url.Values{
			"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
			"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
			"current":   {"temperature_2m,rain,weathercode,windspeed_10m"},
		},
	})
	if err != nil {
		return nil, err
	}

	var forecast forecastResponse
	if err := json.Unmarshal(resp.Body, &forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	return forecast.Current, nil
}

// FormatCurrent renders the summary line; missing values are shown as N/A
func FormatCurrent(loc Location, cur Current) string {
	line := fmt.Sprintf("Current weather in %s, %s: Temperature: %s°C, Rain: %smm, Wind Speed: %s km/h",
		loc.Name, loc.Country,
		optional(cur.Temperature), optional(cur.Rain), optional(cur.WindSpeed),
	)
	if cur.WeatherCode != nil {
		if desc, ok := Describe(*cur.WeatherCode); ok {
			line += ", Conditions: " + desc
		}
	}
	return line
}

func optional(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return formatFloat(*v)
}

// formatFloat keeps at least one decimal place, so 20 renders as "20.0"
func formatFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
