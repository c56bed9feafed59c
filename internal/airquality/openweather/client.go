package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-collector/internal/airquality"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client fetches air-pollution and current-weather data from OpenWeatherMap.
// It implements the airquality.Client interface.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client

	pollutionCB *gobreaker.CircuitBreaker
	weatherCB   *gobreaker.CircuitBreaker

	log *zap.Logger
}

// NewClient creates a Client using the shared HTTP client; the client's
// timeout bounds each outbound call.
func NewClient(client *http.Client, apiKey string, log *zap.Logger) *Client {
	newCB := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		client:      client,
		pollutionCB: newCB("openweather-pollution"),
		weatherCB:   newCB("openweather-weather"),
		log:         log,
	}
}

// FetchAirQuality issues the paired pollution and weather requests for the
// given coordinates. Both must return 200 and decode; otherwise an error is
// returned and no partial data is exposed.
func (c *Client) FetchAirQuality(ctx context.Context, lat, lon float64) (airquality.FetchResult, error) {
	if c.apiKey == "" {
		return airquality.FetchResult{}, fmt.Errorf("openweather api key is not configured")
	}

	var result airquality.FetchResult

	if err := c.fetchJSON(ctx, c.pollutionCB, c.pollutionURL(lat, lon), &result.Pollution); err != nil {
		c.log.Warn("pollution request failed", zap.Error(err))
		return airquality.FetchResult{}, fmt.Errorf("air_pollution request: %w", err)
	}
	c.log.Debug("pollution request ok", zap.Float64("lat", lat), zap.Float64("lon", lon))

	if err := c.fetchJSON(ctx, c.weatherCB, c.weatherURL(lat, lon), &result.Weather); err != nil {
		c.log.Warn("weather request failed", zap.Error(err))
		return airquality.FetchResult{}, fmt.Errorf("weather request: %w", err)
	}
	c.log.Debug("weather request ok", zap.Float64("lat", lat), zap.Float64("lon", lon))

	return result, nil
}

func (c *Client) fetchJSON(ctx context.Context, cb *gobreaker.CircuitBreaker, u string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := doRequest(ctx, c.client, cb, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) pollutionURL(lat, lon float64) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)
	return fmt.Sprintf("%s/air_pollution?%s", c.baseURL, values.Encode())
}

func (c *Client) weatherURL(lat, lon float64) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	return fmt.Sprintf("%s/weather?%s", c.baseURL, values.Encode())
}
