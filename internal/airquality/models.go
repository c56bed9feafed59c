package airquality

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/air-quality-collector/internal/registry"
)

var (
	// ErrMalformedPayload is returned when a 200 response is missing a
	// required field or substructure.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// FetchResult bundles the decoded bodies of one paired fetch. It is only
// produced when both upstream calls succeeded.
type FetchResult struct {
	Pollution PollutionPayload
	Weather   WeatherPayload
}

// PollutionPayload mirrors the air_pollution endpoint response. Readings come
// back as a list; only the first entry is meaningful for a point-in-time poll.
type PollutionPayload struct {
	List []PollutionEntry `json:"list"`
}

// PollutionEntry holds one reading's index and component concentrations.
type PollutionEntry struct {
	Main       PollutionIndex `json:"main"`
	Components Components     `json:"components"`
}

// PollutionIndex carries the air quality index. Pointer so a missing index
// can be told apart from a zero value.
type PollutionIndex struct {
	AQI *int `json:"aqi"`
}

// Components holds pollutant concentrations in µg/m³. All optional upstream.
type Components struct {
	PM25 *float64 `json:"pm2_5"`
	PM10 *float64 `json:"pm10"`
	O3   *float64 `json:"o3"`
	NO2  *float64 `json:"no2"`
}

// WeatherPayload mirrors the subset of the current-weather response we keep.
type WeatherPayload struct {
	Main WeatherMain  `json:"main"`
	Wind *WeatherWind `json:"wind"`
}

// WeatherMain holds the required meteorological readings.
type WeatherMain struct {
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
	Pressure *float64 `json:"pressure"`
}

// WeatherWind is optional in the upstream response.
type WeatherWind struct {
	Speed *float64 `json:"speed"`
}

// Record is the normalized, storable snapshot of air quality and weather for
// one location at one point in time. Pointer fields are absent when the
// upstream payload omitted them.
type Record struct {
	LocationID   string    `json:"locationId"`
	LocationName string    `json:"locationName"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"` // always UTC

	PM25 *float64 `json:"pm2_5,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	NO2  *float64 `json:"no2,omitempty"`
	AQI  int      `json:"aqi"`

	TemperatureC float64  `json:"temperatureC"`
	HumidityPct  float64  `json:"humidityPercent"`
	PressureHpa  float64  `json:"pressureHpa"`
	WindSpeedMS  *float64 `json:"windSpeed,omitempty"`
}

// Tally aggregates success/failure counters for one collection run.
type Tally struct {
	Succeeded int
	Failed    int
}

// Client abstracts the upstream air-quality/weather API.
type Client interface {
	FetchAirQuality(ctx context.Context, lat, lon float64) (FetchResult, error)
}

// Sink persists normalized records. Implementations own any transactional or
// concurrency guarantees.
type Sink interface {
	Insert(ctx context.Context, rec Record) error
}

// Store is a Sink that can also serve collected records back.
type Store interface {
	Sink
	Latest(ctx context.Context, locationID string) (Record, error)
	Range(ctx context.Context, locationID string, from, to time.Time) ([]Record, error)
}

// Locations is the read side of the registry the collector iterates.
type Locations interface {
	List() []registry.Location
	Get(id string) (registry.Location, bool)
}
