package airquality

import (
	"fmt"
	"time"

	"github.com/i474232898/air-quality-collector/internal/registry"
)

// Normalize flattens a fetch result into a Record for the given location.
// Pollutant components and wind speed are optional; the air quality index and
// the main weather readings are required. The timestamp is captured here, in
// UTC, rather than taken from the upstream response.
func Normalize(loc registry.Location, res FetchResult) (Record, error) {
	if len(res.Pollution.List) == 0 {
		return Record{}, fmt.Errorf("%w: pollution payload has no readings", ErrMalformedPayload)
	}

	entry := res.Pollution.List[0]
	if entry.Main.AQI == nil {
		return Record{}, fmt.Errorf("%w: pollution reading is missing aqi", ErrMalformedPayload)
	}

	main := res.Weather.Main
	if main.Temp == nil {
		return Record{}, fmt.Errorf("%w: weather payload is missing temperature", ErrMalformedPayload)
	}
	if main.Humidity == nil {
		return Record{}, fmt.Errorf("%w: weather payload is missing humidity", ErrMalformedPayload)
	}
	if main.Pressure == nil {
		return Record{}, fmt.Errorf("%w: weather payload is missing pressure", ErrMalformedPayload)
	}

	rec := Record{
		LocationID:   loc.ID,
		LocationName: loc.Name,
		Latitude:     loc.Lat,
		Longitude:    loc.Lon,
		Timestamp:    time.Now().UTC(),
		PM25:         entry.Components.PM25,
		PM10:         entry.Components.PM10,
		O3:           entry.Components.O3,
		NO2:          entry.Components.NO2,
		AQI:          *entry.Main.AQI,
		TemperatureC: *main.Temp,
		HumidityPct:  *main.Humidity,
		PressureHpa:  *main.Pressure,
	}

	if res.Weather.Wind != nil && res.Weather.Wind.Speed != nil {
		rec.WindSpeedMS = res.Weather.Wind.Speed
	}

	return rec, nil
}
