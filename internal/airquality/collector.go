package airquality

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-collector/internal/registry"
)

// Collector walks the location registry, fetches and normalizes readings, and
// hands records to the sink. Execution is strictly sequential; a failure for
// one location never aborts the run.
type Collector struct {
	locations Locations
	client    Client
	sink      Sink
	pause     time.Duration
	sleep     func(time.Duration)
	log       *zap.Logger
}

// NewCollector creates a Collector. pause is the unconditional wait inserted
// after each location during a full run, to stay under the upstream rate limit.
func NewCollector(locations Locations, client Client, sink Sink, pause time.Duration, log *zap.Logger) *Collector {
	return &Collector{
		locations: locations,
		client:    client,
		sink:      sink,
		pause:     pause,
		sleep:     time.Sleep,
		log:       log,
	}
}

// CollectAll processes every registered location in order and returns the
// run's tally. The inter-location pause also follows the last location.
func (c *Collector) CollectAll(ctx context.Context) Tally {
	runID := uuid.NewString()
	log := c.log.With(zap.String("run_id", runID))

	locs := c.locations.List()
	log.Info("starting collection run", zap.Int("locations", len(locs)))

	var tally Tally
	for _, loc := range locs {
		log.Info("collecting location", zap.String("location", loc.ID))

		if c.process(ctx, log, loc) {
			tally.Succeeded++
		} else {
			tally.Failed++
		}

		c.sleep(c.pause)
	}

	log.Info("collection run finished",
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("failed", tally.Failed),
	)
	return tally
}

// CollectOne runs the fetch-normalize-store pipeline for a single location,
// without the inter-location pause. Unknown ids are reported as a plain
// failure; no upstream call is made.
func (c *Collector) CollectOne(ctx context.Context, locationID string) bool {
	loc, ok := c.locations.Get(locationID)
	if !ok {
		c.log.Warn("location not found", zap.String("location", locationID))
		return false
	}

	c.log.Info("collecting location", zap.String("location", loc.ID))
	return c.process(ctx, c.log, loc)
}

func (c *Collector) process(ctx context.Context, log *zap.Logger, loc registry.Location) bool {
	res, err := c.client.FetchAirQuality(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Warn("fetch failed",
			zap.String("location", loc.ID),
			zap.Error(err),
		)
		return false
	}

	rec, err := Normalize(loc, res)
	if err != nil {
		log.Warn("normalization failed",
			zap.String("location", loc.ID),
			zap.Error(err),
		)
		return false
	}

	if err := c.sink.Insert(ctx, rec); err != nil {
		log.Warn("store failed",
			zap.String("location", loc.ID),
			zap.Error(err),
		)
		return false
	}

	log.Info("stored measurement",
		zap.String("location", loc.ID),
		zap.Int("aqi", rec.AQI),
		zap.Float64("temperatureC", rec.TemperatureC),
	)
	return true
}
