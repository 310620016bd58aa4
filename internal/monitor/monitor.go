// Package monitor periodically checks how fresh each product's newest render
// is and logs when data goes stale. Observational only: request handling
// never reads from it.
package monitor

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/timestamps"
)

// Render timestamps are UTC wall-clock tokens.
const timestampLayout = "20060102-150405"

// Monitor runs a recurring freshness check over available products.
type Monitor struct {
	scheduler  *gocron.Scheduler
	catalog    *catalog.Catalog
	index      *timestamps.Index
	interval   time.Duration
	staleAfter time.Duration
	log        zerolog.Logger
}

// New creates a Monitor. staleAfter is how old the newest timestamp may be
// before a warning is logged.
func New(c *catalog.Catalog, ix *timestamps.Index, interval, staleAfter time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		scheduler:  gocron.NewScheduler(time.UTC),
		catalog:    c,
		index:      ix,
		interval:   interval,
		staleAfter: staleAfter,
		log:        log,
	}
}

// Start schedules the periodic check and starts the underlying scheduler.
func (m *Monitor) Start() error {
	minutes := int(m.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := m.scheduler.Every(minutes).Minutes().Do(m.check)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future checks.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

func (m *Monitor) check() {
	now := time.Now().UTC()

	for _, product := range m.catalog.ListAvailable() {
		ts, err := m.index.List(product)
		if err != nil {
			m.log.Warn().Err(err).Str("product", product).Msg("freshness check failed")
			continue
		}
		if len(ts) == 0 {
			m.log.Debug().Str("product", product).Msg("no data yet")
			continue
		}

		age, err := newestAge(ts[0], now)
		if err != nil {
			m.log.Warn().Err(err).Str("product", product).Msg("unparseable newest timestamp")
			continue
		}

		if age > m.staleAfter {
			m.log.Warn().
				Str("product", product).
				Str("newest", ts[0]).
				Dur("age", age).
				Msg("product data is stale")
		} else {
			m.log.Debug().Str("product", product).Dur("age", age).Msg("product data is fresh")
		}
	}
}

// newestAge returns how far in the past the given render timestamp lies
// relative to now.
func newestAge(ts string, now time.Time) (time.Duration, error) {
	parsed, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	return now.Sub(parsed), nil
}
