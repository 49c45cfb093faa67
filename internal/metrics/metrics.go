// Package metrics exposes Prometheus instrumentation and a periodic
// collector that refreshes the database-derived gauges.
package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/store"
)

var (
	usersTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kino_bot_users_total",
		Help: "Total number of registered users",
	})

	subscribedUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kino_bot_subscribed_users",
		Help: "Number of users whose last gate check passed",
	})

	moviesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kino_bot_movies_total",
		Help: "Total number of movies in database",
	})

	premiereMovies = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kino_bot_premiere_movies",
		Help: "Number of movies in the premiere carousel",
	})

	viewsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kino_bot_views_total",
		Help: "Sum of movie view counters",
	})

	updatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kino_bot_updates_total",
		Help: "Total number of processed bot updates",
	}, []string{"type"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kino_bot_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(usersTotal)
	prometheus.MustRegister(subscribedUsers)
	prometheus.MustRegister(moviesTotal)
	prometheus.MustRegister(premiereMovies)
	prometheus.MustRegister(viewsTotal)
	prometheus.MustRegister(updatesTotal)
	prometheus.MustRegister(httpRequestsTotal)
}

// RecordUpdate counts one processed bot update by kind.
func RecordUpdate(updateType string) {
	updatesTotal.WithLabelValues(updateType).Inc()
}

// RecordHTTPRequest counts one handled HTTP request.
func RecordHTTPRequest(route string, status int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Collector periodically refreshes the database gauges.
type Collector struct {
	store    store.Store
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCollector creates a collector polling at the given interval.
func NewCollector(s store.Store, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		store:    s,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	defer c.wg.Done()

	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect(ctx)
		case <-c.stopCh:
			log.Info().Msg("Metrics collector stopped")
			return
		case <-ctx.Done():
			log.Info().Msg("Metrics collector context cancelled")
			return
		}
	}
}

// Stop halts the collection loop and waits for it to finish.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// collect refreshes every gauge; individual query failures are logged
// and leave the previous value in place.
func (c *Collector) collect(ctx context.Context) {
	if count, err := c.store.CountUsers(ctx); err == nil {
		usersTotal.Set(float64(count))
	} else {
		log.Error().Err(err).Msg("Failed to collect user count")
	}
	if count, err := c.store.CountSubscribedUsers(ctx); err == nil {
		subscribedUsers.Set(float64(count))
	} else {
		log.Error().Err(err).Msg("Failed to collect subscribed user count")
	}
	if count, err := c.store.CountMovies(ctx); err == nil {
		moviesTotal.Set(float64(count))
	} else {
		log.Error().Err(err).Msg("Failed to collect movie count")
	}
	if count, err := c.store.CountPremiereMovies(ctx); err == nil {
		premiereMovies.Set(float64(count))
	} else {
		log.Error().Err(err).Msg("Failed to collect premiere count")
	}
	if sum, err := c.store.SumViews(ctx); err == nil {
		viewsTotal.Set(float64(sum))
	} else {
		log.Error().Err(err).Msg("Failed to collect view sum")
	}
}
