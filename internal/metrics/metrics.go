// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus metrics exposed on /metrics:
// HTTP traffic, article mutations, lead-form emails, page cache hits and
// database pool usage.
package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jowam"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	ArticleMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "mutations_total",
			Help:      "Article writes by action and result",
		},
		[]string{"action", "result"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mailer",
			Name:      "emails_total",
			Help:      "Lead-form emails by form and result",
		},
		[]string{"form", "result"},
	)

	PageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page_cache",
			Name:      "lookups_total",
			Help:      "Rendered page cache lookups by result",
		},
		[]string{"result"},
	)

	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Database connection pool stats",
		},
		[]string{"state"},
	)
)

// ObserveMutation records the outcome of an article write.
func ObserveMutation(action string, err error) {
	ArticleMutations.WithLabelValues(action, result(err)).Inc()
}

// ObserveEmail records the outcome of a lead-form email.
func ObserveEmail(form string, err error) {
	EmailsSent.WithLabelValues(form, result(err)).Inc()
}

// ObserveCache records a page cache hit or miss.
func ObserveCache(hit bool) {
	if hit {
		PageCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	PageCacheLookups.WithLabelValues("miss").Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// StatsProvider is satisfied by *sql.DB.
type StatsProvider interface {
	Stats() sql.DBStats
}

// PoolStatsCollector copies database pool statistics into DBConnections
// on a fixed interval.
type PoolStatsCollector struct {
	provider StatsProvider
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewPoolStatsCollector creates a collector for the given pool.
func NewPoolStatsCollector(provider StatsProvider) *PoolStatsCollector {
	return &PoolStatsCollector{provider: provider, stop: make(chan struct{})}
}

// Start begins collecting every interval until Stop is called.
func (c *PoolStatsCollector) Start(interval time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *PoolStatsCollector) collect() {
	s := c.provider.Stats()
	DBConnections.WithLabelValues("open").Set(float64(s.OpenConnections))
	DBConnections.WithLabelValues("idle").Set(float64(s.Idle))
	DBConnections.WithLabelValues("in_use").Set(float64(s.InUse))
}

// Stop halts the collector and waits for its goroutine to exit.
func (c *PoolStatsCollector) Stop() {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
}
