package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBPoolConnections reports pool connections by state (total|acquired|idle|max).
	DBPoolConnections = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      "connections",
			Help:      "PostgreSQL pool connections by state",
		},
		[]string{"state"},
	)

	// DBPoolAcquires mirrors the pool's cumulative acquire counters. 'empty'
	// counts acquires that had to wait for a free connection.
	DBPoolAcquires = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      "acquires",
			Help:      "Cumulative connection acquires by outcome",
		},
		[]string{"outcome"},
	)

	DBPoolAcquireSeconds = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      "acquire_wait_seconds",
			Help:      "Cumulative time spent acquiring connections",
		},
	)
)

// PoolStats is the subset of *pgxpool.Pool the collector reads.
type PoolStats interface {
	Stat() *pgxpool.Stat
}

// DBCollector copies pool statistics into gauges on a fixed interval.
type DBCollector struct {
	pool PoolStats
}

func NewDBCollector(pool PoolStats) *DBCollector {
	return &DBCollector{pool: pool}
}

// Run samples until ctx is cancelled and then returns nil, so it can share
// an errgroup with the HTTP server.
func (c *DBCollector) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	if stat == nil {
		return
	}

	DBPoolConnections.WithLabelValues("total").Set(float64(stat.TotalConns()))
	DBPoolConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(stat.MaxConns()))

	DBPoolAcquires.WithLabelValues("success").Set(float64(stat.AcquireCount()))
	DBPoolAcquires.WithLabelValues("empty").Set(float64(stat.EmptyAcquireCount()))
	DBPoolAcquires.WithLabelValues("canceled").Set(float64(stat.CanceledAcquireCount()))
	DBPoolAcquireSeconds.Set(stat.AcquireDuration().Seconds())
}
