// Package metrics exposes adaptivemmd's tick-level state as Prometheus
// gauges and counters, wired per SPEC_FULL.md's domain-stack section.
// The HTTP endpoint is opt-in and off by default (spec.md's "no
// always-on observability surface" non-goal still applies to the
// network listener; the instrumentation itself is ambient).
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the control loop updates each tick.
type Registry struct {
	reg *prometheus.Registry

	WatermarkScaleFactor prometheus.Gauge
	CompactionTriggers   *prometheus.CounterVec
	ReclaimRate          *prometheus.GaugeVec
	CompactionRate       *prometheus.GaugeVec
	LeakGrowthCount      prometheus.Gauge
	TickDuration         prometheus.Histogram
}

// New registers every metric against a fresh registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		WatermarkScaleFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adaptivemmd",
			Name:      "watermark_scale_factor",
			Help:      "Current value of vm.watermark_scale_factor.",
		}),
		CompactionTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adaptivemmd",
			Name:      "compaction_triggers_total",
			Help:      "Number of times compaction was triggered, by NUMA node.",
		}, []string{"node"}),
		ReclaimRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adaptivemmd",
			Name:      "reclaim_rate_pages_per_ms",
			Help:      "Estimated kswapd reclaim rate, by NUMA node.",
		}, []string{"node"}),
		CompactionRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "adaptivemmd",
			Name:      "compaction_rate_pages_per_ms",
			Help:      "Estimated compaction rate, by NUMA node.",
		}, []string{"node"}),
		LeakGrowthCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adaptivemmd",
			Name:      "leak_growth_count",
			Help:      "Consecutive ticks of unaccounted-memory growth.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adaptivemmd",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent on one control-loop tick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		r.WatermarkScaleFactor,
		r.CompactionTriggers,
		r.ReclaimRate,
		r.CompactionRate,
		r.LeakGrowthCount,
		r.TickDuration,
	)
	return r
}

// Server serves /metrics on addr until ctx is cancelled. No command-line
// flag starts it and cmd/adaptivemmd does not call it; the control loop
// runs without it.
func (r *Registry) Server(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
