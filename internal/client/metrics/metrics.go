// Package metrics defines the Prometheus metrics of a client process. It is
// the single source of truth for metric names, labels and help strings.
//
// All methods are safe on a nil *Metrics, so components built without
// metrics need no special casing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seowatch"

type Metrics struct {
	// ScansExecuted counts completed scans.
	// Labels:
	//   - trigger: "auto" or "manual"
	//   - result: "ok" or "fallback"
	ScansExecuted *prometheus.CounterVec

	// ScansDeclined counts scan triggers that were refused.
	// Label:
	//   - reason: "no_credit", "in_progress", "no_resource", "feature"
	ScansDeclined *prometheus.CounterVec

	// ScanDuration measures one scan from acceptance to persistence.
	ScanDuration prometheus.Histogram

	// MirrorFailures counts remote store operations that failed and were
	// swallowed.
	// Label:
	//   - op: e.g. "save_report", "get_resources", "backfill"
	MirrorFailures *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScansExecuted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_executed_total",
				Help:      "Total number of scans executed, by trigger and result.",
			},
			[]string{"trigger", "result"},
		),
		ScansDeclined: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_declined_total",
				Help:      "Total number of scan triggers declined, by reason.",
			},
			[]string{"reason"},
		),
		ScanDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of a scan from acceptance to persistence.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		MirrorFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_mirror_failures_total",
				Help:      "Total number of swallowed remote store failures, by operation.",
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) ScanExecuted(trigger, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.ScansExecuted.WithLabelValues(trigger, result).Inc()
	m.ScanDuration.Observe(took.Seconds())
}

func (m *Metrics) ScanDeclined(reason string) {
	if m == nil {
		return
	}
	m.ScansDeclined.WithLabelValues(reason).Inc()
}

func (m *Metrics) MirrorFailed(op string) {
	if m == nil {
		return
	}
	m.MirrorFailures.WithLabelValues(op).Inc()
}

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
