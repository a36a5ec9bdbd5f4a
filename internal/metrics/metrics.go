// Package metrics records export run metrics for Prometheus.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"egov-event-export/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "egov_event_export"

// Recorder run metrics on a private registry
type Recorder struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastSuccessTS prometheus.Gauge
	artifactItems *prometheus.GaugeVec
	notifyFailed  prometheus.Counter
}

// NewRecorder creates and registers the run metrics
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Export runs by final status",
	}, []string{"status"})
	r.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of export runs",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful export",
	})
	r.artifactItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "artifact_items",
		Help:      "Number of entries written per artifact by the last successful run",
	}, []string{"artifact"})
	r.notifyFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_failures_total",
		Help:      "Notifications that could not be delivered",
	})

	r.registry.MustRegister(
		r.runsTotal,
		r.runDuration,
		r.lastSuccessTS,
		r.artifactItems,
		r.notifyFailed,
	)
	return r
}

// Registry returns the registry holding the run metrics
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records a finished run
func (r *Recorder) ObserveRun(s *models.RunSummary) {
	r.runsTotal.WithLabelValues(s.Status).Inc()
	r.runDuration.Observe(s.Duration().Seconds())

	if s.Status != models.RunSucceeded {
		return
	}
	r.lastSuccessTS.Set(float64(s.FinishedAt.Unix()))
	r.artifactItems.WithLabelValues("events").Set(float64(s.Events))
	r.artifactItems.WithLabelValues("categories").Set(float64(s.Categories))
	r.artifactItems.WithLabelValues("urady").Set(float64(s.Offices))
	r.artifactItems.WithLabelValues("isvs").Set(float64(s.Subsystems))
	r.artifactItems.WithLabelValues("search-suggestions").Set(float64(s.Suggestions))
}

// ObserveNotifyFailures adds undelivered notifications
func (r *Recorder) ObserveNotifyFailures(n int) {
	if n > 0 {
		r.notifyFailed.Add(float64(n))
	}
}

// Push sends the current values to a Pushgateway under job
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

// Server exposes /metrics and /healthz
type Server struct {
	server *http.Server
}

// NewServer creates a metrics server listening on addr
func (r *Recorder) NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler              { return s.server.Handler }
func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
