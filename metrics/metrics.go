// Package metrics holds the prometheus collectors of the download pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	TracksTotal    *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	BatchesTotal   *prometheus.CounterVec
	TrackDuration  prometheus.Histogram
	JobsInProgress prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotigrab_requests_total",
				Help: "Total number of download requests by reference kind",
			},
			[]string{"kind"},
		),
		TracksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotigrab_tracks_total",
				Help: "Total number of tracks processed by outcome status",
			},
			[]string{"status"},
		),
		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotigrab_stage_failures_total",
				Help: "Track pipeline failures by stage",
			},
			[]string{"stage"},
		),
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotigrab_playlists_total",
				Help: "Total number of playlists processed by outcome status",
			},
			[]string{"status"},
		),
		TrackDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spotigrab_track_duration_seconds",
				Help:    "Time spent running one track through the pipeline",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
		),
		JobsInProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spotigrab_jobs_in_progress",
				Help: "Number of queued download jobs currently processing",
			},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.TracksTotal,
		m.StageFailures,
		m.BatchesTotal,
		m.TrackDuration,
		m.JobsInProgress,
	)
	return m
}

// ObserveRequest counts a dispatched request
func (m *Metrics) ObserveRequest(kind string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind).Inc()
}

// ObserveTrack records a finished track. stage is empty on success.
func (m *Metrics) ObserveTrack(status, stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TracksTotal.WithLabelValues(status).Inc()
	if stage != "" {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
	m.TrackDuration.Observe(elapsed.Seconds())
}

// ObserveBatch records a finished playlist
func (m *Metrics) ObserveBatch(status string) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(status).Inc()
}

// JobStarted and JobFinished track the in-progress gauge
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsInProgress.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.JobsInProgress.Dec()
}
