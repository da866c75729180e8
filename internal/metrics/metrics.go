// Package metrics exposes Prometheus instruments for the intake pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ComplaintsSubmitted counts stored complaints by intake channel.
	ComplaintsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "igire",
		Subsystem: "intake",
		Name:      "complaints_submitted_total",
		Help:      "Total number of complaints stored, labeled by channel.",
	}, []string{"channel"})

	// Categorizations counts categorization results by source (llm, keyword, user).
	Categorizations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "igire",
		Subsystem: "categorize",
		Name:      "results_total",
		Help:      "Total number of categorization results, labeled by source.",
	}, []string{"source"})

	// TranscriptionDuration is wall time spent waiting on the transcription provider.
	TranscriptionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "igire",
		Subsystem: "transcribe",
		Name:      "duration_seconds",
		Help:      "Time from transcript submission to completion, labeled by result.",
		Buckets:   []float64{1, 3, 5, 10, 20, 30, 60, 120, 180},
	}, []string{"result"})

	UssdRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "igire",
		Subsystem: "ussd",
		Name:      "requests_total",
		Help:      "Total number of USSD requests, labeled by top-level branch.",
	}, []string{"branch"})

	StatusUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "igire",
		Subsystem: "complaints",
		Name:      "status_updates_total",
		Help:      "Total number of complaint status changes, labeled by new status.",
	}, []string{"status"})

	DashboardClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "igire",
		Subsystem: "dashboard",
		Name:      "connected_clients",
		Help:      "Number of dashboard websocket clients currently connected.",
	})
)

// Register registers hub metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ComplaintsSubmitted,
			Categorizations,
			TranscriptionDuration,
			UssdRequests,
			StatusUpdates,
			DashboardClients,
		)
	})
}
