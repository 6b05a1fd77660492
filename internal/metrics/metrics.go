package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MergesTotal counts finished merge requests by terminal outcome
	// ("completed", or the failure kind).
	MergesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_merger_merges_total",
		Help: "Finished merge requests by outcome",
	}, []string{"outcome"})

	// MergesInFlight tracks requests between upload and cleanup.
	MergesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_merger_merges_in_flight",
		Help: "Merge requests currently being processed",
	})

	// StageDuration tracks time spent per lifecycle stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "video_merger_stage_duration_seconds",
		Help:    "Duration of merge stages",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.5, 12), // 10ms to ~10min
	}, []string{"stage"})

	// AudioStrategy counts which audio branch the planner chose.
	AudioStrategy = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_merger_audio_strategy_total",
		Help: "Planned audio strategies",
	}, []string{"strategy"})

	// CleanupErrors counts scratch files that could not be removed.
	CleanupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_merger_cleanup_errors_total",
		Help: "Scratch files that could not be removed",
	})

	// SweptFiles counts stale scratch files removed by the periodic sweep.
	SweptFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_merger_swept_files_total",
		Help: "Stale scratch files removed by the sweeper",
	})
)
