package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ScanStatusSuccess = "success"
	ScanStatusError   = "error"
	ScanStatusDryRun  = "dry_run"
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltis_scan_runs_total",
			Help: "Total number of library scans by outcome",
		},
		[]string{"library_type", "status"},
	)

	ScanFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltis_scan_files_total",
			Help: "Files reported by library scans, by diff category",
		},
		[]string{"library_type", "category"}, // added, updated, removed, unchanged
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voltis_scan_duration_seconds",
			Help:    "Library scan duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		},
		[]string{"library_type"},
	)

	ScansInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voltis_scans_in_flight",
			Help: "Number of library scans currently running",
		},
	)
)

// Job metrics
var (
	JobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltis_jobs_processed_total",
			Help: "Total number of jobs processed by the worker",
		},
		[]string{"type", "status"},
	)
)
