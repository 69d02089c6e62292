package metrics

import (
	"time"

	"vidrop/domain/scan"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidrop_frames_scanned_total",
		Help: "Total number of frames examined without a hit",
	})

	WindowsComparedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidrop_windows_compared_total",
		Help: "Total number of template windows scored",
	})

	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidrop_scans_total",
		Help: "Total number of video scans, by result",
	}, []string{"result"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidrop_scan_duration_seconds",
		Help:    "Duration of a single video scan including truncation",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidrop_active_workers",
		Help: "Number of batch workers currently scanning a video",
	})
)

// Result labels for ScansTotal
const (
	ResultHit     = "hit"
	ResultNoMatch = "no_match"
	ResultError   = "error"
)

// Observer counts frames and windows as a scan.Observer
type Observer struct{}

// FrameScanned implements scan.Observer
func (Observer) FrameScanned(scan.FrameProgress) {
	FramesScannedTotal.Inc()
}

// WindowCompared implements scan.Observer
func (Observer) WindowCompared(scan.Comparison) {
	WindowsComparedTotal.Inc()
}

// ObserveScan records the outcome of one scan
func ObserveScan(result string, d time.Duration) {
	ScansTotal.WithLabelValues(result).Inc()
	ScanDuration.Observe(d.Seconds())
}

// Ensure Observer implements scan.Observer
var _ scan.Observer = Observer{}
