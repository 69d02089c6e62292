package logging

import (
	"fmt"
	"time"

	"vidrop/domain/scan"
	"vidrop/domain/video"

	"go.uber.org/zap"
)

// ScanObserver logs one debug line per frame examined
type ScanObserver struct {
	logger      *zap.Logger
	fps         int
	totalFrames int
}

// NewScanObserver creates a logging observer. totalFrames may be 0 when unknown.
func NewScanObserver(logger *zap.Logger, fps, totalFrames int) *ScanObserver {
	if fps <= 0 {
		fps = video.DefaultFrameRate
	}
	return &ScanObserver{logger: logger, fps: fps, totalFrames: totalFrames}
}

// FrameScanned implements scan.Observer
func (o *ScanObserver) FrameScanned(p scan.FrameProgress) {
	if ce := o.logger.Check(zap.DebugLevel, o.line(p)); ce != nil {
		ce.Write(zap.Int("frame", p.Index), zap.Int("min_score", p.MinScore))
	}
}

// WindowCompared implements scan.Observer
func (o *ScanObserver) WindowCompared(c scan.Comparison) {
	if !c.Hit {
		return
	}
	o.logger.Warn(fmt.Sprintf("%s hit at %d with offset %s", c.Template.Path, c.FrameIndex, c.Offset),
		zap.Int("score", c.Score))
}

// line formats "frame / total (pct%) = elapsed; min pts"
func (o *ScanObserver) line(p scan.FrameProgress) string {
	elapsed := time.Duration(p.Index/o.fps) * time.Second
	if o.totalFrames > 0 {
		pct := float64(p.Index) / float64(o.totalFrames) * 100
		return fmt.Sprintf("Working on frame: %5d / %d (%5.2f%%) = %s; %d pts", p.Index, o.totalFrames, pct, elapsed, p.MinScore)
	}
	return fmt.Sprintf("Working on frame: %5d / ? = %s; %d pts", p.Index, elapsed, p.MinScore)
}

// Ensure ScanObserver implements scan.Observer
var _ scan.Observer = (*ScanObserver)(nil)
