package scan

import (
	"fmt"

	"vidrop/domain/frame"
)

// Status is the terminal state of a scan
type Status string

const (
	// StatusHit indicates a frame matched a template
	StatusHit Status = "hit"

	// StatusNoMatch indicates the stream was exhausted without a match
	StatusNoMatch Status = "no_match"
)

// Hit identifies the frame, template and window that matched
type Hit struct {
	FrameIndex   int
	TemplatePath string
	Offset       frame.Offset
	Score        int
}

// MatchResult is the outcome of one scan
type MatchResult struct {
	Status        Status
	Hit           Hit
	FramesScanned int
}

// Matched reports whether the scan found a hit
func (r MatchResult) Matched() bool {
	return r.Status == StatusHit
}

// String summarizes the result
func (r MatchResult) String() string {
	if !r.Matched() {
		return fmt.Sprintf("no match after %d frames", r.FramesScanned)
	}
	return fmt.Sprintf("%s hit at frame %d with offset %s (score %d)",
		r.Hit.TemplatePath, r.Hit.FrameIndex, r.Hit.Offset, r.Hit.Score)
}
