package scan

import "fmt"

// Range selects the frame indices a scan examines.
// Start is inclusive, Stop is exclusive and Stop <= 0 means unbounded.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// DefaultRange examines every frame of the stream
func DefaultRange() Range {
	return Range{Start: 0, Stop: -1, Step: 1}
}

// NewRange creates a validated range
func NewRange(start, stop, step int) (Range, error) {
	r := Range{Start: start, Stop: stop, Step: step}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks that the range is well formed. A stop at or before start is
// valid and selects no frames.
func (r Range) Validate() error {
	if r.Start < 0 {
		return fmt.Errorf("%w: start %d must not be negative", ErrInvalidRange, r.Start)
	}
	if r.Step < 1 {
		return fmt.Errorf("%w: step %d must be at least 1", ErrInvalidRange, r.Step)
	}
	return nil
}

// Bounded reports whether the range has a stop index
func (r Range) Bounded() bool {
	return r.Stop > 0
}

// Reached reports whether index is at or past the stop boundary
func (r Range) Reached(index int) bool {
	return r.Bounded() && index >= r.Stop
}

// Contains reports whether index is selected by the range
func (r Range) Contains(index int) bool {
	if index < r.Start || r.Reached(index) {
		return false
	}
	return (index-r.Start)%r.Step == 0
}

// String returns the range as start:stop:step
func (r Range) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Start, r.Stop, r.Step)
}
