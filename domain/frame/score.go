package frame

import "fmt"

const (
	// DefaultScoreTolerance is the largest per-pixel difference that still counts as equal
	DefaultScoreTolerance = 5

	// DefaultHitRatio is the fraction of template pixels that may differ for a hit
	DefaultHitRatio = 0.01
)

// Scorer compares binarized frames
type Scorer struct {
	Tolerance int
	HitRatio  float64
}

// NewScorer creates a scorer, falling back to defaults for non-positive values
func NewScorer(tolerance int, hitRatio float64) Scorer {
	if tolerance <= 0 {
		tolerance = DefaultScoreTolerance
	}
	if hitRatio <= 0 {
		hitRatio = DefaultHitRatio
	}
	return Scorer{Tolerance: tolerance, HitRatio: hitRatio}
}

// Score counts the pixel positions where a and b differ by more than the tolerance
func (s Scorer) Score(a, b Frame) (int, error) {
	if a.Shape() != b.Shape() || len(a.Pix) != len(b.Pix) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.Shape(), b.Shape())
	}

	score := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > s.Tolerance {
			score++
		}
	}
	return score, nil
}

// IsHit reports whether score is below HitRatio of the template area
func (s Scorer) IsHit(score, templateArea int) bool {
	return float64(score) < float64(templateArea)*s.HitRatio
}
