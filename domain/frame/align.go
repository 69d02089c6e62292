package frame

import "fmt"

// Offset is the top-left corner of a template-sized window inside a frame
type Offset struct {
	Row int
	Col int
}

// String returns the offset as (row, col)
func (o Offset) String() string {
	return fmt.Sprintf("(%d, %d)", o.Row, o.Col)
}

// IsZero reports whether the offset is (0, 0)
func (o Offset) IsZero() bool {
	return o.Row == 0 && o.Col == 0
}

// CheckResizable reports which dimensions of the frame and template agree
func CheckResizable(frameShape, templateShape Shape) (heightMatches, widthMatches bool) {
	return frameShape.Height == templateShape.Height, frameShape.Width == templateShape.Width
}

// PlanOffsets returns the candidate windows to compare the template against.
// A template that differs on one axis is assumed to be cropped from one edge of
// the frame, so only the two flush placements along that axis are tried.
func PlanOffsets(heightMatches, widthMatches bool, frameShape, templateShape Shape) ([]Offset, error) {
	switch {
	case heightMatches && widthMatches:
		return []Offset{{0, 0}}, nil
	case heightMatches:
		if templateShape.Width > frameShape.Width {
			return nil, unalignable(frameShape, templateShape)
		}
		return []Offset{{0, 0}, {0, frameShape.Width - templateShape.Width}}, nil
	case widthMatches:
		if templateShape.Height > frameShape.Height {
			return nil, unalignable(frameShape, templateShape)
		}
		return []Offset{{0, 0}, {frameShape.Height - templateShape.Height, 0}}, nil
	default:
		return nil, unalignable(frameShape, templateShape)
	}
}

// Align combines CheckResizable and PlanOffsets
func Align(frameShape, templateShape Shape) ([]Offset, error) {
	h, w := CheckResizable(frameShape, templateShape)
	return PlanOffsets(h, w, frameShape, templateShape)
}

func unalignable(frameShape, templateShape Shape) error {
	return fmt.Errorf("%w: frame %s, template %s", ErrUnalignableShape, frameShape, templateShape)
}
