package frame

import "fmt"

// DefaultQuantizeStep coarsens grayscale values to multiples of 10 before binarization
const DefaultQuantizeStep = 10

const (
	// Black is the low binarized value
	Black uint8 = 0

	// White is the high binarized value
	White uint8 = 255
)

// Preprocessor converts raw RGB frames into the binarized form used for comparison
type Preprocessor struct {
	// QuantizeStep is the grayscale step size; values <= 0 fall back to DefaultQuantizeStep
	QuantizeStep int
}

// NewPreprocessor creates a preprocessor with the given quantization step
func NewPreprocessor(quantizeStep int) Preprocessor {
	if quantizeStep <= 0 {
		quantizeStep = DefaultQuantizeStep
	}
	return Preprocessor{QuantizeStep: quantizeStep}
}

// Quantize averages the channels of every pixel and rounds the result down to a multiple of the step
func (p Preprocessor) Quantize(f Frame) (Frame, error) {
	if !f.IsRGB() {
		return Frame{}, fmt.Errorf("%w: expected 3-channel frame, got %s", ErrInvalidFormat, f.Shape())
	}

	step := p.QuantizeStep
	if step <= 0 {
		step = DefaultQuantizeStep
	}

	gray := make([]uint8, f.Area())
	for i := range gray {
		px := f.Pix[i*3 : i*3+3]
		avg := (int(px[0]) + int(px[1]) + int(px[2])) / 3
		gray[i] = uint8(avg / step * step)
	}

	return Frame{Height: f.Height, Width: f.Width, Channels: 1, Pix: gray}, nil
}

// ToGrayscaleBinary quantizes the frame and thresholds it at the image mean.
// Pixels strictly above the mean become White, the rest Black.
func (p Preprocessor) ToGrayscaleBinary(f Frame) (Frame, error) {
	q, err := p.Quantize(f)
	if err != nil {
		return Frame{}, err
	}

	var sum int64
	for _, v := range q.Pix {
		sum += int64(v)
	}
	mean := float64(sum) / float64(len(q.Pix))

	for i, v := range q.Pix {
		if float64(v) > mean {
			q.Pix[i] = White
		} else {
			q.Pix[i] = Black
		}
	}

	return q, nil
}

// IsBinary reports whether every pixel of a 1-channel frame is Black or White
func IsBinary(f Frame) bool {
	if !f.IsGray() {
		return false
	}
	for _, v := range f.Pix {
		if v != Black && v != White {
			return false
		}
	}
	return true
}
