package frame

import "fmt"

// Shape describes the dimensions of a frame
type Shape struct {
	Height   int
	Width    int
	Channels int
}

// String returns the shape as (height, width, channels)
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Height, s.Width, s.Channels)
}

// Area returns the number of pixel positions
func (s Shape) Area() int {
	return s.Height * s.Width
}

// Frame is an immutable grid of 8-bit pixels stored row-major with interleaved channels
type Frame struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// New creates a frame after checking that the buffer matches the dimensions
func New(height, width, channels int, pix []uint8) (Frame, error) {
	if channels != 1 && channels != 3 {
		return Frame{}, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}
	if height <= 0 || width <= 0 {
		return Frame{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFormat, height, width)
	}
	if len(pix) != height*width*channels {
		return Frame{}, fmt.Errorf("%w: buffer holds %d bytes, want %d", ErrInvalidFormat, len(pix), height*width*channels)
	}
	return Frame{Height: height, Width: width, Channels: channels, Pix: pix}, nil
}

// NewRGB creates a 3-channel frame
func NewRGB(height, width int, pix []uint8) (Frame, error) {
	return New(height, width, 3, pix)
}

// NewGray creates a 1-channel frame
func NewGray(height, width int, pix []uint8) (Frame, error) {
	return New(height, width, 1, pix)
}

// Shape returns the frame dimensions
func (f Frame) Shape() Shape {
	return Shape{Height: f.Height, Width: f.Width, Channels: f.Channels}
}

// Area returns height * width
func (f Frame) Area() int {
	return f.Height * f.Width
}

// IsRGB reports whether the frame is a well-formed 3-channel frame
func (f Frame) IsRGB() bool {
	return f.Channels == 3 && f.Height > 0 && f.Width > 0 && len(f.Pix) == f.Height*f.Width*3
}

// IsGray reports whether the frame is a well-formed 1-channel frame
func (f Frame) IsGray() bool {
	return f.Channels == 1 && f.Height > 0 && f.Width > 0 && len(f.Pix) == f.Height*f.Width
}

// At returns the value of channel c at row r, column col
func (f Frame) At(r, col, c int) uint8 {
	return f.Pix[(r*f.Width+col)*f.Channels+c]
}

// Crop copies a height x width window whose top-left corner is at offset
func (f Frame) Crop(off Offset, height, width int) (Frame, error) {
	if off.Row < 0 || off.Col < 0 || height <= 0 || width <= 0 ||
		off.Row+height > f.Height || off.Col+width > f.Width {
		return Frame{}, fmt.Errorf("%w: window %dx%d at %s in frame %s",
			ErrWindowOutOfBounds, height, width, off, f.Shape())
	}

	rowBytes := width * f.Channels
	pix := make([]uint8, height*rowBytes)
	for r := 0; r < height; r++ {
		src := ((off.Row+r)*f.Width + off.Col) * f.Channels
		copy(pix[r*rowBytes:(r+1)*rowBytes], f.Pix[src:src+rowBytes])
	}

	return Frame{Height: height, Width: width, Channels: f.Channels, Pix: pix}, nil
}
