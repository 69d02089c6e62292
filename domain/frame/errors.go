package frame

import "errors"

var (
	// ErrInvalidFormat is returned when a frame does not have the expected channel layout
	ErrInvalidFormat = errors.New("invalid frame format")

	// ErrShapeMismatch is returned when two frames that must share a shape do not
	ErrShapeMismatch = errors.New("frame shapes do not match")

	// ErrUnalignableShape is returned when a template cannot be aligned to a frame on either axis
	ErrUnalignableShape = errors.New("template cannot be aligned to frame")

	// ErrWindowOutOfBounds is returned when a crop window does not fit inside the frame
	ErrWindowOutOfBounds = errors.New("crop window out of frame bounds")
)
