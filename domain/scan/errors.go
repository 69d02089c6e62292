package scan

import "errors"

var (
	// ErrNotFound is returned when a video or reference image does not exist
	ErrNotFound = errors.New("file not found")

	// ErrInvalidRange is returned when a frame range cannot select any frame
	ErrInvalidRange = errors.New("invalid frame range")

	// ErrNoTemplates is returned when a scan is started without reference images
	ErrNoTemplates = errors.New("at least one template is required")
)
