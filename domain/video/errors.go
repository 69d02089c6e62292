package video

import "errors"

var (
	// ErrInsufficientLength is returned when the hit is too close to the start of the video
	ErrInsufficientLength = errors.New("video length is not enough")

	// ErrNotImplemented is returned by modification modes that are defined but unavailable
	ErrNotImplemented = errors.New("not implemented")

	// ErrNoMode is returned when neither truncate nor drop mode is selected
	ErrNoMode = errors.New("no option set to modify the video file")

	// ErrEmptyOutput is returned when the stream copy produced no data
	ErrEmptyOutput = errors.New("stream copy produced an empty file")

	// ErrPublishDeclined is returned when the user refuses to overwrite the output file
	ErrPublishDeclined = errors.New("output file exists and overwrite was declined")
)
