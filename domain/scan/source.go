package scan

import (
	"context"
	"fmt"

	"vidrop/domain/frame"
)

// Decoder yields the frames of a video stream in order, starting at the first frame.
// Decode returns ok == false once the stream is exhausted.
type Decoder interface {
	Decode() (f frame.Frame, ok bool, err error)
	Close() error
}

// DecoderOpener starts decoding a video file
type DecoderOpener interface {
	Open(ctx context.Context, videoPath string) (Decoder, error)
}

// IndexedFrame is a decoded frame with its position in the stream
type IndexedFrame struct {
	Index int
	Frame frame.Frame
}

// FrameSource walks a decoder, yielding only the frames selected by a Range.
// It owns the decoder and can be traversed once.
type FrameSource struct {
	decoder Decoder
	rng     Range
	cursor  int
	done    bool
	closed  bool
}

// NewFrameSource creates a source over dec. The cursor starts before the first frame.
func NewFrameSource(dec Decoder, rng Range) (*FrameSource, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return &FrameSource{
		decoder: dec,
		rng:     rng,
		cursor:  -1,
	}, nil
}

// Range returns the range the source was created with
func (s *FrameSource) Range() Range {
	return s.rng
}

// Position returns the index of the last decoded frame, or -1 before the first decode
func (s *FrameSource) Position() int {
	return s.cursor
}

// Next returns the next selected frame. Skipped frames are decoded and discarded.
// ok is false once the stream or the range is exhausted; later calls keep returning false.
func (s *FrameSource) Next() (IndexedFrame, bool, error) {
	for !s.done {
		if s.rng.Reached(s.cursor + 1) {
			s.done = true
			break
		}

		f, ok, err := s.decoder.Decode()
		if err != nil {
			s.done = true
			return IndexedFrame{}, false, fmt.Errorf("failed to decode frame %d: %w", s.cursor+1, err)
		}
		if !ok {
			s.done = true
			break
		}
		s.cursor++

		if s.rng.Contains(s.cursor) {
			return IndexedFrame{Index: s.cursor, Frame: f}, true, nil
		}
	}
	return IndexedFrame{}, false, nil
}

// Close releases the underlying decoder. Later calls are no-ops.
func (s *FrameSource) Close() error {
	s.done = true
	if s.closed {
		return nil
	}
	s.closed = true
	return s.decoder.Close()
}
