package scan

import (
	"context"
	"fmt"

	"vidrop/domain/frame"
)

// Driver runs the frame-matching loop
type Driver struct {
	preprocessor frame.Preprocessor
	scorer       frame.Scorer
	observer     Observer
}

// DriverOption is a functional option for configuring Driver
type DriverOption func(*Driver)

// WithObserver sets the diagnostics observer
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDriver creates a driver with the given preprocessing and scoring rules
func NewDriver(pre frame.Preprocessor, scorer frame.Scorer, opts ...DriverOption) *Driver {
	d := &Driver{
		preprocessor: pre,
		scorer:       scorer,
		observer:     NopObserver{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// frameDecision is the verdict of searching one frame against all templates
type frameDecision struct {
	hit      bool
	match    Hit
	minScore int
}

// Scan pulls frames from src in order and stops at the first frame that matches
// any template. Templates are tried in the given order, so earlier templates win
// when several would match the same frame. An unalignable template aborts the scan.
// The context is checked between frames.
func (d *Driver) Scan(ctx context.Context, src *FrameSource, templates []*Template) (MatchResult, error) {
	if len(templates) == 0 {
		return MatchResult{}, ErrNoTemplates
	}

	scanned := 0
	for {
		if err := ctx.Err(); err != nil {
			return MatchResult{FramesScanned: scanned}, err
		}

		next, ok, err := src.Next()
		if err != nil {
			return MatchResult{FramesScanned: scanned}, err
		}
		if !ok {
			return MatchResult{Status: StatusNoMatch, FramesScanned: scanned}, nil
		}
		scanned++

		decision, err := d.searchFrame(next, templates)
		if err != nil {
			return MatchResult{FramesScanned: scanned}, err
		}
		d.observer.FrameScanned(FrameProgress{Index: next.Index, MinScore: decision.minScore, Hit: decision.hit})

		if decision.hit {
			return MatchResult{Status: StatusHit, Hit: decision.match, FramesScanned: scanned}, nil
		}
	}
}

// searchFrame compares one frame with every template window until one hits
func (d *Driver) searchFrame(in IndexedFrame, templates []*Template) (frameDecision, error) {
	gray, err := d.preprocessor.ToGrayscaleBinary(in.Frame)
	if err != nil {
		return frameDecision{}, fmt.Errorf("frame %d: %w", in.Index, err)
	}

	decision := frameDecision{minScore: gray.Area()}
	for _, tpl := range templates {
		offsets, err := frame.Align(gray.Shape(), tpl.Shape())
		if err != nil {
			return frameDecision{}, fmt.Errorf("%s: %w", tpl.Path, err)
		}

		for _, off := range offsets {
			window, err := gray.Crop(off, tpl.Binary.Height, tpl.Binary.Width)
			if err != nil {
				return frameDecision{}, fmt.Errorf("frame %d, %s: %w", in.Index, tpl.Path, err)
			}

			score, err := d.scorer.Score(window, tpl.Binary)
			if err != nil {
				return frameDecision{}, fmt.Errorf("frame %d, %s: %w", in.Index, tpl.Path, err)
			}
			if score < decision.minScore {
				decision.minScore = score
			}

			hit := d.scorer.IsHit(score, tpl.Area())
			d.observer.WindowCompared(Comparison{
				FrameIndex: in.Index,
				Template:   tpl,
				Offset:     off,
				Window:     window,
				Score:      score,
				Hit:        hit,
			})

			if hit {
				decision.hit = true
				decision.match = Hit{
					FrameIndex:   in.Index,
					TemplatePath: tpl.Path,
					Offset:       off,
					Score:        score,
				}
				return decision, nil
			}
		}
	}

	return decision, nil
}
