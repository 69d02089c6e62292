package scan

import "vidrop/domain/frame"

// FrameProgress is reported once for every frame examined, the hit frame included
type FrameProgress struct {
	Index    int
	MinScore int
	Hit      bool
}

// Comparison describes one template window scored against a frame
type Comparison struct {
	FrameIndex int
	Template   *Template
	Offset     frame.Offset
	Window     frame.Frame
	Score      int
	Hit        bool
}

// Observer receives diagnostics while a scan runs. Implementations must not
// retain Window beyond the call unless they copy it.
type Observer interface {
	FrameScanned(p FrameProgress)
	WindowCompared(c Comparison)
}

// NopObserver ignores all events
type NopObserver struct{}

func (NopObserver) FrameScanned(FrameProgress) {}
func (NopObserver) WindowCompared(Comparison) {}

// MultiObserver fans events out to several observers in order
type MultiObserver []Observer

func (m MultiObserver) FrameScanned(p FrameProgress) {
	for _, o := range m {
		o.FrameScanned(p)
	}
}

func (m MultiObserver) WindowCompared(c Comparison) {
	for _, o := range m {
		o.WindowCompared(c)
	}
}
