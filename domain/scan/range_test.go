package scan

import (
	"errors"
	"testing"
)

func TestNewRange(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		stop    int
		step    int
		wantErr bool
	}{
		{name: "default", start: 0, stop: -1, step: 1},
		{name: "bounded", start: 10, stop: 20, step: 3},
		{name: "zero stop is unbounded", start: 5, stop: 0, step: 2},
		{name: "negative start", start: -1, stop: -1, step: 1, wantErr: true},
		{name: "zero step", start: 0, stop: -1, step: 0, wantErr: true},
		{name: "stop before start selects nothing", start: 10, stop: 5, step: 1},
		{name: "stop equal to start selects nothing", start: 10, stop: 10, step: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.start, tt.stop, tt.step)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("NewRange() error = %v, want ErrInvalidRange", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewRange() unexpected error: %v", err)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{Start: 3, Stop: 12, Step: 4}

	want := map[int]bool{3: true, 7: true, 11: true}
	for i := 0; i < 20; i++ {
		if got := r.Contains(i); got != want[i] {
			t.Errorf("Range%s.Contains(%d) = %v, want %v", r, i, got, want[i])
		}
	}
}

func TestRange_Reached(t *testing.T) {
	bounded := Range{Start: 0, Stop: 5, Step: 1}
	if bounded.Reached(4) {
		t.Error("expected index 4 to be inside a range stopping at 5")
	}
	if !bounded.Reached(5) {
		t.Error("expected index 5 to reach a range stopping at 5")
	}

	unbounded := DefaultRange()
	if unbounded.Reached(1 << 30) {
		t.Error("expected an unbounded range never to be reached")
	}
}
