package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	appscan "vidrop/application/scan"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scanner runs a single video scan
type Scanner interface {
	Run(ctx context.Context, in appscan.Input) (*appscan.Result, error)
}

// Hooks are called around each job. Both may be nil.
type Hooks struct {
	Started  func(job Job)
	Finished func(job Job, outcome Outcome)
}

// Job is one video of a batch
type Job struct {
	RunID string
	Index int
	Input appscan.Input
}

// Outcome is the result of one job
type Outcome struct {
	VideoPath string
	Result    *appscan.Result
	Err       error
}

// Summary collects every outcome in input order
type Summary struct {
	RunID    string
	Outcomes []Outcome
	Duration time.Duration
}

// Counts returns the number of hits, misses and failures
func (s *Summary) Counts() (hits, misses, failures int) {
	for _, o := range s.Outcomes {
		switch {
		case o.Err != nil:
			failures++
		case o.Result != nil && o.Result.Matched():
			hits++
		default:
			misses++
		}
	}
	return hits, misses, failures
}

// Dispatcher fans independent video scans out over a bounded worker pool
type Dispatcher struct {
	scanner Scanner
	workers int
	hooks   Hooks
	logger  *zap.Logger
}

// DispatcherOption is a functional option for configuring Dispatcher
type DispatcherOption func(*Dispatcher)

// WithWorkers sets the pool size; values below 1 pick DefaultWorkers
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithHooks sets per-job callbacks
func WithHooks(h Hooks) DispatcherOption {
	return func(d *Dispatcher) {
		d.hooks = h
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// DefaultWorkers leaves one CPU free, with a minimum of one worker
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(scanner Scanner, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		scanner: scanner,
		workers: DefaultWorkers(),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Workers returns the pool size
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch scans every input and returns once all workers have finished.
// A failing video does not stop the others; cancelling ctx does.
func (d *Dispatcher) Dispatch(ctx context.Context, inputs []appscan.Input) *Summary {
	started := time.Now()
	runID := uuid.NewString()
	log := d.logger.With(zap.String("run_id", runID))
	log.Info("batch started", zap.Int("videos", len(inputs)), zap.Int("workers", d.workers))

	outcomes := make([]Outcome, len(inputs))
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup

	for i, in := range inputs {
		job := Job{RunID: runID, Index: i, Input: in}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i] = Outcome{VideoPath: in.VideoPath, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[job.Index] = d.run(ctx, log, job)
		}()
	}

	wg.Wait()

	summary := &Summary{RunID: runID, Outcomes: outcomes, Duration: time.Since(started)}
	hits, misses, failures := summary.Counts()
	log.Info("batch finished",
		zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("failures", failures),
		zap.Duration("duration", summary.Duration))
	return summary
}

func (d *Dispatcher) run(ctx context.Context, log *zap.Logger, job Job) Outcome {
	if d.hooks.Started != nil {
		d.hooks.Started(job)
	}

	outcome := Outcome{VideoPath: job.Input.VideoPath}
	if err := ctx.Err(); err != nil {
		outcome.Err = err
	} else {
		outcome.Result, outcome.Err = d.scanner.Run(ctx, job.Input)
	}

	if outcome.Err != nil {
		log.Error("scan failed", zap.String("video", job.Input.VideoPath), zap.Error(outcome.Err))
	}

	if d.hooks.Finished != nil {
		d.hooks.Finished(job, outcome)
	}
	return outcome
}

// FindVideos lists the files in dir whose extension is in exts (case-insensitive), sorted by name
func FindVideos(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = true
	}

	var videos []string
	for _, e := range entries {
		if e.IsDir() || !wanted[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		videos = append(videos, filepath.Join(dir, e.Name()))
	}
	sort.Strings(videos)
	return videos, nil
}
