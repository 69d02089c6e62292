package imagefile

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vidrop/domain/frame"
	"vidrop/domain/scan"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Dumper is a scan.Observer that writes binarized templates and every
// compared frame window to a directory as PNG files
type Dumper struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	dumped map[string]bool
}

// NewDumper creates the output directory and returns a ready dumper
func NewDumper(dir string, logger *zap.Logger) (*Dumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dumper{
		dir:    dir,
		logger: logger,
		dumped: make(map[string]bool),
	}, nil
}

// FrameScanned implements scan.Observer
func (d *Dumper) FrameScanned(scan.FrameProgress) {}

// WindowCompared implements scan.Observer
func (d *Dumper) WindowCompared(c scan.Comparison) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c.Template != nil && !d.dumped[c.Template.Path] {
		d.dumped[c.Template.Path] = true
		d.save(c.Template.Binary, filepath.Join(d.dir, stem(c.Template.Name)+".png"))
	}

	edge := 0
	if !c.Offset.IsZero() {
		edge = 1
	}
	name := fmt.Sprintf("%05d_%s_%d.png", c.FrameIndex, templateStem(c.Template), edge)
	d.save(c.Window, filepath.Join(d.dir, name))
}

func (d *Dumper) save(f frame.Frame, path string) {
	if err := imaging.Save(ToImage(f), path); err != nil {
		d.logger.Warn("failed to write debug image", zap.String("path", path), zap.Error(err))
	}
}

// ToImage converts a frame to a Gray or NRGBA image
func ToImage(f frame.Frame) image.Image {
	if f.IsGray() {
		img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
		copy(img.Pix, f.Pix)
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

func templateStem(t *scan.Template) string {
	if t == nil {
		return "window"
	}
	return stem(t.Name)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Ensure Dumper implements scan.Observer
var _ scan.Observer = (*Dumper)(nil)
