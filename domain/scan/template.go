package scan

import (
	"fmt"
	"path/filepath"

	"vidrop/domain/frame"
)

// Template is a reference image the scan searches for.
// It is read-only after construction and may be shared between concurrent scans.
type Template struct {
	Path   string
	Name   string
	Source frame.Frame
	Binary frame.Frame
}

// NewTemplate precomputes the binarized form of an RGB reference image
func NewTemplate(path string, rgb frame.Frame, pre frame.Preprocessor) (*Template, error) {
	binary, err := pre.ToGrayscaleBinary(rgb)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return &Template{
		Path:   path,
		Name:   filepath.Base(path),
		Source: rgb,
		Binary: binary,
	}, nil
}

// Shape returns the dimensions of the binarized template
func (t *Template) Shape() frame.Shape {
	return t.Binary.Shape()
}

// Area returns the number of template pixels
func (t *Template) Area() int {
	return t.Binary.Area()
}
