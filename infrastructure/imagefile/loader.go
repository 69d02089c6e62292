package imagefile

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"vidrop/domain/frame"
	"vidrop/domain/scan"

	"github.com/disintegration/imaging"
)

// Load reads an image file as a 3-channel RGB frame. Alpha is discarded.
func Load(path string) (frame.Frame, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return frame.Frame{}, fmt.Errorf("%w: %s", scan.ErrNotFound, path)
		}
		return frame.Frame{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%w: cannot decode %s: %v", frame.ErrInvalidFormat, path, err)
	}

	return FromImage(img)
}

// FromImage converts any image to an RGB frame
func FromImage(img image.Image) (frame.Frame, error) {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	h, w := bounds.Dy(), bounds.Dx()

	pix := make([]uint8, 0, h*w*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			pix = append(pix, row[x*4], row[x*4+1], row[x*4+2])
		}
	}

	return frame.NewRGB(h, w, pix)
}

// LoadTemplates reads every path and precomputes its binarized form.
// The order of the result follows paths.
func LoadTemplates(paths []string, pre frame.Preprocessor) ([]*scan.Template, error) {
	if len(paths) == 0 {
		return nil, scan.ErrNoTemplates
	}

	templates := make([]*scan.Template, 0, len(paths))
	for _, path := range paths {
		rgb, err := Load(path)
		if err != nil {
			return nil, err
		}
		tmpl, err := scan.NewTemplate(path, rgb, pre)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
