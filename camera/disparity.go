package camera

import (
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
)

// DisparityScale converts stored integer disparity values
// into pixels.
const DisparityScale = 256.0

// A Disparity map stores per-pixel disparity in pixels.
// Values <= 0 mark pixels without depth.
type Disparity struct {
	Width  int
	Height int

	// Values is stored row by row.
	Values []float64
}

// NewDisparity creates an all-zero disparity map.
func NewDisparity(width, height int) *Disparity {
	return &Disparity{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At gets the disparity at column u and row v.
func (d *Disparity) At(u, v int) float64 {
	return d.Values[v*d.Width+u]
}

// Set sets the disparity at column u and row v.
func (d *Disparity) Set(u, v int, value float64) {
	d.Values[v*d.Width+u] = value
}

// Valid counts the pixels with positive disparity.
func (d *Disparity) Valid() int {
	var n int
	for _, x := range d.Values {
		if x > 0 {
			n++
		}
	}
	return n
}

// ReadDisparityPNG decodes a single-channel PNG whose
// values, divided by DisparityScale, are disparities.
func ReadDisparityPNG(r io.Reader) (*Disparity, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "read disparity")
	}
	b := img.Bounds()
	res := NewDisparity(b.Dx(), b.Dy())
	switch img := img.(type) {
	case *image.Gray16:
		for v := 0; v < res.Height; v++ {
			for u := 0; u < res.Width; u++ {
				y := img.Gray16At(b.Min.X+u, b.Min.Y+v).Y
				res.Set(u, v, float64(y)/DisparityScale)
			}
		}
	case *image.Gray:
		for v := 0; v < res.Height; v++ {
			for u := 0; u < res.Width; u++ {
				y := img.GrayAt(b.Min.X+u, b.Min.Y+v).Y
				res.Set(u, v, float64(y)/DisparityScale)
			}
		}
	default:
		return nil, errors.Errorf("read disparity: expected a single-channel image but got %T", img)
	}
	return res, nil
}

// ReadDisparityFile opens and decodes a disparity PNG.
func ReadDisparityFile(path string) (*Disparity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read disparity")
	}
	defer f.Close()
	return ReadDisparityPNG(f)
}
