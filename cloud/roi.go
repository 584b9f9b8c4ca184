package cloud

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// An ROI is an axis-aligned box in the target frame.
// Both ends of every axis are inclusive.
type ROI struct {
	Min model3d.Coord3D
	Max model3d.Coord3D
}

// NewROI creates an ROI from bounds laid out as
// [min_x, max_x, min_y, max_y, min_z, max_z].
func NewROI(bounds []float64) (ROI, error) {
	if len(bounds) != 6 {
		return ROI{}, errors.Errorf("new roi: expected 6 bounds but got %d", len(bounds))
	}
	r := ROI{
		Min: model3d.XYZ(bounds[0], bounds[2], bounds[4]),
		Max: model3d.XYZ(bounds[1], bounds[3], bounds[5]),
	}
	if r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y || r.Max.Z <= r.Min.Z {
		return ROI{}, errors.Errorf("new roi: empty region %v", bounds)
	}
	return r, nil
}

// Bounds returns the ROI in the layout accepted by NewROI.
func (r ROI) Bounds() []float64 {
	return []float64{r.Min.X, r.Max.X, r.Min.Y, r.Max.Y, r.Min.Z, r.Max.Z}
}

// Size gets the extent of the box along every axis.
func (r ROI) Size() model3d.Coord3D {
	return r.Max.Sub(r.Min)
}

// Contains checks if c is inside the box or on its
// boundary.
func (r ROI) Contains(c model3d.Coord3D) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X &&
		c.Y >= r.Min.Y && c.Y <= r.Max.Y &&
		c.Z >= r.Min.Z && c.Z <= r.Max.Z
}
