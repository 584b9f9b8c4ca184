package cloud

import "github.com/unixpickle/model3d/model3d"

// A Filter clips clouds to an ROI.
//
// The y axis points down in the camera-aligned target
// frame, so points with a y value above GroundY lie below
// the ground plane. When FilterGround is set, those points
// are dropped as well.
type Filter struct {
	ROI          ROI
	FilterGround bool
	GroundY      float64
}

// Bounds gets the box actually used for clipping.
//
// The ground height can only lower the upper y bound; it
// never widens the ROI.
func (f *Filter) Bounds() ROI {
	r := f.ROI
	if f.FilterGround && r.Max.Y > f.GroundY {
		r.Max.Y = f.GroundY
	}
	return r
}

// Apply returns a new cloud holding the points inside the
// clipping box, in their original order.
// Flow vectors stay attached to their points.
func (f *Filter) Apply(c *Cloud) *Cloud {
	bounds := f.Bounds()
	res := &Cloud{}
	if c.HasFlow() {
		res.Flow = []model3d.Coord3D{}
	}
	for i, p := range c.Points {
		if !bounds.Contains(p) {
			continue
		}
		res.Points = append(res.Points, p)
		if c.HasFlow() {
			res.Flow = append(res.Flow, c.Flow[i])
		}
	}
	return res
}
