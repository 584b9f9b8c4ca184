package camera

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/cloud"
)

// DepthEpsilon keeps depth finite for tiny disparities.
const DepthEpsilon = 1e-5

// A Projector maps image observations of one camera into
// the target frame of its pose.
//
// Pose maps target coordinates into the rectified camera
// frame, so the projector applies its inverse.
type Projector struct {
	Intrinsics Intrinsics
	Pose       *Pose

	inverse *Pose
}

// NewProjector creates a projector for a calibrated
// camera.
func NewProjector(in Intrinsics, pose *Pose) (*Projector, error) {
	if err := in.CheckValid(); err != nil {
		return nil, err
	}
	inv, err := pose.Inverse()
	if err != nil {
		return nil, errors.Wrap(err, "new projector")
	}
	return &Projector{Intrinsics: in, Pose: pose, inverse: inv}, nil
}

// ImageToCamera back-projects a pixel into the rectified
// camera frame.
func (p *Projector) ImageToCamera(u, v, depth float64) model3d.Coord3D {
	return p.Intrinsics.ImageToCamera(u, v, depth)
}

// CameraToTarget maps camera-frame points into the target
// frame.
func (p *Projector) CameraToTarget(points []model3d.Coord3D) []model3d.Coord3D {
	return p.inverse.ApplyAll(points)
}

// DisparityToCloud converts every pixel with positive
// disparity into a target-frame point, visiting pixels row
// by row.
//
// The depth of a pixel is f_u * baseline / disparity.
func (p *Projector) DisparityToCloud(d *Disparity, baseline float64) *cloud.Cloud {
	points := make([]model3d.Coord3D, 0, d.Valid())
	for v := 0; v < d.Height; v++ {
		for u := 0; u < d.Width; u++ {
			disp := d.At(u, v)
			if disp <= 0 {
				continue
			}
			depth := p.Intrinsics.Fu * baseline / (disp + DepthEpsilon)
			points = append(points, p.ImageToCamera(float64(u), float64(v), depth))
		}
	}
	return cloud.New(p.CameraToTarget(points))
}
