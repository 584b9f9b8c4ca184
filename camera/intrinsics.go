// Package camera implements pinhole projection between
// image pixels, the rectified camera frame and a target
// frame given by a camera pose.
package camera

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// ErrNoIntrinsics is returned for unusable pinhole
// parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// Intrinsics holds the pinhole parameters of a rectified
// camera, read from its projection matrix.
type Intrinsics struct {
	Fu float64
	Fv float64
	Cu float64
	Cv float64
}

// CheckValid makes sure the focal lengths are positive.
func (in *Intrinsics) CheckValid() error {
	if in == nil {
		return errors.Wrap(ErrNoIntrinsics, "intrinsics do not exist")
	}
	if in.Fu <= 0 || in.Fv <= 0 {
		return errors.Wrapf(ErrNoIntrinsics, "invalid focal lengths (%v, %v)", in.Fu, in.Fv)
	}
	return nil
}

// Array returns [f_u, f_v, c_u, c_v].
func (in *Intrinsics) Array() [4]float64 {
	return [4]float64{in.Fu, in.Fv, in.Cu, in.Cv}
}

// ImageToCamera back-projects a pixel with known depth
// into the rectified camera frame.
//
// The depth is not validated; callers must mask out
// pixels without depth.
func (in *Intrinsics) ImageToCamera(u, v, depth float64) model3d.Coord3D {
	return model3d.XYZ(
		(u-in.Cu)*depth/in.Fu,
		(v-in.Cv)*depth/in.Fv,
		depth,
	)
}
