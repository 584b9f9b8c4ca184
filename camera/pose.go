package camera

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/mat"
)

// A Pose is a 4x4 homogeneous transform whose last row is
// [0, 0, 0, 1].
type Pose struct {
	m *mat.Dense
}

// NewPose creates a pose from a row-major 3x3 rotation and
// a translation.
func NewPose(rotation [9]float64, translation [3]float64) *Pose {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, rotation[i*3+j])
		}
		m.Set(i, 3, translation[i])
	}
	m.Set(3, 3, 1)
	return &Pose{m: m}
}

// NewRotationPose embeds a row-major 3x3 rotation in a pose
// with zero translation.
func NewRotationPose(rotation [9]float64) *Pose {
	return NewPose(rotation, [3]float64{})
}

// NewPoseFlat creates a pose from the layout returned by
// Flatten.
func NewPoseFlat(flat [12]float64) *Pose {
	var rot [9]float64
	var trans [3]float64
	copy(rot[:], flat[:9])
	copy(trans[:], flat[9:])
	return NewPose(rot, trans)
}

// Matrix returns a copy of the 4x4 matrix.
func (p *Pose) Matrix() *mat.Dense {
	return mat.DenseCopyOf(p.m)
}

// Mul computes p @ other, i.e. the transform applying
// other first and then p.
func (p *Pose) Mul(other *Pose) *Pose {
	var res mat.Dense
	res.Mul(p.m, other.m)
	return &Pose{m: &res}
}

// Inverse computes the inverse transform.
func (p *Pose) Inverse() (*Pose, error) {
	var res mat.Dense
	if err := res.Inverse(p.m); err != nil {
		return nil, errors.Wrap(err, "invert pose")
	}
	return &Pose{m: &res}, nil
}

// Rotation gets the upper-left 3x3 block.
func (p *Pose) Rotation() *model3d.Matrix3 {
	var res model3d.Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res[i*3+j] = p.m.At(i, j)
		}
	}
	return &res
}

// Translation gets the last column without its
// homogeneous component.
func (p *Pose) Translation() model3d.Coord3D {
	return model3d.XYZ(p.m.At(0, 3), p.m.At(1, 3), p.m.At(2, 3))
}

// Apply transforms a point.
func (p *Pose) Apply(c model3d.Coord3D) model3d.Coord3D {
	return p.Rotation().MulColumn(c).Add(p.Translation())
}

// ApplyAll transforms a list of points into a new slice.
func (p *Pose) ApplyAll(cs []model3d.Coord3D) []model3d.Coord3D {
	rot := p.Rotation()
	trans := p.Translation()
	res := make([]model3d.Coord3D, len(cs))
	for i, c := range cs {
		res[i] = rot.MulColumn(c).Add(trans)
	}
	return res
}

// Flatten returns the row-major rotation followed by the
// translation.
func (p *Pose) Flatten() [12]float64 {
	var res [12]float64
	copy(res[:9], p.Rotation()[:])
	t := p.Translation()
	res[9], res[10], res[11] = t.X, t.Y, t.Z
	return res
}
