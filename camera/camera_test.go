package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/model3d/model3d"
)

var identityRotation = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

func assertCoordsClose(t *testing.T, expected, actual model3d.Coord3D) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-9)
	assert.InDelta(t, expected.Y, actual.Y, 1e-9)
	assert.InDelta(t, expected.Z, actual.Z, 1e-9)
}

func TestImageToCamera(t *testing.T) {
	in := Intrinsics{Fu: 700, Fv: 710, Cu: 600, Cv: 180}
	assertCoordsClose(t, model3d.XYZ(0, 0, 5), in.ImageToCamera(600, 180, 5))
	assertCoordsClose(t, model3d.XYZ(1, -0.5, 7), in.ImageToCamera(700, 129.28571428571428, 7))

	// Depth is not validated.
	assertCoordsClose(t, model3d.XYZ(-1, 0, -7), in.ImageToCamera(700, 180, -7))
}

func TestIntrinsicsCheckValid(t *testing.T) {
	var missing *Intrinsics
	assert.ErrorIs(t, missing.CheckValid(), ErrNoIntrinsics)
	assert.ErrorIs(t, (&Intrinsics{Fu: 0, Fv: 1}).CheckValid(), ErrNoIntrinsics)
	assert.NoError(t, (&Intrinsics{Fu: 1, Fv: 1}).CheckValid())
}

func TestPoseAlgebra(t *testing.T) {
	// 90 degrees about z, then a translation.
	rot := [9]float64{0, -1, 0, 1, 0, 0, 0, 0, 1}
	p := NewPose(rot, [3]float64{1, 2, 3})
	assertCoordsClose(t, model3d.XYZ(1, 3, 3), p.Apply(model3d.XYZ(1, 0, 0)))

	inv, err := p.Inverse()
	require.NoError(t, err)
	c := model3d.XYZ(0.3, -2, 5)
	assertCoordsClose(t, c, inv.Apply(p.Apply(c)))
	assertCoordsClose(t, c, p.Mul(inv).Apply(c))

	rect := NewRotationPose([9]float64{1, 0, 0, 0, 0, -1, 0, 1, 0})
	composed := rect.Mul(p)
	assertCoordsClose(t, rect.Apply(p.Apply(c)), composed.Apply(c))

	flat := p.Flatten()
	assert.Equal(t, [12]float64{0, -1, 0, 1, 0, 0, 0, 0, 1, 1, 2, 3}, flat)
	assert.Equal(t, flat, NewPoseFlat(flat).Flatten())

	_, err = NewPose([9]float64{}, [3]float64{}).Inverse()
	assert.Error(t, err)
}

func TestDisparityToCloud(t *testing.T) {
	in := Intrinsics{Fu: 100, Fv: 100, Cu: 1, Cv: 1}
	pose := NewPose(identityRotation, [3]float64{0, 0, -2})
	proj, err := NewProjector(in, pose)
	require.NoError(t, err)

	d := NewDisparity(3, 2)
	d.Set(1, 1, 10)
	d.Set(2, 0, 20)
	d.Set(0, 1, -3)
	res := proj.DisparityToCloud(d, 0.5)
	require.Equal(t, 2, res.Len())
	assert.False(t, res.HasFlow())

	// Row 0 comes first.
	depth := 100 * 0.5 / (20 + DepthEpsilon)
	assertCoordsClose(t, model3d.XYZ(depth/100, -depth/100, depth+2), res.Points[0])
	depth = 100 * 0.5 / (10 + DepthEpsilon)
	assertCoordsClose(t, model3d.XYZ(0, 0, depth+2), res.Points[1])

	_, err = NewProjector(Intrinsics{}, pose)
	assert.ErrorIs(t, err, ErrNoIntrinsics)
}

func TestReadDisparityPNG(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 256 * 3})
	img.SetGray16(3, 1, color.Gray16{Y: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	d, err := ReadDisparityPNG(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Width)
	assert.Equal(t, 2, d.Height)
	assert.Equal(t, 3.0, d.At(0, 0))
	assert.Equal(t, 0.5, d.At(3, 1))
	assert.Equal(t, 0.0, d.At(1, 0))
	assert.Equal(t, 2, d.Valid())

	rgb := image.NewRGBA(image.Rect(0, 0, 2, 2))
	buf.Reset()
	require.NoError(t, png.Encode(&buf, rgb))
	_, err = ReadDisparityPNG(&buf)
	assert.Error(t, err)

	_, err = ReadDisparityPNG(bytes.NewReader([]byte("not a png")))
	assert.Error(t, err)
}
