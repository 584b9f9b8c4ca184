package main

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/dataset"
	"github.com/unixpickle/stereovox/npy"
	"github.com/unixpickle/stereovox/voxel"
)

// A VoxelGrid is a solid backed by one level of an
// occupancy grid, placed in the target frame.
type VoxelGrid struct {
	Grid   *voxel.Grid
	Origin model3d.Coord3D
	Size   float64

	// Threshold can be set to change the behavior of the
	// solid containment check.
	Threshold float64
}

// ReadVoxelGrid reads a level of an exported archive and
// places it according to conf.
func ReadVoxelGrid(path string, conf *voxel.Config, level int) (*VoxelGrid, error) {
	if level < 0 || level >= voxel.NumLevels {
		return nil, errors.Errorf("read voxel grid: no level %d", level)
	}
	arrays, err := npy.LoadNPZ(path)
	if err != nil {
		return nil, err
	}
	arr, ok := arrays[dataset.GridName(level)]
	if !ok {
		return nil, errors.Errorf("read voxel grid: %s has no %s", path, dataset.GridName(level))
	}
	shape := conf.Shape(level)
	if !arr.HasShape(shape.Array()) {
		return nil, errors.Errorf("read voxel grid: shape %v does not match %v", arr.Shape,
			shape.Array())
	}
	data, err := arr.Uint8s()
	if err != nil {
		return nil, errors.Wrap(err, "read voxel grid")
	}
	grid, err := voxel.NewGridData(shape, data)
	if err != nil {
		return nil, errors.Wrap(err, "read voxel grid")
	}
	return &VoxelGrid{
		Grid:      grid,
		Origin:    conf.Origin(),
		Size:      conf.Size(level),
		Threshold: 0.5,
	}, nil
}

// Min gets the minimum of the bounding box, one voxel
// beyond the grid so the surface is closed.
func (v *VoxelGrid) Min() model3d.Coord3D {
	return v.Origin.Sub(model3d.XYZ(1, 1, 1).Scale(v.Size))
}

// Max gets the maximum of the bounding box.
func (v *VoxelGrid) Max() model3d.Coord3D {
	s := v.Grid.Shape
	return v.Origin.Add(model3d.XYZ(float64(s.X+1), float64(s.Y+1), float64(s.Z+1)).Scale(v.Size))
}

// Contains checks if the value at the point is greater
// than the threshold.
func (v *VoxelGrid) Contains(c model3d.Coord3D) bool {
	return v.Interp(c) >= v.Threshold
}

// Interp gets a trilinear interpolated value for the grid
// at the given point. Voxel values sit at voxel centers.
func (v *VoxelGrid) Interp(c model3d.Coord3D) float64 {
	rel := c.Sub(v.Origin).Scale(1 / v.Size).Sub(model3d.XYZ(0.5, 0.5, 0.5)).Array()
	var base [3]int
	var frac [3]float64
	for axis, x := range rel {
		floor := math.Floor(x)
		base[axis] = int(floor)
		frac[axis] = x - floor
	}

	// Each bit of corner picks the upper neighbor on one axis.
	var value float64
	for corner := 0; corner < 8; corner++ {
		weight := 1.0
		idx := base
		for axis := 0; axis < 3; axis++ {
			if corner&(1<<axis) != 0 {
				idx[axis]++
				weight *= frac[axis]
			} else {
				weight *= 1 - frac[axis]
			}
		}
		if weight != 0 {
			value += weight * v.Grid.Value(idx[0], idx[1], idx[2])
		}
	}
	return value
}
