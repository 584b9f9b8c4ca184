package voxel

import "github.com/unixpickle/model3d/model3d"

// Center gets the center of voxel (i, j, k) of a grid
// starting at origin.
func Center(origin model3d.Coord3D, size float64, i, j, k int) model3d.Coord3D {
	idx := model3d.XYZ(float64(i), float64(j), float64(k))
	unit := model3d.XYZ(1, 1, 1)
	return origin.Add(idx.Add(unit.Scale(0.5)).Scale(size))
}

// ReferencePoints lists the center of every voxel of a
// grid, in flat index order.
func ReferencePoints(origin model3d.Coord3D, s Shape, size float64) []model3d.Coord3D {
	res := make([]model3d.Coord3D, 0, s.Len())
	for i := 0; i < s.X; i++ {
		for j := 0; j < s.Y; j++ {
			for k := 0; k < s.Z; k++ {
				res = append(res, Center(origin, size, i, j, k))
			}
		}
	}
	return res
}
