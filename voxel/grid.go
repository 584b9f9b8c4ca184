package voxel

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// A Shape is the number of voxels along each axis.
type Shape struct {
	X, Y, Z int
}

// Len gets the total number of voxels.
func (s Shape) Len() int {
	return s.X * s.Y * s.Z
}

// Index gets the flat index of voxel (i, j, k).
func (s Shape) Index(i, j, k int) int {
	return (i*s.Y+j)*s.Z + k
}

// Coords inverts Index.
func (s Shape) Coords(idx int) (i, j, k int) {
	k = idx % s.Z
	j = (idx / s.Z) % s.Y
	i = idx / (s.Z * s.Y)
	return
}

// InBounds checks if (i, j, k) is a voxel of the shape.
func (s Shape) InBounds(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < s.X && j < s.Y && k < s.Z
}

// Array returns [X, Y, Z].
func (s Shape) Array() []int {
	return []int{s.X, s.Y, s.Z}
}

// A Grid is a dense occupancy grid holding 0 or 1 per
// voxel.
type Grid struct {
	Shape Shape
	Data  []uint8
}

// NewGrid creates an empty grid.
func NewGrid(s Shape) *Grid {
	return &Grid{Shape: s, Data: make([]uint8, s.Len())}
}

// NewGridData wraps existing data, normalizing every
// non-zero value to 1.
func NewGridData(s Shape, data []uint8) (*Grid, error) {
	if len(data) != s.Len() {
		return nil, errors.Errorf("new grid: %d values for shape %v", len(data), s)
	}
	res := NewGrid(s)
	for i, x := range data {
		if x != 0 {
			res.Data[i] = 1
		}
	}
	return res, nil
}

// At checks if voxel (i, j, k) is occupied.
func (g *Grid) At(i, j, k int) bool {
	return g.Data[g.Shape.Index(i, j, k)] != 0
}

// Value is 1 if voxel (i, j, k) is occupied and 0 if it
// is empty or out of bounds.
func (g *Grid) Value(i, j, k int) float64 {
	if !g.Shape.InBounds(i, j, k) || !g.At(i, j, k) {
		return 0
	}
	return 1
}

// Set marks voxel (i, j, k).
func (g *Grid) Set(i, j, k int, occupied bool) {
	var x uint8
	if occupied {
		x = 1
	}
	g.Data[g.Shape.Index(i, j, k)] = x
}

// Count gets the number of occupied voxels.
func (g *Grid) Count() int {
	var n int
	for _, x := range g.Data {
		n += int(x)
	}
	return n
}

// Occupied lists the flat indices of occupied voxels in
// increasing order.
func (g *Grid) Occupied() []int {
	var res []int
	for i, x := range g.Data {
		if x != 0 {
			res = append(res, i)
		}
	}
	return res
}

// A FlowGrid stores a 3D flow vector per voxel.
type FlowGrid struct {
	Shape Shape
	Data  []model3d.Coord3D
}

// NewFlowGrid creates an all-zero flow grid.
func NewFlowGrid(s Shape) *FlowGrid {
	return &FlowGrid{Shape: s, Data: make([]model3d.Coord3D, s.Len())}
}

// At gets the flow of voxel (i, j, k).
func (f *FlowGrid) At(i, j, k int) model3d.Coord3D {
	return f.Data[f.Shape.Index(i, j, k)]
}

// Float32s flattens the grid into an (X, Y, Z, 3) array.
func (f *FlowGrid) Float32s() []float32 {
	res := make([]float32, 0, len(f.Data)*3)
	for _, c := range f.Data {
		res = append(res, float32(c.X), float32(c.Y), float32(c.Z))
	}
	return res
}
