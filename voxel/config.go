// Package voxel builds nested occupancy grids from point
// clouds.
//
// Every dense array in this package is laid out with x as
// the slowest axis and z as the fastest, so the voxel
// (i, j, k) of a grid shaped (nx, ny, nz) lives at index
// (i*ny + j)*nz + k.
package voxel

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/cloud"
)

// NumLevels is the number of grid resolutions.
const NumLevels = 4

// divisibilityTolerance is relative to the voxel size.
const divisibilityTolerance = 1e-9

// Config describes the voxel grids of every level.
// It is immutable once created.
type Config struct {
	roi    cloud.ROI
	sizes  [NumLevels]float64
	gates  [NumLevels]int
	shapes [NumLevels]Shape
}

// NewConfig validates an ROI and a coarse-to-fine voxel
// size schedule.
//
// Every ROI axis must be a whole number of voxels at every
// level, and each level must halve the voxel size of the
// level before it.
//
// Gates holds the minimum number of points for a voxel to
// be occupied, per level. A nil gates slice means 1 at
// every level.
func NewConfig(roi cloud.ROI, sizes []float64, gates []int) (*Config, error) {
	if len(sizes) != NumLevels {
		return nil, errors.Errorf("voxel config: expected %d voxel sizes but got %d",
			NumLevels, len(sizes))
	}
	if gates != nil && len(gates) != NumLevels {
		return nil, errors.Errorf("voxel config: expected %d occupied gates but got %d",
			NumLevels, len(gates))
	}
	res := &Config{roi: roi}
	extent := roi.Size()
	for level, size := range sizes {
		if !(size > 0) {
			return nil, errors.Errorf("voxel config: level %d: voxel size %v is not positive",
				level, size)
		}
		if level > 0 && math.Abs(sizes[level-1]/size-2) > divisibilityTolerance {
			return nil, errors.Errorf("voxel config: level %d: voxel size %v does not halve %v",
				level, size, sizes[level-1])
		}
		var counts [3]int
		for axis, length := range extent.Array() {
			n, ok := wholeCells(length, size)
			if !ok {
				return nil, errors.Errorf("voxel config: level %d: range %v of axis %d is "+
					"not divisible by voxel size %v", level, length, axis, size)
			}
			counts[axis] = n
		}
		res.sizes[level] = size
		res.shapes[level] = Shape{X: counts[0], Y: counts[1], Z: counts[2]}

		res.gates[level] = 1
		if gates != nil {
			if gates[level] <= 0 {
				return nil, errors.Errorf("voxel config: level %d: occupied gate %d must be positive",
					level, gates[level])
			}
			res.gates[level] = gates[level]
		}
	}
	return res, nil
}

// ROI gets the region covered by the grids.
func (c *Config) ROI() cloud.ROI {
	return c.roi
}

// Origin gets the minimum corner of the grids.
func (c *Config) Origin() model3d.Coord3D {
	return c.roi.Min
}

// Size gets the voxel edge length of a level.
func (c *Config) Size(level int) float64 {
	return c.sizes[level]
}

// Gate gets the occupied gate of a level.
func (c *Config) Gate(level int) int {
	return c.gates[level]
}

// Shape gets the grid shape of a level.
func (c *Config) Shape(level int) Shape {
	return c.shapes[level]
}

// ReferencePoints gets the voxel centers of a level.
func (c *Config) ReferencePoints(level int) []model3d.Coord3D {
	return ReferencePoints(c.Origin(), c.shapes[level], c.sizes[level])
}

func wholeCells(length, size float64) (int, bool) {
	n := math.Round(length / size)
	if n < 1 || math.Abs(n*size-length) > divisibilityTolerance*size*math.Max(1, n) {
		return 0, false
	}
	return int(n), true
}
