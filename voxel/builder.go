package voxel

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/cloud"
)

const (
	// DefaultRelTol is the default fraction of a voxel by
	// which mean flow is pulled toward zero before it is
	// snapped to the lattice.
	DefaultRelTol = 0.3

	flowEpsilon = 1e-5
)

// A Level is the result of building one grid level.
type Level struct {
	Index     int
	Occupancy *Grid

	// Centers lists the centers of occupied voxels in
	// flat index order.
	Centers []model3d.Coord3D

	// Flow is nil unless flow was requested.
	Flow *FlowGrid
}

// A Builder computes occupancy grids for a Config.
// It holds no per-sample state and may be shared between
// goroutines.
type Builder struct {
	Config *Config
	RelTol float64
}

// NewBuilder creates a builder with DefaultRelTol.
func NewBuilder(c *Config) *Builder {
	return &Builder{Config: c, RelTol: DefaultRelTol}
}

// Build computes every level from coarse to fine, using
// each level as the search mask of the next.
//
// A failure is reported as a *BuildError.
func (b *Builder) Build(c *cloud.Cloud, wantFlow bool) ([]*Level, error) {
	res := make([]*Level, 0, NumLevels)
	var parent *Grid
	for level := 0; level < NumLevels; level++ {
		l, err := b.BuildLevel(c, level, parent, wantFlow)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
		parent = l.Occupancy
	}
	return res, nil
}

// BuildLevel computes one level.
//
// If parent is nil, every voxel is searched. Otherwise,
// parent must be the occupancy of the previous level, and
// only the 8 children of its occupied voxels are searched.
//
// A point hits a voxel if it is within half a voxel of
// the center along all three axes, so a point on a shared
// face hits both voxels. A searched voxel is occupied if
// at least Gate(level) points hit it.
//
// If wantFlow is set, the cloud must carry flow, and every
// occupied voxel gets the quantized mean flow of the points
// hitting it.
func (b *Builder) BuildLevel(c *cloud.Cloud, level int, parent *Grid,
	wantFlow bool) (l *Level, err error) {
	defer func() {
		if err != nil {
			err = &BuildError{Level: level, NumPoints: c.Len(), Err: err}
		}
	}()
	if level < 0 || level >= NumLevels {
		return nil, errors.Errorf("level %d out of range", level)
	}
	if wantFlow && !c.HasFlow() {
		return nil, cloud.ErrNoFlow
	}
	mask, err := b.SearchMask(level, parent)
	if err != nil {
		return nil, err
	}

	shape := b.Config.Shape(level)
	size := b.Config.Size(level)
	origin := b.Config.Origin()
	counts := make([]int, shape.Len())
	var flowSums []model3d.Coord3D
	if wantFlow {
		flowSums = make([]model3d.Coord3D, shape.Len())
	}
	for pointIdx, p := range c.Points {
		forEachHit(origin, shape, size, p, func(idx int) {
			if mask != nil && !mask[idx] {
				return
			}
			counts[idx]++
			if wantFlow {
				flowSums[idx] = flowSums[idx].Add(c.Flow[pointIdx])
			}
		})
	}

	gate := b.Config.Gate(level)
	l = &Level{Index: level, Occupancy: NewGrid(shape)}
	if wantFlow {
		l.Flow = NewFlowGrid(shape)
	}
	for idx, count := range counts {
		if count < gate {
			continue
		}
		l.Occupancy.Data[idx] = 1
		i, j, k := shape.Coords(idx)
		l.Centers = append(l.Centers, Center(origin, size, i, j, k))
		if wantFlow {
			mean := flowSums[idx].Scale(1 / (float64(count) + flowEpsilon))
			l.Flow.Data[idx] = QuantizeFlow(mean, size, b.RelTol)
		}
	}
	return l, nil
}

// SearchMask gets the voxels of a level that may be
// occupied given the occupancy of the previous level.
//
// The result is nil, meaning every voxel, if parent is nil.
func (b *Builder) SearchMask(level int, parent *Grid) ([]bool, error) {
	if parent == nil {
		return nil, nil
	}
	if level == 0 {
		return nil, errors.New("level 0 has no parent level")
	}
	expected := b.Config.Shape(level - 1)
	if parent.Shape != expected {
		return nil, errors.Errorf("parent shape %v does not match level %d shape %v",
			parent.Shape, level-1, expected)
	}
	shape := b.Config.Shape(level)
	mask := make([]bool, shape.Len())
	for _, idx := range parent.Occupied() {
		i, j, k := expected.Coords(idx)
		for di := 0; di < 2; di++ {
			for dj := 0; dj < 2; dj++ {
				for dk := 0; dk < 2; dk++ {
					mask[shape.Index(2*i+di, 2*j+dj, 2*k+dk)] = true
				}
			}
		}
	}
	return mask, nil
}

// QuantizeFlow snaps a mean flow onto the voxel lattice.
//
// The mean is first rounded to one decimal, then each
// non-zero component is moved toward zero by relTol voxels
// and floored to a multiple of size.
func QuantizeFlow(mean model3d.Coord3D, size, relTol float64) model3d.Coord3D {
	quantize := func(x float64) float64 {
		x = math.RoundToEven(x*10) / 10
		sign := 0.0
		if x > 0 {
			sign = 1
		} else if x < 0 {
			sign = -1
		}
		return math.Floor((x-relTol*sign*size)/size) * size
	}
	return model3d.XYZ(quantize(mean.X), quantize(mean.Y), quantize(mean.Z))
}

// forEachHit calls f with the flat index of every voxel
// whose box contains p, boundaries included.
func forEachHit(origin model3d.Coord3D, s Shape, size float64, p model3d.Coord3D,
	f func(idx int)) {
	half := size / 2
	var ranges [3][2]int
	limits := s.Array()
	rel := p.Sub(origin).Array()
	for axis, x := range rel {
		cell := int(math.Floor(x / size))
		ranges[axis] = [2]int{max(cell-1, 0), min(cell+1, limits[axis]-1)}
	}
	for i := ranges[0][0]; i <= ranges[0][1]; i++ {
		for j := ranges[1][0]; j <= ranges[1][1]; j++ {
			for k := ranges[2][0]; k <= ranges[2][1]; k++ {
				d := p.Sub(Center(origin, size, i, j, k)).Abs()
				if d.X <= half && d.Y <= half && d.Z <= half {
					f(s.Index(i, j, k))
				}
			}
		}
	}
}
