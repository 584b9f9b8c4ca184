// Package dataset turns the files of one stereo sample
// into voxel ground truth.
package dataset

import (
	"fmt"

	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/calib"
	"github.com/unixpickle/stereovox/cloud"
	"github.com/unixpickle/stereovox/npy"
	"github.com/unixpickle/stereovox/voxel"
)

// A Sample is the ground truth of one stereo pair.
type Sample struct {
	Calibration *calib.Calibration

	// ImageWidth and ImageHeight are the disparity map
	// dimensions. They are 0 when the cloud came from a cloud
	// file or there is no depth source, and the exported
	// camera vectors then start with [0, 0].
	ImageWidth  int
	ImageHeight int

	// Cloud is the filtered cloud, or nil if the sample has
	// no depth source.
	Cloud *cloud.Cloud

	// Grids holds the occupancy of every level, coarse to
	// fine, or nil without ground truth.
	Grids []*voxel.Grid

	// Centers holds the occupied voxel centers of each
	// level. It is nil when Grids came from stored ground
	// truth.
	Centers [][]model3d.Coord3D

	// Flows is nil unless flow was requested.
	Flows []*voxel.FlowGrid
}

// HasGroundTruth checks if the sample has occupancy grids.
func (s *Sample) HasGroundTruth() bool {
	return s.Grids != nil
}

// CameraVector returns [width, height, f_u, f_v, c_u, c_v]
// for a camera of the sample. Width and height are 0 when
// the image size is unknown.
func (s *Sample) CameraVector(c *calib.Camera) [6]float64 {
	in := c.Intrinsics.Array()
	return [6]float64{float64(s.ImageWidth), float64(s.ImageHeight), in[0], in[1], in[2], in[3]}
}

// GridName is the archive entry of a level's occupancy.
func GridName(level int) string {
	return fmt.Sprintf("voxel_grid_%d", level)
}

// FlowName is the archive entry of a level's flow.
func FlowName(level int) string {
	return fmt.Sprintf("voxel_flow_%d", level)
}

// Entries lays the sample out as numpy arrays.
// Missing parts of the sample produce no entries.
func (s *Sample) Entries() []npy.Entry {
	var res []npy.Entry
	cams := []struct {
		suffix string
		camera *calib.Camera
	}{
		{"101", &s.Calibration.Primary},
		{"103", &s.Calibration.Secondary},
	}
	for _, c := range cams {
		pose := c.camera.Pose.Flatten()
		vec := s.CameraVector(c.camera)
		res = append(res,
			npy.Entry{Name: "T_world_cam_" + c.suffix, Array: npy.Float32([]int{12}, toFloat32(pose[:]))},
			npy.Entry{Name: "cam_" + c.suffix, Array: npy.Float32([]int{6}, toFloat32(vec[:]))},
		)
	}
	if s.Cloud != nil {
		res = append(res, npy.Entry{
			Name:  "point_cloud",
			Array: npy.Float32([]int{s.Cloud.Len(), s.Cloud.Channels()}, s.Cloud.Float32s()),
		})
	}
	for level, g := range s.Grids {
		res = append(res, npy.Entry{Name: GridName(level), Array: npy.Bool(g.Shape.Array(), g.Data)})
	}
	for level, f := range s.Flows {
		shape := append(f.Shape.Array(), 3)
		res = append(res, npy.Entry{Name: FlowName(level), Array: npy.Float32(shape, f.Float32s())})
	}
	return res
}

// Save writes the sample as a .npz archive.
func (s *Sample) Save(path string) error {
	return npy.SaveNPZ(path, s.Entries())
}

func toFloat32(values []float64) []float32 {
	res := make([]float32, len(values))
	for i, x := range values {
		res[i] = float32(x)
	}
	return res
}
