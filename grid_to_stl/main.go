// Command grid_to_stl converts one level of an exported
// voxel archive into a triangle mesh and saves it as an
// STL file.
//
// The grid is placed in the target frame using the ROI and
// voxel sizes of the settings it was exported with.
package main

import (
	"github.com/spf13/cobra"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"

	"github.com/unixpickle/stereovox/config"
	"github.com/unixpickle/stereovox/logging"
)

func main() {
	var configPath string
	var level int
	var threshold float64
	var outputPath string

	cmd := &cobra.Command{
		Use:   "grid_to_stl [flags] <sample.npz>",
		Short: "Mesh one level of an exported voxel grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewLogger("grid_to_stl", false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			conf := config.Default()
			if configPath != "" {
				if conf, err = config.Load(configPath); err != nil {
					return err
				}
			}
			voxels, err := conf.VoxelConfig()
			if err != nil {
				return err
			}
			grid, err := ReadVoxelGrid(args[0], voxels, level)
			if err != nil {
				return essentials.AddCtx(args[0], err)
			}
			grid.Threshold = threshold
			if grid.Grid.Count() == 0 {
				logger.Warnw("grid is empty", "level", level)
			}

			mesh := model3d.MarchingCubesSearch(grid, grid.Size/2, 8)
			logger.Infow("meshed grid", "level", level, "occupied", grid.Grid.Count(),
				"triangles", len(mesh.TriangleSlice()))
			return mesh.SaveGroupedSTL(outputPath)
		},
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML settings the archive was exported with")
	f.IntVar(&level, "level", 3, "grid level to mesh")
	f.Float64Var(&threshold, "threshold", 0.5, "minimum value for containment")
	f.StringVar(&outputPath, "output", "output.stl", "output STL file")

	essentials.Must(cmd.Execute())
}
