// Command export_voxels computes the voxel ground truth of
// a stereo sample and saves it as a .npz archive.
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/unixpickle/essentials"

	"github.com/unixpickle/stereovox/config"
	"github.com/unixpickle/stereovox/dataset"
	"github.com/unixpickle/stereovox/logging"
)

type exportFlags struct {
	configPath string
	files      dataset.Files
	flow       bool
	verbose    bool

	// Overrides of the settings file, applied when set.
	calibFormat string
	baseline    float64
	noGround    bool
}

func main() {
	essentials.Must(newCommand().Execute())
}

func newCommand() *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export_voxels [flags] <output.npz>",
		Short: "Export multi-level voxel ground truth for one stereo sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			return exportSample(&flags, args[0], func(conf *config.Config) {
				if f.Changed("format") {
					conf.Calibration = flags.calibFormat
				}
				if f.Changed("baseline") {
					conf.Baseline = flags.baseline
				}
				if flags.noGround {
					conf.FilterGround = false
				}
			})
		},
		SilenceUsage: true,
	}
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML settings file (defaults to KITTI settings)")
	f.StringVar(&flags.files.Calibration, "calib", "", "calibration file")
	f.StringVar(&flags.files.Disparity, "disparity", "", "16-bit disparity PNG")
	f.StringVar(&flags.files.Cloud, "cloud", "", "raw float32 point cloud in the target frame")
	f.IntVar(&flags.files.CloudChannels, "cloud-channels", 3, "values per point in --cloud (3 or 6)")
	f.StringVar(&flags.files.StoredGroundTruth, "stored-gt", "", "precomputed voxel grid archive")
	f.BoolVar(&flags.flow, "flow", false, "compute per-voxel scene flow (needs a 6-channel cloud)")
	f.StringVar(&flags.calibFormat, "format", "kitti", "calibration format (kitti or drivingstereo)")
	f.Float64Var(&flags.baseline, "baseline", 0.54, "stereo baseline in meters")
	f.BoolVar(&flags.noGround, "no-ground-filter", false, "keep points below the ground height")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log every stage")
	cmd.MarkFlagRequired("calib")
	cmd.MarkFlagsMutuallyExclusive("disparity", "cloud")
	return cmd
}

// exportSample loads a sample and writes its archive.
func exportSample(flags *exportFlags, outPath string, override func(*config.Config)) error {
	logger, err := logging.NewLogger("export_voxels", flags.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	conf := config.Default()
	if flags.configPath != "" {
		conf, err = config.Load(flags.configPath)
		if err != nil {
			return err
		}
	}
	override(conf)
	loader, err := dataset.NewLoader(conf, logger)
	if err != nil {
		return err
	}

	logger.Infow("converting sample", "calibration", flags.files.Calibration)
	start := time.Now()
	sample, err := loader.Load(flags.files, flags.flow)
	if err != nil {
		return essentials.AddCtx(flags.files.Calibration, err)
	}
	if !sample.HasGroundTruth() {
		logger.Warnw("sample has no depth source; exporting cameras only")
	} else {
		counts := make([]int, len(sample.Grids))
		for i, g := range sample.Grids {
			counts[i] = g.Count()
		}
		logger.Infow("computed voxel grids", "points", sample.Cloud.Len(), "occupied", counts,
			"elapsed", time.Since(start))
	}

	if err := sample.Save(outPath); err != nil {
		os.Remove(outPath)
		return err
	}
	logger.Infow("saved sample", "path", outPath)
	return nil
}
