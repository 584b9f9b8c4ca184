// Package config loads the process-wide voxelization
// settings.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/unixpickle/stereovox/calib"
	"github.com/unixpickle/stereovox/cloud"
	"github.com/unixpickle/stereovox/voxel"
)

// Config holds every setting shared between samples.
type Config struct {
	// ROI is [min_x, max_x, min_y, max_y, min_z, max_z].
	ROI []float64 `yaml:"roi"`

	// VoxelSizes lists the voxel edge length of each level,
	// coarsest first.
	VoxelSizes []float64 `yaml:"voxel_sizes"`

	// OccupiedGates lists the minimum point count of an
	// occupied voxel per level. Null entries mean 1.
	OccupiedGates []*int `yaml:"occupied_gates"`

	FilterGround bool    `yaml:"filter_ground"`
	GroundY      float64 `yaml:"ground_y"`

	// Baseline is the stereo baseline in meters.
	Baseline float64 `yaml:"baseline"`

	// Calibration names the calibration file format.
	Calibration string `yaml:"calibration"`

	FlowRelTol float64 `yaml:"flow_rtol"`
}

// Default returns the settings used for KITTI.
func Default() *Config {
	gates := []int{20, 20, 10, 5}
	return &Config{
		ROI:           []float64{-9, 9, -3, 3, 0, 30},
		VoxelSizes:    []float64{3, 1.5, 0.75, 0.375},
		OccupiedGates: []*int{&gates[0], &gates[1], &gates[2], &gates[3]},
		FilterGround:  true,
		GroundY:       1.5,
		Baseline:      0.54,
		Calibration:   calib.KITTI.Name(),
		FlowRelTol:    voxel.DefaultRelTol,
	}
}

// Parse reads YAML settings on top of Default().
// Unknown fields are rejected.
func Parse(r io.Reader) (*Config, error) {
	res := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(res); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Load reads a YAML settings file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks every setting, including the voxel grid
// layout.
func (c *Config) Validate() error {
	if _, err := c.VoxelConfig(); err != nil {
		return err
	}
	if _, err := calib.Lookup(c.Calibration); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.Baseline <= 0 {
		return errors.Errorf("config: baseline %v must be positive", c.Baseline)
	}
	if c.FlowRelTol < 0 || c.FlowRelTol >= 1 {
		return errors.Errorf("config: flow_rtol %v must be in [0, 1)", c.FlowRelTol)
	}
	return nil
}

// Gates resolves null occupied gates to 1.
func (c *Config) Gates() []int {
	if c.OccupiedGates == nil {
		return nil
	}
	res := make([]int, len(c.OccupiedGates))
	for i, g := range c.OccupiedGates {
		res[i] = 1
		if g != nil {
			res[i] = *g
		}
	}
	return res
}

// VoxelConfig creates the validated grid layout.
func (c *Config) VoxelConfig() (*voxel.Config, error) {
	roi, err := cloud.NewROI(c.ROI)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	res, err := voxel.NewConfig(roi, c.VoxelSizes, c.Gates())
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return res, nil
}

// Filter creates the cloud filter.
func (c *Config) Filter() (*cloud.Filter, error) {
	roi, err := cloud.NewROI(c.ROI)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return &cloud.Filter{ROI: roi, FilterGround: c.FilterGround, GroundY: c.GroundY}, nil
}

// Provider looks up the calibration provider.
func (c *Config) Provider() (calib.Provider, error) {
	return calib.Lookup(c.Calibration)
}
