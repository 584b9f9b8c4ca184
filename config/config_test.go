package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpickle/stereovox/voxel"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, []int{20, 20, 10, 5}, c.Gates())

	vc, err := c.VoxelConfig()
	require.NoError(t, err)
	assert.Equal(t, voxel.Shape{X: 48, Y: 16, Z: 80}, vc.Shape(3))

	f, err := c.Filter()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f.Bounds().Max.Y)

	p, err := c.Provider()
	require.NoError(t, err)
	assert.Equal(t, "kitti", p.Name())
}

func TestParseOverrides(t *testing.T) {
	c, err := Parse(strings.NewReader(`
roi: [-8, 10, -3, 3, 0, 30]
occupied_gates: [null, 2, null, 4]
calibration: drivingstereo
filter_ground: false
`))
	require.NoError(t, err)
	assert.Equal(t, []float64{-8, 10, -3, 3, 0, 30}, c.ROI)
	assert.Equal(t, []int{1, 2, 1, 4}, c.Gates())
	assert.Equal(t, "drivingstereo", c.Calibration)
	assert.False(t, c.FilterGround)

	// Unset fields keep their defaults.
	assert.Equal(t, []float64{3, 1.5, 0.75, 0.375}, c.VoxelSizes)
	assert.Equal(t, 0.54, c.Baseline)

	empty, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParseRejects(t *testing.T) {
	for _, doc := range []string{
		"roi: [-9, 9, -3, 3, 0, 29]\n",
		"voxel_sizes: [3, 1.5, 0.75]\n",
		"occupied_gates: [1, 0, 1, 1]\n",
		"calibration: middlebury\n",
		"baseline: 0\n",
		"flow_rtol: 1.5\n",
		"voxel_size: [1]\n",
		"roi: [1, 2, 3]\n",
	} {
		_, err := Parse(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitti.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ground_y: 1.0\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.GroundY)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
