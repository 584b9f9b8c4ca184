package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpickle/stereovox/dataset"
	"github.com/unixpickle/stereovox/npy"
)

const testCalibration = `R_101: 1 0 0 0 1 0 0 0 1
T_101: 0 0 0
P_rect_101: 100 0 2 0 0 100 2 0 0 0 1 0
R_rect_101: 1 0 0 0 1 0 0 0 1
R_103: 1 0 0 0 1 0 0 0 1
T_103: -0.5 0 0
P_rect_103: 100 0 2 -50 0 100 2 0 0 0 1 0
R_rect_103: 1 0 0 0 1 0 0 0 1
`

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	calibPath := filepath.Join(dir, "calib.txt")
	require.NoError(t, os.WriteFile(calibPath, []byte(testCalibration), 0644))

	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetGray16(x, y, color.Gray16{Y: 1280})
		}
	}
	dispPath := filepath.Join(dir, "disp.png")
	f, err := os.Create(dispPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	settingsPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("occupied_gates: [null, null, null, null]\n"), 0644))

	outPath := filepath.Join(dir, "sample.npz")
	cmd := newCommand()
	cmd.SetArgs([]string{
		"--config", settingsPath,
		"--calib", calibPath,
		"--disparity", dispPath,
		"--format", "drivingstereo",
		"--baseline", "0.5",
		outPath,
	})
	require.NoError(t, cmd.Execute())

	arrays, err := npy.LoadNPZ(outPath)
	require.NoError(t, err)
	for _, name := range []string{"T_world_cam_101", "cam_101", "T_world_cam_103", "cam_103",
		"point_cloud"} {
		assert.Contains(t, arrays, name)
	}
	assert.Equal(t, []int{6, 3}, arrays["point_cloud"].Shape)
	cam, err := arrays["cam_101"].Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 100, 100, 2, 2}, cam)

	// Disparity 5 with a 0.5m baseline puts the points
	// 10m away, inside the finest grid.
	grid, err := arrays[dataset.GridName(3)].Uint8s()
	require.NoError(t, err)
	var count int
	for _, x := range grid {
		count += int(x)
	}
	assert.NotZero(t, count)
	assert.NotContains(t, arrays, dataset.FlowName(0))
}

func TestExportCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cmd := newCommand()
	cmd.SetArgs([]string{filepath.Join(dir, "out.npz")})
	assert.Error(t, cmd.Execute(), "missing --calib")

	cmd = newCommand()
	cmd.SetArgs([]string{"--calib", filepath.Join(dir, "missing.txt"), filepath.Join(dir, "out.npz")})
	assert.Error(t, cmd.Execute())
	_, err := os.Stat(filepath.Join(dir, "out.npz"))
	assert.True(t, os.IsNotExist(err))
}
