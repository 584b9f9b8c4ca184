package calib

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/unixpickle/stereovox/camera"
)

// CameraKeys names the entries describing one camera,
// without their trailing colons.
type CameraKeys struct {
	// Rotation is a row-major 3x3 extrinsic rotation.
	Rotation string

	// Translation is the 3-vector extrinsic translation.
	Translation string

	// Projection is the row-major 3x4 rectified projection.
	Projection string

	// Rectification is the row-major 3x3 rectifying
	// rotation.
	Rectification string
}

// A KeyedProvider parses "key: v1 v2 ..." records, one
// entry per line, such as KITTI's calib_cam_to_cam files.
//
// Unknown keys are ignored. If a key repeats, the last
// entry wins.
type KeyedProvider struct {
	ProviderName string
	Primary      CameraKeys
	Secondary    CameraKeys
}

// KITTI reads KITTI scene-flow calibration files.
var KITTI = &KeyedProvider{
	ProviderName: "kitti",
	Primary: CameraKeys{
		Rotation:      "R_00",
		Translation:   "T_00",
		Projection:    "P_rect_00",
		Rectification: "R_rect_00",
	},
	Secondary: CameraKeys{
		Rotation:      "R_01",
		Translation:   "T_01",
		Projection:    "P_rect_03",
		Rectification: "R_rect_03",
	},
}

// DrivingStereo reads DrivingStereo calibration files,
// which number their cameras 101 and 103.
var DrivingStereo = &KeyedProvider{
	ProviderName: "drivingstereo",
	Primary: CameraKeys{
		Rotation:      "R_101",
		Translation:   "T_101",
		Projection:    "P_rect_101",
		Rectification: "R_rect_101",
	},
	Secondary: CameraKeys{
		Rotation:      "R_103",
		Translation:   "T_103",
		Projection:    "P_rect_103",
		Rectification: "R_rect_103",
	},
}

// Name returns the provider name used in configuration.
func (k *KeyedProvider) Name() string {
	return k.ProviderName
}

// Parse reads a whole record.
func (k *KeyedProvider) Parse(r io.Reader) (*Calibration, error) {
	sizes := map[string]int{}
	for _, keys := range []CameraKeys{k.Primary, k.Secondary} {
		sizes[keys.Rotation] = 9
		sizes[keys.Translation] = 3
		sizes[keys.Projection] = 12
		sizes[keys.Rectification] = 9
	}

	entries := map[string][]float64{}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		size, ok := sizes[key]
		if !ok {
			continue
		}
		if len(fields)-1 != size {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %s has %d values, expected %d",
				lineNum, key, len(fields)-1, size)
		}
		values := make([]float64, size)
		for i, field := range fields[1:] {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformed, "line %d: %s: %s", lineNum, key, err)
			}
			values[i] = x
		}
		entries[key] = values
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "parse calibration")
	}

	primary, err := cameraFromEntries(entries, k.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := cameraFromEntries(entries, k.Secondary)
	if err != nil {
		return nil, err
	}
	return &Calibration{Primary: *primary, Secondary: *secondary}, nil
}

// cameraFromEntries composes the rectified pose
// R_rect @ [R | T] and reads the intrinsics from P_rect.
func cameraFromEntries(entries map[string][]float64, keys CameraKeys) (*Camera, error) {
	for _, key := range []string{keys.Rotation, keys.Translation, keys.Projection,
		keys.Rectification} {
		if _, ok := entries[key]; !ok {
			return nil, errors.Wrap(ErrMissingKey, key)
		}
	}
	var rot, rect [9]float64
	var trans [3]float64
	copy(rot[:], entries[keys.Rotation])
	copy(rect[:], entries[keys.Rectification])
	copy(trans[:], entries[keys.Translation])

	extrinsic := camera.NewPose(rot, trans)
	pose := camera.NewRotationPose(rect).Mul(extrinsic)

	proj := entries[keys.Projection]
	return &Camera{
		Pose: pose,
		Intrinsics: camera.Intrinsics{
			Fu: proj[0],
			Fv: proj[5],
			Cu: proj[2],
			Cv: proj[6],
		},
	}, nil
}
