// Package calib parses stereo calibration records into
// rectified camera poses and pinhole intrinsics.
//
// Data sources name their calibration entries
// differently, so parsing goes through a Provider chosen
// by name.
package calib

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/unixpickle/stereovox/camera"
)

var (
	// ErrMissingKey is returned when a calibration record
	// lacks a required entry.
	ErrMissingKey = errors.New("missing calibration key")

	// ErrMalformed is returned when an entry cannot be
	// read as the matrix it names.
	ErrMalformed = errors.New("malformed calibration record")
)

// Camera is the calibration of one rectified camera.
type Camera struct {
	// Pose maps target-frame points into the rectified
	// camera frame.
	Pose       *camera.Pose
	Intrinsics camera.Intrinsics
}

// Projector creates a projector for the camera.
func (c *Camera) Projector() (*camera.Projector, error) {
	return camera.NewProjector(c.Intrinsics, c.Pose)
}

// Calibration holds both cameras of a stereo rig.
// Primary is the reference camera used for projection.
type Calibration struct {
	Primary   Camera
	Secondary Camera
}

// A Provider parses the calibration format of one data
// source.
type Provider interface {
	Name() string
	Parse(r io.Reader) (*Calibration, error)
}

var providers = map[string]Provider{
	KITTI.Name():         KITTI,
	DrivingStereo.Name(): DrivingStereo,
}

// Lookup finds a built-in provider by name.
func Lookup(name string) (Provider, error) {
	p, ok := providers[name]
	if !ok {
		return nil, errors.Errorf("unknown calibration provider %q (known: %v)", name, Names())
	}
	return p, nil
}

// Names lists the built-in providers, sorted.
func Names() []string {
	var res []string
	for name := range providers {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// ParseFile reads one calibration record from a file.
func ParseFile(p Provider, path string) (*Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "parse calibration")
	}
	defer f.Close()
	res, err := p.Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return res, nil
}
