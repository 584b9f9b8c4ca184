package voxel

import "fmt"

// A BuildError reports which level of a grid computation
// failed, and for how large a cloud.
type BuildError struct {
	Level     int
	NumPoints int
	Err       error
}

func (b *BuildError) Error() string {
	return fmt.Sprintf("voxel grid computation failed at level %d (%d points): %s",
		b.Level, b.NumPoints, b.Err)
}

// Unwrap gets the original error.
func (b *BuildError) Unwrap() error {
	return b.Err
}

// Cause gets the original error for github.com/pkg/errors.
func (b *BuildError) Cause() error {
	return b.Err
}
