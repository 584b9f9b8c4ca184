// Package cloud stores point clouds, optionally carrying
// per-point scene flow, and clips them to a region of
// interest.
package cloud

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// ErrNoFlow is returned when an operation needs scene flow
// from a cloud that only stores positions.
var ErrNoFlow = errors.New("point cloud has no flow channels")

// A Cloud is an ordered list of points.
type Cloud struct {
	Points []model3d.Coord3D

	// Flow is nil for clouds without scene flow.
	// Otherwise, Flow[i] is the motion of Points[i].
	Flow []model3d.Coord3D
}

// New creates a cloud without flow.
func New(points []model3d.Coord3D) *Cloud {
	return &Cloud{Points: points}
}

// NewWithFlow creates a cloud with one flow vector per
// point.
func NewWithFlow(points, flow []model3d.Coord3D) (*Cloud, error) {
	if len(points) != len(flow) {
		return nil, errors.Errorf("new cloud: %d points but %d flow vectors",
			len(points), len(flow))
	}
	return &Cloud{Points: points, Flow: flow}, nil
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	return len(c.Points)
}

// HasFlow checks if the cloud carries flow channels.
func (c *Cloud) HasFlow() bool {
	return c.Flow != nil
}

// Channels returns 6 for clouds with flow and 3 otherwise.
func (c *Cloud) Channels() int {
	if c.HasFlow() {
		return 6
	}
	return 3
}

// Float32s flattens the cloud into a row-per-point array of
// Channels() values.
func (c *Cloud) Float32s() []float32 {
	ch := c.Channels()
	res := make([]float32, 0, len(c.Points)*ch)
	for i, p := range c.Points {
		res = append(res, float32(p.X), float32(p.Y), float32(p.Z))
		if c.HasFlow() {
			f := c.Flow[i]
			res = append(res, float32(f.X), float32(f.Y), float32(f.Z))
		}
	}
	return res
}

// ReadRaw decodes a cloud stored as consecutive
// little-endian float32 values, channels per point.
//
// Channels must be 3 (xyz) or 6 (xyz followed by flow).
func ReadRaw(r io.Reader, channels int) (*Cloud, error) {
	if channels != 3 && channels != 6 {
		return nil, errors.Errorf("read cloud: unsupported channel count %d", channels)
	}
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, errors.Wrap(err, "read cloud")
	}
	stride := channels * 4
	if len(data)%stride != 0 {
		return nil, errors.Errorf("read cloud: %d bytes is not a multiple of %d", len(data), stride)
	}
	n := len(data) / stride
	value := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	res := &Cloud{Points: make([]model3d.Coord3D, n)}
	if channels == 6 {
		res.Flow = make([]model3d.Coord3D, n)
	}
	for i := 0; i < n; i++ {
		base := i * channels
		res.Points[i] = model3d.XYZ(value(base), value(base+1), value(base+2))
		if channels == 6 {
			res.Flow[i] = model3d.XYZ(value(base+3), value(base+4), value(base+5))
		}
	}
	return res, nil
}

// WriteRaw encodes the cloud in the format read by ReadRaw.
func (c *Cloud) WriteRaw(w io.Writer) error {
	values := c.Float32s()
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return errors.Wrap(err, "write cloud")
}
