// Package npy reads and writes numpy .npy arrays and .npz
// archives of them.
//
// Arrays are written with a fixed version 1.0 header and
// read back with npyio, which parses any header numpy
// produces.
package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
)

const (
	magic = "\x93NUMPY"

	// DescrBool is a numpy boolean, one byte per value.
	DescrBool = "|b1"
	// DescrUint8 is a numpy uint8.
	DescrUint8 = "|u1"
	// DescrFloat32 is a little-endian float32.
	DescrFloat32 = "<f4"
	// DescrFloat64 is a little-endian float64.
	DescrFloat64 = "<f8"
)

var itemSizes = map[string]int{
	DescrBool:    1,
	DescrUint8:   1,
	DescrFloat32: 4,
	DescrFloat64: 8,
}

// An Array is a C-ordered numpy array.
type Array struct {
	Descr string
	Shape []int
	Data  []byte
}

// Bool creates a boolean array from 0/1 bytes.
func Bool(shape []int, data []uint8) *Array {
	return &Array{Descr: DescrBool, Shape: shape, Data: data}
}

// Float32 creates a float32 array.
func Float32(shape []int, values []float32) *Array {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return &Array{Descr: DescrFloat32, Shape: shape, Data: data}
}

// Len gets the number of elements implied by the shape.
func (a *Array) Len() int {
	n := 1
	for _, x := range a.Shape {
		n *= x
	}
	return n
}

// Float64s converts every element to a float64.
func (a *Array) Float64s() ([]float64, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	res := make([]float64, a.Len())
	for i := range res {
		switch a.Descr {
		case DescrBool, DescrUint8:
			res[i] = float64(a.Data[i])
		case DescrFloat32:
			res[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(a.Data[i*4:])))
		case DescrFloat64:
			res[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.Data[i*8:]))
		}
	}
	return res, nil
}

// Uint8s converts every element to 0 or 1, depending on
// whether it is non-zero.
func (a *Array) Uint8s() ([]uint8, error) {
	values, err := a.Float64s()
	if err != nil {
		return nil, err
	}
	res := make([]uint8, len(values))
	for i, x := range values {
		if x != 0 {
			res[i] = 1
		}
	}
	return res, nil
}

// Encode serializes the array as a version 1.0 .npy file.
func (a *Array) Encode() ([]byte, error) {
	if err := a.check(); err != nil {
		return nil, errors.Wrap(err, "encode npy")
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		a.Descr, shapeTuple(a.Shape))

	// Pad so the data starts on a 64-byte boundary.
	prefix := len(magic) + 4
	for (prefix+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(a.Data)
	return buf.Bytes(), nil
}

// Decode parses a .npy file.
func Decode(r io.Reader) (*Array, error) {
	reader, err := npyio.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode npy")
	}
	descr := reader.Header.Descr
	if descr.Fortran {
		return nil, errors.New("decode npy: fortran order is not supported")
	}
	res := &Array{Descr: descr.Type, Shape: append([]int{}, descr.Shape...)}
	if err := res.checkShape(); err != nil {
		return nil, errors.Wrap(err, "decode npy")
	}
	n := res.Len()
	switch descr.Type {
	case DescrBool:
		values := make([]bool, n)
		err = reader.Read(&values)
		res.Data = make([]byte, n)
		for i, x := range values {
			if x {
				res.Data[i] = 1
			}
		}
	case DescrUint8:
		res.Data = make([]uint8, n)
		err = reader.Read(&res.Data)
	case DescrFloat32:
		values := make([]float32, n)
		err = reader.Read(&values)
		res.Data = Float32(res.Shape, values).Data
	case DescrFloat64:
		values := make([]float64, n)
		err = reader.Read(&values)
		res.Data = make([]byte, n*8)
		for i, x := range values {
			binary.LittleEndian.PutUint64(res.Data[i*8:], math.Float64bits(x))
		}
	default:
		return nil, errors.Errorf("decode npy: unsupported dtype %q", descr.Type)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode npy")
	}
	return res, nil
}

// HasShape checks if the array has exactly the given
// dimensions, in order.
func (a *Array) HasShape(shape []int) bool {
	if len(a.Shape) != len(shape) {
		return false
	}
	for i, x := range a.Shape {
		if x != shape[i] {
			return false
		}
	}
	return true
}

func (a *Array) checkShape() error {
	for _, x := range a.Shape {
		if x < 0 {
			return errors.Errorf("negative dimension in shape %v", a.Shape)
		}
	}
	return nil
}

func (a *Array) check() error {
	if err := a.checkShape(); err != nil {
		return err
	}
	itemSize, ok := itemSizes[a.Descr]
	if !ok {
		return errors.Errorf("unsupported dtype %q", a.Descr)
	}
	if len(a.Data) != itemSize*a.Len() {
		return errors.Errorf("%d bytes of data for shape %v", len(a.Data), a.Shape)
	}
	return nil
}

func shapeTuple(shape []int) string {
	parts := make([]string, len(shape))
	for i, x := range shape {
		parts[i] = strconv.Itoa(x)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
