package npy

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, a *Array) []byte {
	data, err := a.Encode()
	require.NoError(t, err)
	return data
}

func TestEncodeHeader(t *testing.T) {
	data := encode(t, Bool([]int{2, 1, 3}, []uint8{1, 0, 0, 1, 1, 0}))
	require.True(t, bytes.HasPrefix(data, []byte("\x93NUMPY\x01\x00")))
	headerLen := int(binary.LittleEndian.Uint16(data[8:]))
	assert.Equal(t, 0, (10+headerLen)%64)
	header := string(data[10 : 10+headerLen])
	assert.True(t, strings.HasPrefix(header,
		"{'descr': '|b1', 'fortran_order': False, 'shape': (2, 1, 3), }"))
	assert.True(t, strings.HasSuffix(header, "\n"))
	assert.Equal(t, []byte{1, 0, 0, 1, 1, 0}, data[10+headerLen:])

	vector := encode(t, Float32([]int{12}, make([]float32, 12)))
	assert.Contains(t, string(vector), "'shape': (12,)")
}

func TestDecode(t *testing.T) {
	arr := Float32([]int{2, 3}, []float32{1, -2, 0.5, 0, 3, 1e-3})
	decoded, err := Decode(bytes.NewReader(encode(t, arr)))
	require.NoError(t, err)
	assert.Equal(t, arr, decoded)

	values, err := decoded.Float64s()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -2, 0.5, 0, 3, 1e-3}, values, 1e-7)

	bits, err := decoded.Uint8s()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 1, 0, 1, 1}, bits)

	grid := Bool([]int{2, 2, 1}, []uint8{0, 1, 1, 0})
	decoded, err = Decode(bytes.NewReader(encode(t, grid)))
	require.NoError(t, err)
	assert.Equal(t, grid, decoded)
	assert.True(t, decoded.HasShape([]int{2, 2, 1}))
	assert.False(t, decoded.HasShape([]int{1, 2, 2}))
	assert.False(t, decoded.HasShape([]int{4}))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("NUMPY")))
	assert.Error(t, err)

	truncated := encode(t, Bool([]int{4}, []uint8{1, 0, 1, 1}))
	_, err = Decode(bytes.NewReader(truncated[:len(truncated)-1]))
	assert.Error(t, err)

	fortran := strings.Replace(string(encode(t, Bool([]int{1}, []uint8{1}))),
		"'fortran_order': False", "'fortran_order': True ", 1)
	_, err = Decode(strings.NewReader(fortran))
	assert.Error(t, err)

	// Replace the dtype of a valid file with one that is
	// not supported.
	complexData := strings.Replace(string(encode(t, Float32([]int{2}, []float32{1, 2}))),
		"'<f4'", "'<c8'", 1)
	_, err = Decode(strings.NewReader(complexData))
	assert.Error(t, err)

	// Same header length, so only the shape is wrong.
	negative := strings.Replace(string(encode(t, Bool([]int{1, 1}, []uint8{1}))),
		"(1, 1), }  ", "(-1, -1), }", 1)
	_, err = Decode(strings.NewReader(negative))
	assert.Error(t, err)
}

func TestEncodeErrors(t *testing.T) {
	_, err := (&Array{Descr: DescrBool, Shape: []int{-1, -1}, Data: []byte{1}}).Encode()
	assert.Error(t, err)

	_, err = Bool([]int{4}, []uint8{1, 0, 1}).Encode()
	assert.Error(t, err)

	_, err = (&Array{Descr: "<c16", Shape: []int{1}, Data: make([]byte, 16)}).Encode()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.npz")
	err = SaveNPZ(path, []Entry{{Name: "bad", Array: Bool([]int{-2, -1}, []uint8{1, 1})}})
	assert.Error(t, err)
}

func TestNPZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.npz")
	entries := []Entry{
		{Name: "voxel_grid_0", Array: Bool([]int{1, 2, 2}, []uint8{0, 1, 1, 0})},
		{Name: "cam_101", Array: Float32([]int{6}, []float32{1224, 370, 721.5, 721.5, 609.6, 172.9})},
	}
	require.NoError(t, SaveNPZ(path, entries))

	arrays, err := LoadNPZ(path)
	require.NoError(t, err)
	require.Len(t, arrays, 2)
	assert.Equal(t, entries[0].Array, arrays["voxel_grid_0"])
	assert.Equal(t, entries[1].Array, arrays["cam_101"])

	_, err = LoadNPZ(filepath.Join(t.TempDir(), "missing.npz"))
	assert.Error(t, err)

	_, err = ReadNPZ(bytes.NewReader([]byte("not a zip")), 9)
	assert.Error(t, err)
}
