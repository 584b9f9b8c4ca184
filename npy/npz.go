package npy

import (
	"archive/zip"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// An Entry is a named array inside an archive.
// The name does not include the .npy extension.
type Entry struct {
	Name  string
	Array *Array
}

// WriteNPZ writes entries as an uncompressed .npz archive.
func WriteNPZ(w io.Writer, entries []Entry) error {
	zipWriter := zip.NewWriter(w)
	for _, e := range entries {
		fileWriter, err := zipWriter.Create(e.Name + ".npy")
		if err != nil {
			return errors.Wrap(err, "write npz")
		}
		data, err := e.Array.Encode()
		if err != nil {
			return errors.Wrap(err, "write npz: "+e.Name)
		}
		if _, err := fileWriter.Write(data); err != nil {
			return errors.Wrap(err, "write npz")
		}
	}
	return errors.Wrap(zipWriter.Close(), "write npz")
}

// SaveNPZ writes entries to a file.
func SaveNPZ(path string, entries []Entry) error {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save npz")
	}
	if err := WriteNPZ(w, entries); err != nil {
		w.Close()
		return err
	}
	return errors.Wrap(w.Close(), "save npz")
}

// ReadNPZ decodes every .npy member of an archive, keyed
// by name without extension.
func ReadNPZ(r io.ReaderAt, size int64) (map[string]*Array, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "read npz")
	}
	res := map[string]*Array{}
	for _, f := range zipReader.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		arr, err := readMember(f)
		if err != nil {
			return nil, errors.Wrap(err, "read npz: "+f.Name)
		}
		res[strings.TrimSuffix(f.Name, ".npy")] = arr
	}
	return res, nil
}

// LoadNPZ reads an archive from a file.
func LoadNPZ(path string) (map[string]*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load npz")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "load npz")
	}
	return ReadNPZ(f, info.Size())
}

func readMember(f *zip.File) (*Array, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}
