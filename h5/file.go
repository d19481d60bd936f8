package h5

import (
	"fmt"
	"os"

	"gonum.org/v1/hdf5"
)

// File wraps one HDF5 file handle.
type File struct {
	f    *hdf5.File
	path string
}

var ErrExists = os.ErrExist

// CreateExclusive creates a new HDF5 file, failing if the path already
// exists. The engine never clobbers.
func CreateExclusive(path string) (*File, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_EXCL)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return &File{f: f, path: path}, nil
}

// OpenReadOnly opens an existing HDF5 file for reading.
func OpenReadOnly(path string) (*File, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &File{f: f, path: path}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

// CreateMatrix creates a (rows, cols) dataset of the given element type
// and fills it from raw, a row-major byte slab already in the element
// type's storage layout. The bytes pass through unconverted: H5Dwrite
// runs with the dataset's own datatype as the memory type.
func (f *File) CreateMatrix(name string, dtype *hdf5.Datatype, rows, cols uint64, raw []byte) (*hdf5.Dataset, error) {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(rows), uint(cols)}, nil)
	if err != nil {
		return nil, fmt.Errorf("dataspace for %s: %w", name, err)
	}
	defer space.Close()

	ds, err := f.f.CreateDataset(name, dtype, space)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	if rows > 0 {
		if err := ds.Write(&raw); err != nil {
			ds.Close()
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return ds, nil
}

// CreateUint64Matrix creates a (rows, cols) uint64 dataset from flat
// row-major values.
func (f *File) CreateUint64Matrix(name string, rows, cols uint64, values []uint64) (*hdf5.Dataset, error) {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(rows), uint(cols)}, nil)
	if err != nil {
		return nil, fmt.Errorf("dataspace for %s: %w", name, err)
	}
	defer space.Close()

	ds, err := f.f.CreateDataset(name, hdf5.T_STD_U64LE, space)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	if rows > 0 {
		if err := ds.Write(&values); err != nil {
			ds.Close()
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return ds, nil
}

// CreateScalarDataset creates a one-element uint64 dataset. The channel
// properties file uses one as its attribute anchor.
func (f *File) CreateScalarDataset(name string, value uint64) (*hdf5.Dataset, error) {
	return f.CreateUint64Matrix(name, 1, 1, []uint64{value})
}

// OpenDataset opens an existing dataset.
func (f *File) OpenDataset(name string) (*hdf5.Dataset, error) {
	return f.f.OpenDataset(name)
}

// Dims returns a dataset's extent.
func Dims(ds *hdf5.Dataset) ([]uint, error) {
	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	return dims, err
}

// ReadRaw reads a dataset's full contents as raw bytes in its storage
// layout (no type conversion, as with CreateMatrix).
func ReadRaw(ds *hdf5.Dataset, elementSize int) ([]byte, error) {
	dims, err := Dims(ds)
	if err != nil {
		return nil, err
	}
	total := uint(1)
	for _, d := range dims {
		total *= d
	}
	buf := make([]byte, int(total)*elementSize)
	if total == 0 {
		return buf, nil
	}
	if err := ds.Read(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint64 reads a uint64 dataset's full contents flattened row-major.
func ReadUint64(ds *hdf5.Dataset) ([]uint64, error) {
	dims, err := Dims(ds)
	if err != nil {
		return nil, err
	}
	total := uint(1)
	for _, d := range dims {
		total *= d
	}
	buf := make([]uint64, total)
	if total == 0 {
		return buf, nil
	}
	if err := ds.Read(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}
