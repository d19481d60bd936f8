package h5

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// Attr is one metadata attribute. Supported value types: uint64, int64,
// int32, float64, string.
type Attr struct {
	Name  string
	Value interface{}
}

// WriteAttrs attaches attributes to a dataset. The binding creates
// attributes on datasets, so channel metadata rides on each file's primary
// dataset.
func WriteAttrs(ds *hdf5.Dataset, attrs []Attr) error {
	for _, attr := range attrs {
		if err := writeAttr(ds, attr); err != nil {
			return fmt.Errorf("attribute %s: %w", attr.Name, err)
		}
	}
	return nil
}

func writeAttr(ds *hdf5.Dataset, attr Attr) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{1}, nil)
	if err != nil {
		return err
	}
	defer space.Close()

	var dtype *hdf5.Datatype
	switch attr.Value.(type) {
	case uint64:
		dtype = hdf5.T_NATIVE_UINT64
	case int64:
		dtype = hdf5.T_NATIVE_INT64
	case int32:
		dtype = hdf5.T_NATIVE_INT32
	case float64:
		dtype = hdf5.T_NATIVE_DOUBLE
	case string:
		dtype, err = hdf5.NewDatatypeFromValue("")
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported attribute type %T", attr.Value)
	}

	a, err := ds.CreateAttribute(attr.Name, dtype, space)
	if err != nil {
		return err
	}
	defer a.Close()

	switch v := attr.Value.(type) {
	case uint64:
		return a.Write(&v, dtype)
	case int64:
		return a.Write(&v, dtype)
	case int32:
		return a.Write(&v, dtype)
	case float64:
		return a.Write(&v, dtype)
	case string:
		return a.Write(&v, dtype)
	}
	return nil
}

// ReadUint64Attr reads one uint64 attribute from a dataset.
func ReadUint64Attr(ds *hdf5.Dataset, name string) (uint64, error) {
	a, err := ds.OpenAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	defer a.Close()
	var v uint64
	if err := a.Read(&v, hdf5.T_NATIVE_UINT64); err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return v, nil
}

// ReadInt32Attr reads one int32 attribute from a dataset.
func ReadInt32Attr(ds *hdf5.Dataset, name string) (int32, error) {
	a, err := ds.OpenAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	defer a.Close()
	var v int32
	if err := a.Read(&v, hdf5.T_NATIVE_INT32); err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return v, nil
}

// ReadFloat64Attr reads one float64 attribute from a dataset.
func ReadFloat64Attr(ds *hdf5.Dataset, name string) (float64, error) {
	a, err := ds.OpenAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	defer a.Close()
	var v float64
	if err := a.Read(&v, hdf5.T_NATIVE_DOUBLE); err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return v, nil
}

// ReadStringAttr reads one string attribute from a dataset.
func ReadStringAttr(ds *hdf5.Dataset, name string) (string, error) {
	a, err := ds.OpenAttribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %s: %w", name, err)
	}
	defer a.Close()
	dtype, err := hdf5.NewDatatypeFromValue("")
	if err != nil {
		return "", err
	}
	var v string
	if err := a.Read(&v, dtype); err != nil {
		return "", fmt.Errorf("attribute %s: %w", name, err)
	}
	return v, nil
}
