// Package h5 models Digital RF sample element types and wraps all HDF5
// library access behind a small facade. Everything that touches
// gonum.org/v1/hdf5 lives in this package.
package h5

import (
	"errors"
	"fmt"

	"gonum.org/v1/hdf5"
)

type Kind int

const (
	Int Kind = iota
	Uint
	Float
)

// Scalar is one storable scalar: a signed/unsigned integer or IEEE float
// of a given width and byte order.
type Scalar struct {
	Kind      Kind
	Bits      int
	BigEndian bool
}

// SampleType is the element type of a channel: a scalar, or a compound of
// two scalars named r and i for complex data.
type SampleType struct {
	Scalar    Scalar
	IsComplex bool
}

var ErrUnknownType = errors.New("unknown sample type")

// ParseScalar maps a type name (int8, uint16, float32, ...) to a Scalar.
func ParseScalar(name string, bigEndian bool) (Scalar, error) {
	s := Scalar{BigEndian: bigEndian}
	switch name {
	case "int8":
		s.Kind, s.Bits = Int, 8
	case "int16":
		s.Kind, s.Bits = Int, 16
	case "int32":
		s.Kind, s.Bits = Int, 32
	case "int64":
		s.Kind, s.Bits = Int, 64
	case "uint8":
		s.Kind, s.Bits = Uint, 8
	case "uint16":
		s.Kind, s.Bits = Uint, 16
	case "uint32":
		s.Kind, s.Bits = Uint, 32
	case "uint64":
		s.Kind, s.Bits = Uint, 64
	case "float32":
		s.Kind, s.Bits = Float, 32
	case "float64":
		s.Kind, s.Bits = Float, 64
	default:
		return Scalar{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return s, nil
}

func (s Scalar) String() string {
	kind := map[Kind]string{Int: "int", Uint: "uint", Float: "float"}[s.Kind]
	suffix := "le"
	if s.BigEndian {
		suffix = "be"
	}
	return fmt.Sprintf("%s%d%s", kind, s.Bits, suffix)
}

// Size returns the scalar width in bytes.
func (s Scalar) Size() int { return s.Bits / 8 }

// ElementSize returns the stored size of one sample element in bytes.
func (t SampleType) ElementSize() int {
	if t.IsComplex {
		return 2 * t.Scalar.Size()
	}
	return t.Scalar.Size()
}

// RowSize returns the stored size of one dataset row in bytes.
func (t SampleType) RowSize(numSubchannels int) int {
	return t.ElementSize() * numSubchannels
}

// HDF5 type-class codes as stored in the channel properties file,
// matching H5Tget_class values.
const (
	ClassInteger  = 0
	ClassFloat    = 1
	ClassCompound = 6
)

// Class returns the H5T class code of the element type.
func (t SampleType) Class() int32 {
	if t.IsComplex {
		return ClassCompound
	}
	if t.Scalar.Kind == Float {
		return ClassFloat
	}
	return ClassInteger
}

// Order returns the H5T byte-order code of the underlying scalar
// (0 little-endian, 1 big-endian).
func (t SampleType) Order() int32 {
	if t.Scalar.BigEndian {
		return 1
	}
	return 0
}

// datatype returns the HDF5 datatype of one scalar.
func (s Scalar) datatype() (*hdf5.Datatype, error) {
	switch s.Kind {
	case Int:
		switch s.Bits {
		case 8:
			return pick(s.BigEndian, hdf5.T_STD_I8BE, hdf5.T_STD_I8LE), nil
		case 16:
			return pick(s.BigEndian, hdf5.T_STD_I16BE, hdf5.T_STD_I16LE), nil
		case 32:
			return pick(s.BigEndian, hdf5.T_STD_I32BE, hdf5.T_STD_I32LE), nil
		case 64:
			return pick(s.BigEndian, hdf5.T_STD_I64BE, hdf5.T_STD_I64LE), nil
		}
	case Uint:
		switch s.Bits {
		case 8:
			return pick(s.BigEndian, hdf5.T_STD_U8BE, hdf5.T_STD_U8LE), nil
		case 16:
			return pick(s.BigEndian, hdf5.T_STD_U16BE, hdf5.T_STD_U16LE), nil
		case 32:
			return pick(s.BigEndian, hdf5.T_STD_U32BE, hdf5.T_STD_U32LE), nil
		case 64:
			return pick(s.BigEndian, hdf5.T_STD_U64BE, hdf5.T_STD_U64LE), nil
		}
	case Float:
		switch s.Bits {
		case 32:
			return pick(s.BigEndian, hdf5.T_IEEE_F32BE, hdf5.T_IEEE_F32LE), nil
		case 64:
			return pick(s.BigEndian, hdf5.T_IEEE_F64BE, hdf5.T_IEEE_F64LE), nil
		}
	}
	return nil, fmt.Errorf("%w: %+v", ErrUnknownType, s)
}

func pick(big bool, be, le *hdf5.Datatype) *hdf5.Datatype {
	if big {
		return be
	}
	return le
}

// Datatype builds the HDF5 element datatype: the scalar itself, or for
// complex data a compound of two scalars named r and i.
func (t SampleType) Datatype() (*hdf5.Datatype, error) {
	base, err := t.Scalar.datatype()
	if err != nil {
		return nil, err
	}
	if !t.IsComplex {
		return base, nil
	}
	cmp, err := hdf5.NewCompoundType(2 * t.Scalar.Size())
	if err != nil {
		return nil, err
	}
	if err := cmp.Insert("r", 0, base); err != nil {
		return nil, err
	}
	if err := cmp.Insert("i", t.Scalar.Size(), base); err != nil {
		return nil, err
	}
	return &cmp.Datatype, nil
}
