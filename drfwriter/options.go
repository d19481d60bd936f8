package drfwriter

import (
	"fmt"
	"io"

	"github.com/alexchartier/digital-rf/h5"
)

const (
	// Version is the on-disk format version stamped into every file.
	Version = "2.5.4"

	epoch           = "1970-01-01T00:00:00Z"
	timeDescription = "All times in this format are in samples since the " +
		"epoch given in the epoch attribute, at the exact rational rate " +
		"sample_rate_numerator/sample_rate_denominator Hz."
)

// Options is the immutable per-channel configuration, fixed at first open.
type Options struct {
	SubdirCadenceSecs    uint64
	FileCadenceMillisecs uint64

	SampleRateNumerator   uint64
	SampleRateDenominator uint64

	SampleType     h5.SampleType
	NumSubchannels int

	// IsContinuous selects one run per file with zero-filled intra-file
	// gaps; otherwise each discontinuity adds an rf_data_index row.
	IsContinuous bool

	CompressionLevel int
	Checksum         bool

	UUID string

	// MarchingPeriods emits one '.' to HeartbeatSink per new
	// subdirectory. HeartbeatSink defaults to stderr.
	MarchingPeriods bool
	HeartbeatSink   io.Writer
}

func (o *Options) validate() error {
	if o.SampleRateNumerator == 0 || o.SampleRateDenominator == 0 {
		return fmt.Errorf("%w: sample rate must be nonzero", ErrConfigInvalid)
	}
	if o.NumSubchannels < 1 {
		return fmt.Errorf("%w: num subchannels must be at least 1", ErrConfigInvalid)
	}
	if o.CompressionLevel < 0 || o.CompressionLevel > 9 {
		return fmt.Errorf("%w: compression level %d outside 0..9", ErrConfigInvalid, o.CompressionLevel)
	}
	if _, err := o.SampleType.Datatype(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

// SamplesPerSecond returns the informational float rate hint. Boundary
// arithmetic never uses it.
func (o *Options) SamplesPerSecond() float64 {
	return float64(o.SampleRateNumerator) / float64(o.SampleRateDenominator)
}

func (o *Options) rowSize() int {
	return o.SampleType.RowSize(o.NumSubchannels)
}

func (o *Options) isComplexFlag() int32 {
	if o.SampleType.IsComplex {
		return 1
	}
	return 0
}

func (o *Options) isContinuousFlag() int32 {
	if o.IsContinuous {
		return 1
	}
	return 0
}
