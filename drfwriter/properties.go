package drfwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexchartier/digital-rf/h5"
)

// PropertiesFileName is the channel-level property file written once at
// channel creation and immutable afterward.
const PropertiesFileName = "drf_properties.h5"

// propertiesDataset anchors the property attributes; the binding attaches
// attributes to datasets rather than the file root.
const propertiesDataset = "properties"

// writeOrCheckProperties emits drf_properties.h5 on a fresh channel, or
// loads and compares an existing one field by field.
func writeOrCheckProperties(channelDir string, opts *Options) error {
	path := filepath.Join(channelDir, PropertiesFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return writeProperties(path, opts)
		}
		return err
	}
	return checkProperties(path, opts)
}

func propertyAttrs(opts *Options) []h5.Attr {
	t := opts.SampleType
	return []h5.Attr{
		{Name: "H5Tget_class", Value: t.Class()},
		{Name: "H5Tget_size", Value: uint64(t.ElementSize())},
		{Name: "H5Tget_order", Value: t.Order()},
		{Name: "H5Tget_precision", Value: uint64(t.Scalar.Bits)},
		{Name: "H5Tget_offset", Value: int32(0)},
		{Name: "subdir_cadence_secs", Value: opts.SubdirCadenceSecs},
		{Name: "file_cadence_millisecs", Value: opts.FileCadenceMillisecs},
		{Name: "sample_rate_numerator", Value: opts.SampleRateNumerator},
		{Name: "sample_rate_denominator", Value: opts.SampleRateDenominator},
		{Name: "samples_per_second", Value: opts.SamplesPerSecond()},
		{Name: "is_complex", Value: opts.isComplexFlag()},
		{Name: "num_subchannels", Value: int32(opts.NumSubchannels)},
		{Name: "is_continuous", Value: opts.isContinuousFlag()},
		{Name: "epoch", Value: epoch},
		{Name: "digital_rf_time_description", Value: timeDescription},
		{Name: "digital_rf_version", Value: Version},
	}
}

func writeProperties(path string, opts *Options) error {
	f, err := h5.CreateExclusive(path)
	if err != nil {
		return err
	}
	ds, err := f.CreateScalarDataset(propertiesDataset, 0)
	if err != nil {
		f.Close()
		return err
	}
	if err := h5.WriteAttrs(ds, propertyAttrs(opts)); err != nil {
		ds.Close()
		f.Close()
		return err
	}
	if err := ds.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkProperties(path string, opts *Options) error {
	f, err := h5.OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ds, err := f.OpenDataset(propertiesDataset)
	if err != nil {
		return fmt.Errorf("%w: %s is not a channel properties file: %v",
			ErrPropertiesConflict, path, err)
	}
	defer ds.Close()

	for _, want := range propertyAttrs(opts) {
		var got interface{}
		var readErr error
		switch want.Value.(type) {
		case uint64:
			got, readErr = h5.ReadUint64Attr(ds, want.Name)
		case int32:
			got, readErr = h5.ReadInt32Attr(ds, want.Name)
		case float64:
			got, readErr = h5.ReadFloat64Attr(ds, want.Name)
		case string:
			got, readErr = h5.ReadStringAttr(ds, want.Name)
		}
		if readErr != nil {
			return fmt.Errorf("%w: cannot read %s from %s: %v",
				ErrPropertiesConflict, want.Name, path, readErr)
		}
		if got != want.Value {
			return fmt.Errorf("%w: %s is %v on disk, %v requested",
				ErrPropertiesConflict, want.Name, got, want.Value)
		}
	}
	return nil
}
