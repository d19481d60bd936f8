package drfwriter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alexchartier/digital-rf/h5"
)

// indexEntry is one rf_data_index row: a run's first global sample index
// and its row offset within rf_data.
type indexEntry struct {
	global uint64
	row    uint64
}

// fileWriter accumulates one cadence window's samples and materializes
// the file's datasets at close. The path is claimed with an exclusive
// create at open; after close the file is immutable and the writer is
// done (no reopen).
type fileWriter struct {
	path string
	opts *Options

	f *h5.File

	seq       uint64 // files written by this writer before this one
	initTS    uint64 // writer init time, unix seconds
	openedAt  time.Time
	bound     uint64 // first global index beyond the file window
	planFirst uint64 // first global index of the file window

	firstIndex uint64 // global index of rf_data row 0
	nextIndex  uint64 // next contiguous global index after the last run
	rows       uint64
	data       []byte
	index      []indexEntry

	closed bool
}

func openFileWriter(path string, opts *Options, planFirst, bound, seq, initTS uint64) (*fileWriter, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
	}
	f, err := h5.CreateExclusive(path)
	if err != nil {
		if errors.Is(err, h5.ErrExists) {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		return nil, err
	}
	return &fileWriter{
		path:      path,
		opts:      opts,
		f:         f,
		seq:       seq,
		initTS:    initTS,
		openedAt:  time.Now(),
		bound:     bound,
		planFirst: planFirst,
	}, nil
}

// append adds one run slice starting at global index g. The caller has
// already split runs along file boundaries; g must not precede the file's
// next contiguous index nor reach past the cadence window.
func (fw *fileWriter) append(g uint64, n uint64, raw []byte) error {
	if fw.closed {
		return fmt.Errorf("%w: append to closed file %s", ErrInternal, fw.path)
	}
	if g < fw.planFirst || g+n > fw.bound {
		return fmt.Errorf("%w: run [%d,%d) outside file window [%d,%d)",
			ErrOutOfCapacity, g, g+n, fw.planFirst, fw.bound)
	}

	if fw.rows == 0 {
		// First run defines the file's first index; no zero prefill
		// before the first real sample.
		fw.firstIndex = g
		fw.index = append(fw.index, indexEntry{global: g, row: 0})
	} else {
		if g < fw.nextIndex {
			return fmt.Errorf("%w: run at %d precedes next in-file index %d",
				ErrInternal, g, fw.nextIndex)
		}
		if g > fw.nextIndex {
			if fw.opts.IsContinuous {
				gap := g - fw.nextIndex
				fw.data = append(fw.data, make([]byte, gap*uint64(fw.opts.rowSize()))...)
				fw.rows += gap
			} else {
				fw.index = append(fw.index, indexEntry{global: g, row: fw.rows})
			}
		}
	}

	fw.data = append(fw.data, raw...)
	fw.rows += n
	fw.nextIndex = g + n
	return nil
}

// close materializes rf_data and rf_data_index, writes the file metadata,
// and closes the file. Idempotent; datasets are released before the file.
func (fw *fileWriter) close() error {
	if fw.closed {
		return nil
	}
	fw.closed = true

	dtype, err := fw.opts.SampleType.Datatype()
	if err != nil {
		fw.f.Close()
		return err
	}

	ds, err := fw.f.CreateMatrix("rf_data", dtype, fw.rows, uint64(fw.opts.NumSubchannels), fw.data)
	if err != nil {
		fw.f.Close()
		return err
	}
	if err := h5.WriteAttrs(ds, fw.metadata()); err != nil {
		ds.Close()
		fw.f.Close()
		return err
	}
	if err := ds.Close(); err != nil {
		fw.f.Close()
		return err
	}

	flat := make([]uint64, 0, 2*len(fw.index))
	for _, e := range fw.index {
		flat = append(flat, e.global, e.row)
	}
	ids, err := fw.f.CreateUint64Matrix("rf_data_index", uint64(len(fw.index)), 2, flat)
	if err != nil {
		fw.f.Close()
		return err
	}
	if err := ids.Close(); err != nil {
		fw.f.Close()
		return err
	}

	fw.data = nil
	return fw.f.Close()
}

func (fw *fileWriter) metadata() []h5.Attr {
	o := fw.opts
	return []h5.Attr{
		{Name: "subdir_cadence_secs", Value: o.SubdirCadenceSecs},
		{Name: "file_cadence_millisecs", Value: o.FileCadenceMillisecs},
		{Name: "sample_rate_numerator", Value: o.SampleRateNumerator},
		{Name: "sample_rate_denominator", Value: o.SampleRateDenominator},
		{Name: "samples_per_second", Value: o.SamplesPerSecond()},
		{Name: "is_complex", Value: o.isComplexFlag()},
		{Name: "num_subchannels", Value: int32(o.NumSubchannels)},
		{Name: "is_continuous", Value: o.isContinuousFlag()},
		{Name: "uuid_str", Value: o.UUID},
		{Name: "epoch", Value: epoch},
		{Name: "digital_rf_time_description", Value: timeDescription},
		{Name: "digital_rf_version", Value: Version},
		{Name: "sequence_num", Value: fw.seq},
		{Name: "computer_time", Value: uint64(fw.openedAt.Unix())},
		{Name: "init_utc_timestamp", Value: fw.initTS},
	}
}
