// Package drfwriter is the Digital RF write engine: it accepts blocks of
// fixed-width sample rows tagged with a monotonic global sample index,
// slices them along file and subdirectory cadence boundaries, and persists
// each file as a self-describing HDF5 dataset plus a contiguous-run index.
//
// A Writer owns one channel directory and is not safe for concurrent use.
// Writes are synchronous and applied in call order; a failed call leaves
// the writer's bookkeeping exactly as it was before the call.
package drfwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/alexchartier/digital-rf/pathplan"
)

// Writer is the per-channel write engine state machine. At most one data
// file is open at any time.
type Writer struct {
	channelDir string
	opts       Options
	planner    *pathplan.Planner

	startIndex   uint64
	nextExpected uint64
	wrote        bool // true once any sample has been written

	openFile      *fileWriter
	currentSubdir string
	filesWritten  uint64
	initTS        uint64

	lastFile      string
	lastDir       string
	lastWriteTime time.Time

	closed bool
}

// New creates or reattaches a channel writer. The channel directory is
// created if absent; drf_properties.h5 is written on a fresh channel and
// verified field-by-field against an existing one.
func New(channelDir string, opts Options, startGlobalIndex uint64) (*Writer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	planner, err := pathplan.New(opts.SubdirCadenceSecs, opts.FileCadenceMillisecs,
		opts.SampleRateNumerator, opts.SampleRateDenominator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if opts.HeartbeatSink == nil {
		opts.HeartbeatSink = os.Stderr
	}

	if err := os.MkdirAll(channelDir, 0755); err != nil {
		return nil, err
	}
	if err := writeOrCheckProperties(channelDir, &opts); err != nil {
		return nil, err
	}

	w := &Writer{
		channelDir:   channelDir,
		opts:         opts,
		planner:      planner,
		startIndex:   startGlobalIndex,
		nextExpected: startGlobalIndex,
		initTS:       uint64(time.Now().Unix()),
	}
	// A writer abandoned without Close still releases its open file.
	runtime.SetFinalizer(w, func(w *Writer) { w.Close() })
	return w, nil
}

// Write appends a continuous block starting at the next expected index.
// data is raw row-major sample bytes in the configured element layout and
// must be a whole number of rows.
func (w *Writer) Write(data []byte) error {
	return w.WriteBlocks(data, []uint64{w.nextExpected}, []uint64{0})
}

// WriteAt appends a continuous block starting at the given global index,
// which must not precede the next expected index.
func (w *Writer) WriteAt(data []byte, globalIndex uint64) error {
	return w.WriteBlocks(data, []uint64{globalIndex}, []uint64{0})
}

// WriteBlocks appends k runs: run j covers buffer rows
// [blockOffsets[j], blockOffsets[j+1]) (the last run extends to the end of
// data) and begins at globalIndices[j]. Indexes and offsets must be
// strictly increasing, gaps may be inserted but never removed, and the
// first run must start at or after the next expected index.
//
// On error nothing about the writer's bookkeeping changes; samples that
// already reached a closed file stay on disk and the caller may retry at a
// later index.
func (w *Writer) WriteBlocks(data []byte, globalIndices, blockOffsets []uint64) error {
	if w.closed {
		return ErrClosed
	}

	rowSize := uint64(w.opts.rowSize())
	if uint64(len(data))%rowSize != 0 {
		return fmt.Errorf("%w: buffer is %d bytes, not a whole number of %d-byte rows",
			ErrOrder, len(data), rowSize)
	}
	n := uint64(len(data)) / rowSize

	k := len(globalIndices)
	if k == 0 || len(blockOffsets) != k {
		return fmt.Errorf("%w: %d global indexes, %d block offsets",
			ErrOrder, k, len(blockOffsets))
	}
	if blockOffsets[0] != 0 {
		return fmt.Errorf("%w: first block offset must be 0, got %d", ErrOrder, blockOffsets[0])
	}
	for j := 1; j < k; j++ {
		if globalIndices[j] <= globalIndices[j-1] {
			return fmt.Errorf("%w: global indexes not strictly increasing at run %d", ErrOrder, j)
		}
		if blockOffsets[j] <= blockOffsets[j-1] {
			return fmt.Errorf("%w: block offsets not strictly increasing at run %d", ErrOrder, j)
		}
		// Gaps may be inserted, never removed: the index distance must be
		// at least the buffer distance.
		if globalIndices[j]-globalIndices[j-1] < blockOffsets[j]-blockOffsets[j-1] {
			return fmt.Errorf("%w: run %d compresses the sample interval", ErrOrder, j)
		}
	}
	if blockOffsets[k-1] >= n {
		return fmt.Errorf("%w: block offset %d beyond %d buffer rows",
			ErrOrder, blockOffsets[k-1], n)
	}
	if globalIndices[0] < w.nextExpected {
		return fmt.Errorf("%w: write at %d, next expected index is %d",
			ErrOverlap, globalIndices[0], w.nextExpected)
	}

	for j := 0; j < k; j++ {
		g := globalIndices[j]
		cursor := blockOffsets[j]
		end := n
		if j+1 < k {
			end = blockOffsets[j+1]
		}
		for cursor < end {
			remaining := end - cursor
			if err := w.writeSegment(&g, &cursor, remaining, data, rowSize); err != nil {
				w.abandonOpenFile()
				return err
			}
		}
	}

	w.nextExpected = globalIndices[k-1] + (n - blockOffsets[k-1])
	w.wrote = true
	if w.openFile != nil {
		w.lastFile = w.openFile.path
		w.lastDir = filepath.Dir(w.openFile.path)
	}
	w.lastWriteTime = time.Now()
	return nil
}

// writeSegment writes as much of the current run as fits in the file that
// holds g, opening and closing files as boundaries are crossed.
func (w *Writer) writeSegment(g, cursor *uint64, remaining uint64, data []byte, rowSize uint64) error {
	pos, err := w.planner.Plan(*g)
	if err != nil {
		return err
	}

	m := remaining
	if c := pos.FileRemaining(*g); c < m {
		m = c
	}

	path := filepath.Join(w.channelDir, pos.SubdirName, pos.FileName)
	if w.openFile == nil || w.openFile.path != path {
		if w.openFile != nil {
			if err := w.openFile.close(); err != nil {
				w.openFile = nil
				return err
			}
			w.openFile = nil
		}
		if pos.SubdirName != w.currentSubdir {
			if err := os.MkdirAll(filepath.Join(w.channelDir, pos.SubdirName), 0755); err != nil {
				return err
			}
			if w.opts.MarchingPeriods {
				fmt.Fprint(w.opts.HeartbeatSink, ".")
			}
			w.currentSubdir = pos.SubdirName
		}
		fw, err := openFileWriter(path, &w.opts, pos.FileFirstIndex, pos.FileEndIndex,
			w.filesWritten, w.initTS)
		if err != nil {
			return err
		}
		w.openFile = fw
		w.filesWritten++
	}

	start := *cursor * rowSize
	if err := w.openFile.append(*g, m, data[start:start+m*rowSize]); err != nil {
		return err
	}
	*g += m
	*cursor += m
	return nil
}

// abandonOpenFile closes the open file best-effort after a failed write.
// The path stays claimed on disk, so a retry that maps to it sees
// ErrFileExists and must advance past the window.
func (w *Writer) abandonOpenFile() {
	if w.openFile != nil {
		w.openFile.close()
		w.openFile = nil
	}
}

// NextIndex returns the global index the next continuous Write will use.
func (w *Writer) NextIndex() uint64 { return w.nextExpected }

// LastIndexWritten returns the highest global index written so far and
// false if nothing has been written.
func (w *Writer) LastIndexWritten() (uint64, bool) {
	if !w.wrote {
		return 0, false
	}
	return w.nextExpected - 1, true
}

// LastFileWritten returns the full path of the most recently written file.
func (w *Writer) LastFileWritten() string { return w.lastFile }

// LastDirWritten returns the full path of the most recently written
// subdirectory.
func (w *Writer) LastDirWritten() string { return w.lastDir }

// LastWriteTime returns the wall-clock time of the last successful write.
func (w *Writer) LastWriteTime() time.Time { return w.lastWriteTime }

// Close finalizes any open file and retires the writer. Idempotent;
// subsequent writes fail with ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	runtime.SetFinalizer(w, nil)

	if w.openFile != nil {
		err := w.openFile.close()
		w.openFile = nil
		return err
	}
	return nil
}
