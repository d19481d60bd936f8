// Package pathplan maps a global sample index to its place in a channel
// directory tree: which subdirectory, which file, and how many samples
// remain before each boundary. Placement is a pure function of the index
// and the channel configuration; no I/O happens here.
package pathplan

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/alexchartier/digital-rf/ratetime"
)

var ErrBadCadence = errors.New("subdir cadence must be a whole number of file cadences")

// Planner computes placement for one channel configuration.
type Planner struct {
	subdirCadenceSecs    uint64
	fileCadenceMillisecs uint64
	num, den             uint64
}

// Position locates one sample. FileEndIndex and SubdirEndIndex are the
// first global indexes beyond the file and subdirectory windows; remaining
// capacities derive from them.
type Position struct {
	SubdirName           string
	FileName             string
	SubdirStartSecond    uint64
	FileStartMillisecond uint64
	FileFirstIndex       uint64
	FileEndIndex         uint64
	SubdirEndIndex       uint64
}

// SampleOffset returns g's row offset within its file window.
func (p Position) SampleOffset(g uint64) uint64 { return g - p.FileFirstIndex }

// FileRemaining returns the sample capacity left in the file at g,
// counting g itself.
func (p Position) FileRemaining(g uint64) uint64 { return p.FileEndIndex - g }

// SubdirRemaining returns the sample capacity left in the subdirectory at
// g, counting g itself.
func (p Position) SubdirRemaining(g uint64) uint64 { return p.SubdirEndIndex - g }

// New validates the channel cadences against the sample rate num/den. An
// integer number of files must span every subdirectory.
func New(subdirCadenceSecs, fileCadenceMillisecs, num, den uint64) (*Planner, error) {
	if num == 0 || den == 0 {
		return nil, ratetime.ErrZeroRate
	}
	if subdirCadenceSecs == 0 || fileCadenceMillisecs == 0 {
		return nil, fmt.Errorf("%w: cadences must be positive", ErrBadCadence)
	}
	hi, subdirMs := bits.Mul64(subdirCadenceSecs, 1000)
	if hi != 0 {
		return nil, ratetime.ErrOutOfRange
	}
	if subdirMs%fileCadenceMillisecs != 0 {
		return nil, fmt.Errorf("%w: %d s subdirs, %d ms files",
			ErrBadCadence, subdirCadenceSecs, fileCadenceMillisecs)
	}
	return &Planner{
		subdirCadenceSecs:    subdirCadenceSecs,
		fileCadenceMillisecs: fileCadenceMillisecs,
		num:                  num,
		den:                  den,
	}, nil
}

// Plan locates sample g.
func (p *Planner) Plan(g uint64) (Position, error) {
	ms, err := ratetime.UnixMillisecond(g, p.num, p.den)
	if err != nil {
		return Position{}, err
	}

	fileStartMs := ms - ms%p.fileCadenceMillisecs
	subdirStartSec := (ms / 1000) / p.subdirCadenceSecs * p.subdirCadenceSecs

	fileFirst, err := ratetime.IndexAtOrAfterMillisecond(fileStartMs, p.num, p.den)
	if err != nil {
		return Position{}, err
	}
	fileEnd, err := ratetime.IndexAtOrAfterMillisecond(fileStartMs+p.fileCadenceMillisecs, p.num, p.den)
	if err != nil {
		return Position{}, err
	}
	subdirEndMs := (subdirStartSec + p.subdirCadenceSecs) * 1000
	subdirEnd, err := ratetime.IndexAtOrAfterMillisecond(subdirEndMs, p.num, p.den)
	if err != nil {
		return Position{}, err
	}

	return Position{
		SubdirName:           SubdirName(subdirStartSec),
		FileName:             FileName(fileStartMs),
		SubdirStartSecond:    subdirStartSec,
		FileStartMillisecond: fileStartMs,
		FileFirstIndex:       fileFirst,
		FileEndIndex:         fileEnd,
		SubdirEndIndex:       subdirEnd,
	}, nil
}

// SubdirName formats a subdirectory start second as ISO-8601 extended UTC
// with hyphens in the time part.
func SubdirName(startSecond uint64) string {
	t := time.Unix(int64(startSecond), 0).UTC()
	return t.Format("2006-01-02T15-04-05")
}

// FileName formats a file start millisecond as rf@<sec>.<milli3>.h5.
func FileName(startMillisecond uint64) string {
	return fmt.Sprintf("rf@%d.%03d.h5", startMillisecond/1000, startMillisecond%1000)
}
