package drfwriter

import "errors"

var (
	// ErrConfigInvalid reports a channel configuration the engine cannot
	// honor: cadence divisibility, zero rate, unknown sample type.
	ErrConfigInvalid = errors.New("invalid channel configuration")

	// ErrPropertiesConflict reports a preexisting channel whose recorded
	// properties differ from the requested configuration.
	ErrPropertiesConflict = errors.New("channel properties conflict")

	// ErrFileExists reports that a planned data file is already present on
	// disk. The engine never clobbers.
	ErrFileExists = errors.New("target file already exists")

	// ErrOverlap reports a write starting before the next expected index.
	ErrOverlap = errors.New("write overlaps already-written samples")

	// ErrOrder reports malformed write arguments: non-monotonic indexes or
	// offsets, or a buffer that does not match the declared runs.
	ErrOrder = errors.New("write indexes out of order")

	// ErrClosed reports use of a writer after Close.
	ErrClosed = errors.New("writer is closed")

	// ErrOutOfCapacity reports an append past the file cadence window.
	// The channel writer never requests one; seeing this is a bug.
	ErrOutOfCapacity = errors.New("write past file capacity")

	// ErrInternal reports a broken internal invariant.
	ErrInternal = errors.New("internal invariant violated")
)
