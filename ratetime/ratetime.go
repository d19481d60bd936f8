// Package ratetime converts between global sample indexes and time for a
// channel whose sample rate is the exact rational num/den Hz. A global
// sample index g is defined to occur at unix time g*den/num seconds; all
// conversions here are exact integer arithmetic on that ratio, never a
// floating-point approximation.
package ratetime

import (
	"errors"
	"math/big"
	"math/bits"
	"time"
)

var (
	ErrZeroRate   = errors.New("sample rate numerator and denominator must be nonzero")
	ErrOutOfRange = errors.New("value does not fit in 64 bits")
)

const picosPerSecond = 1_000_000_000_000

// div128 divides the 128-bit value hi:lo by d. ok is false when the
// quotient does not fit in 64 bits.
func div128(hi, lo, d uint64) (q, r uint64, ok bool) {
	if hi >= d {
		return 0, 0, false
	}
	q, r = bits.Div64(hi, lo, d)
	return q, r, true
}

// mulDiv returns floor(a*b/d) and the remainder, with a 128-bit
// intermediate product.
func mulDiv(a, b, d uint64) (q, r uint64, ok bool) {
	hi, lo := bits.Mul64(a, b)
	return div128(hi, lo, d)
}

// UnixSecond returns the integer unix second of sample g.
func UnixSecond(g, num, den uint64) (uint64, error) {
	if num == 0 || den == 0 {
		return 0, ErrZeroRate
	}
	sec, _, ok := mulDiv(g, den, num)
	if !ok {
		return 0, ErrOutOfRange
	}
	return sec, nil
}

// UnixMillisecond returns the integer unix millisecond of sample g.
func UnixMillisecond(g, num, den uint64) (uint64, error) {
	if num == 0 || den == 0 {
		return 0, ErrZeroRate
	}
	sec, rem, ok := mulDiv(g, den, num)
	if !ok {
		return 0, ErrOutOfRange
	}
	hi, ms := bits.Mul64(sec, 1000)
	if hi != 0 {
		return 0, ErrOutOfRange
	}
	frac, _, ok := mulDiv(rem, 1000, num)
	if !ok {
		return 0, ErrOutOfRange
	}
	if ms+frac < ms {
		return 0, ErrOutOfRange
	}
	return ms + frac, nil
}

// Picosecond returns the sub-second part of sample g's time in
// picoseconds, computed without precision loss.
func Picosecond(g, num, den uint64) (uint64, error) {
	if num == 0 || den == 0 {
		return 0, ErrZeroRate
	}
	_, rem, ok := mulDiv(g, den, num)
	if !ok {
		return 0, ErrOutOfRange
	}
	pico, _, ok := mulDiv(rem, picosPerSecond, num)
	if !ok {
		return 0, ErrOutOfRange
	}
	return pico, nil
}

// UnixTime decomposes sample g's time into UTC calendar fields plus the
// exact picosecond remainder.
func UnixTime(g, num, den uint64) (year, month, day, hour, minute, second int, picosecond uint64, err error) {
	sec, err := UnixSecond(g, num, den)
	if err != nil {
		return 0, 0, 0, 0, 0, 0, 0, err
	}
	if sec > uint64(1<<62) {
		return 0, 0, 0, 0, 0, 0, 0, ErrOutOfRange
	}
	picosecond, err = Picosecond(g, num, den)
	if err != nil {
		return 0, 0, 0, 0, 0, 0, 0, err
	}
	t := time.Unix(int64(sec), 0).UTC()
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return y, int(mo), d, h, mi, s, picosecond, nil
}

// IndexFromUnix returns the sample index nearest to the given unix
// (second, picosecond) time, rounding half away from zero. It inverts
// UnixSecond/Picosecond for every index they accept at sample rates up to
// 5e11 Hz; above that rate the picosecond truncation in Picosecond can
// exceed half a sample period and the round trip can land one index low.
func IndexFromUnix(second, picosecond, num, den uint64) (uint64, error) {
	if num == 0 || den == 0 {
		return 0, ErrZeroRate
	}
	// g = round((second + pico/1e12) * num/den)
	//   = floor((2*(second*1e12 + pico)*num + den*1e12) / (2*den*1e12))
	n := new(big.Int).SetUint64(second)
	n.Mul(n, big.NewInt(picosPerSecond))
	n.Add(n, new(big.Int).SetUint64(picosecond))
	n.Mul(n, new(big.Int).SetUint64(num))
	n.Lsh(n, 1)

	d := new(big.Int).SetUint64(den)
	d.Mul(d, big.NewInt(picosPerSecond))
	n.Add(n, d)
	n.Div(n, new(big.Int).Lsh(d, 1))

	if !n.IsUint64() {
		return 0, ErrOutOfRange
	}
	return n.Uint64(), nil
}

// IndexAtOrAfterMillisecond returns the smallest sample index whose time
// is at or after the given unix millisecond.
func IndexAtOrAfterMillisecond(ms, num, den uint64) (uint64, error) {
	if num == 0 || den == 0 {
		return 0, ErrZeroRate
	}
	// ceil(ms*num / (1000*den))
	n := new(big.Int).SetUint64(ms)
	n.Mul(n, new(big.Int).SetUint64(num))
	d := new(big.Int).SetUint64(den)
	d.Mul(d, big.NewInt(1000))
	n.Add(n, new(big.Int).Sub(d, big.NewInt(1)))
	n.Div(n, d)

	if !n.IsUint64() {
		return 0, ErrOutOfRange
	}
	return n.Uint64(), nil
}

// FileCadenceSamples returns the number of samples spanned by one file
// cadence window. exact is false when the window does not hold an integer
// sample count; callers then rederive boundaries per query on the
// millisecond grid.
func FileCadenceSamples(fileCadenceMillisecs, num, den uint64) (samples uint64, exact bool, err error) {
	if num == 0 || den == 0 {
		return 0, false, ErrZeroRate
	}
	n := new(big.Int).SetUint64(fileCadenceMillisecs)
	n.Mul(n, new(big.Int).SetUint64(num))
	d := new(big.Int).SetUint64(den)
	d.Mul(d, big.NewInt(1000))
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if !q.IsUint64() {
		return 0, false, ErrOutOfRange
	}
	return q.Uint64(), r.Sign() == 0, nil
}

// SubdirCadenceSamples is FileCadenceSamples for the subdirectory window.
func SubdirCadenceSamples(subdirCadenceSecs, num, den uint64) (samples uint64, exact bool, err error) {
	hi, ms := bits.Mul64(subdirCadenceSecs, 1000)
	if hi != 0 {
		return 0, false, ErrOutOfRange
	}
	return FileCadenceSamples(ms, num, den)
}
