package activation

import "math"

// Schraudolph's constants: 2^20/ln2 and the IEEE-754 exponent bias shifted
// into the high word, minus a correction that centres the error.
const (
	fastExpA = 1512775
	fastExpB = 1072632447
)

// FastExp approximates e^x by writing a linear function of x straight into
// the high 32 bits of a float64. The low word is zero, so the result keeps
// only ~20 mantissa bits and is piecewise linear between powers of two:
// relative error stays within about 4% (typically under 2%). Results are
// exact zero below -700 and +Inf above 700.
func FastExp(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x < -700:
		return 0
	case x > 700:
		return math.Inf(1)
	}
	hi := int64(fastExpA*x + fastExpB)
	return math.Float64frombits(uint64(hi) << 32)
}
