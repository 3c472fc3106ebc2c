package bloom

import "math"

// The planning formulas for a classic bloom filter of m bits holding n
// elements at false positive rate p:
//
//	m = -n ln(p) / ln(2)^2
//	p = e^(-(m/n) ln(2)^2)
//	k = ln(2) m / n
//
// ln2 is a variable so that ln2*ln2 is evaluated in float64, matching other
// implementations of the format bit for bit.
var (
	ln2        = float64(math.Ln2)
	ln2Squared = ln2 * ln2
)

// CheckParams validates a capacity and target false positive probability.
func CheckParams(capacity uint64, prob float64) error {
	if capacity == 0 {
		return ErrBadCapacity
	}
	if !(prob > 0 && prob < 1) {
		return ErrBadProbability
	}
	return nil
}

// RequiredBits returns ceil(-capacity * ln(prob) / ln(2)^2), the number of
// bits needed to hold capacity elements at false positive probability prob.
//
// The caller is responsible for ensuring CheckParams(capacity, prob) is nil.
func RequiredBits(capacity uint64, prob float64) uint64 {
	raw := -float64(capacity) * math.Log(prob) / ln2Squared
	return uint64(math.Ceil(raw))
}

// RequiredBytes returns ceil(RequiredBits(capacity, prob) / 8).
func RequiredBytes(capacity uint64, prob float64) uint64 {
	return (RequiredBits(capacity, prob) + 7) / 8
}

// ExpectedProbability returns the false positive probability of a filter
// of bits bits once it holds capacity elements.
func ExpectedProbability(bits uint64, capacity uint64) float64 {
	return math.Exp(-(float64(bits) / float64(capacity)) * ln2Squared)
}

// ExpectedCapacity returns the number of elements bits bits can hold at
// false positive probability prob.
func ExpectedCapacity(bits uint64, prob float64) float64 {
	return -float64(bits) / math.Log(prob) * ln2Squared
}

// IdealK returns ln(2) * bits / capacity, the hash count minimizing false
// positives. It is not rounded.
func IdealK(bits uint64, capacity uint64) float64 {
	return ln2 * float64(bits) / float64(capacity)
}

// ParamsForCapacity returns the total bitmap size in bytes, header
// included, and the hash count k for a filter of the given capacity and
// target probability.
//
//	totalBytes = RequiredBytes(capacity, prob) + HeaderBytes
//	k          = ceil(IdealK(RequiredBits(capacity, prob), capacity))
func ParamsForCapacity(capacity uint64, prob float64) (totalBytes uint64, k uint32) {
	bits := RequiredBits(capacity, prob)
	totalBytes = RequiredBytes(capacity, prob) + HeaderBytes
	k = uint32(math.Ceil(IdealK(bits, capacity)))
	return totalBytes, k
}
