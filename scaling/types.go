package scaling

import (
	"fmt"
	"math"

	"github.com/forestrie/go-scalingbloom/bloom"
)

const (
	DefaultInitialCapacity = 1000000
	DefaultProbability     = 1e-4
	DefaultScaleSize       = 4
	DefaultProbReduction   = 0.9
)

var (
	ErrInvalidArgument = bloom.ErrInvalidArgument
	ErrTypeMismatch    = bloom.ErrTypeMismatch
	ErrOutOfRange      = bloom.ErrOutOfRange
	ErrIOFailure       = bloom.ErrIOFailure
	ErrClosed          = bloom.ErrClosed
)

var (
	ErrBadInitialCapacity = fmt.Errorf("%w: scaling: initial capacity must be greater than zero", ErrInvalidArgument)
	ErrBadProbability     = fmt.Errorf("%w: scaling: probability must be in (0, 1)", ErrInvalidArgument)
	ErrBadScaleSize       = fmt.Errorf("%w: scaling: scale size must be greater than one", ErrInvalidArgument)
	ErrBadProbReduction   = fmt.Errorf("%w: scaling: probability reduction must be in (0, 1)", ErrInvalidArgument)
	ErrNilFilter          = fmt.Errorf("%w: scaling: filter is nil", ErrInvalidArgument)
	ErrAnonymousLayer     = fmt.Errorf("%w: scaling: layer has no backing file", ErrInvalidArgument)
	ErrManifestVersion    = fmt.Errorf("%w: scaling: unsupported manifest version", ErrInvalidArgument)
	ErrLayerSize          = fmt.Errorf("%w: scaling: layer file size does not match its position", ErrIOFailure)
)

// Config holds the growth parameters of a scaling filter.
type Config struct {
	// InitialCapacity is the designed capacity of the first layer
	InitialCapacity uint64 `cbor:"1,keyasint"`

	// Probability bounds the false positive probability of the whole stack.
	// The first layer is designed for (1 - ProbReduction) * Probability.
	Probability float64 `cbor:"2,keyasint"`

	// ScaleSize multiplies the capacity of each new layer
	ScaleSize float64 `cbor:"3,keyasint"`

	// ProbReduction multiplies the probability of each new layer
	ProbReduction float64 `cbor:"4,keyasint"`
}

func DefaultConfig() Config {
	return Config{
		InitialCapacity: DefaultInitialCapacity,
		Probability:     DefaultProbability,
		ScaleSize:       DefaultScaleSize,
		ProbReduction:   DefaultProbReduction,
	}
}

func (c Config) Validate() error {
	if c.InitialCapacity == 0 {
		return ErrBadInitialCapacity
	}
	if !(c.Probability > 0 && c.Probability < 1) {
		return ErrBadProbability
	}
	if !(c.ScaleSize > 1) || math.IsInf(c.ScaleSize, 0) {
		return ErrBadScaleSize
	}
	if !(c.ProbReduction > 0 && c.ProbReduction < 1) {
		return ErrBadProbReduction
	}
	return nil
}

// Layer returns the designed capacity and probability of the layer at
// position i, counting from the oldest.
//
// With p0 = (1 - r) * P the layer probabilities p0, p0 r, p0 r^2 ... sum to
// at most p0 / (1 - r) = P, which is what bounds the false positive rate of
// the whole stack by Probability however many layers are added.
func (c Config) Layer(i int) (capacity uint64, prob float64) {
	capacity = c.InitialCapacity
	prob = (1 - c.ProbReduction) * c.Probability
	for j := 0; j < i; j++ {
		capacity, prob = c.next(capacity, prob)
	}
	return capacity, prob
}

// next returns the designed parameters of the layer following one designed
// for capacity and prob
func (c Config) next(capacity uint64, prob float64) (uint64, float64) {
	return uint64(math.Ceil(float64(capacity) * c.ScaleSize)), prob * c.ProbReduction
}
