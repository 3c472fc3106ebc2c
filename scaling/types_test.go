package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(1000000), cfg.InitialCapacity)
	assert.Equal(t, 1e-4, cfg.Probability)
	assert.Equal(t, 4.0, cfg.ScaleSize)
	assert.Equal(t, 0.9, cfg.ProbReduction)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"zero capacity", func(c *Config) { c.InitialCapacity = 0 }, ErrBadInitialCapacity},
		{"zero probability", func(c *Config) { c.Probability = 0 }, ErrBadProbability},
		{"probability one", func(c *Config) { c.Probability = 1 }, ErrBadProbability},
		{"scale one", func(c *Config) { c.ScaleSize = 1 }, ErrBadScaleSize},
		{"scale shrinks", func(c *Config) { c.ScaleSize = 0.5 }, ErrBadScaleSize},
		{"reduction zero", func(c *Config) { c.ProbReduction = 0 }, ErrBadProbReduction},
		{"reduction one", func(c *Config) { c.ProbReduction = 1 }, ErrBadProbReduction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestConfigLayer(t *testing.T) {
	cfg := Config{InitialCapacity: 1000, Probability: 1e-4, ScaleSize: 4, ProbReduction: 0.9}

	c0, p0 := cfg.Layer(0)
	assert.Equal(t, uint64(1000), c0)
	assert.InDelta(t, 1e-5, p0, 1e-18)

	c1, p1 := cfg.Layer(1)
	assert.Equal(t, uint64(4000), c1)
	assert.InDelta(t, 9e-6, p1, 1e-18)

	c2, p2 := cfg.Layer(2)
	assert.Equal(t, uint64(16000), c2)
	assert.InDelta(t, 8.1e-6, p2, 1e-18)

	// the whole sequence sums to no more than the target probability
	sum := 0.0
	for i := 0; i < 200; i++ {
		_, p := cfg.Layer(i)
		sum += p
	}
	assert.LessOrEqual(t, sum, cfg.Probability*(1+1e-9))
}

func TestConfigLayerRoundsCapacityUp(t *testing.T) {
	cfg := Config{InitialCapacity: 3, Probability: 0.01, ScaleSize: 1.5, ProbReduction: 0.5}
	c, _ := cfg.Layer(1)
	assert.Equal(t, uint64(5), c)
	c, _ = cfg.Layer(2)
	assert.Equal(t, uint64(8), c)
}
