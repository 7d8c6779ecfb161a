package ripper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {

	type test struct {
		mutate func(c *Config)
		err    bool
	}

	tests := map[string]test{
		"default": {
			mutate: func(c *Config) {},
		},
		"folds-only": {
			mutate: func(c *Config) { c.PruneSize = 0; c.NumFolds = 5 },
		},
		"prune-size-only": {
			mutate: func(c *Config) { c.NumFolds = 0 },
		},
		"negative-min-no": {
			mutate: func(c *Config) { c.MinNo = -1 },
			err:    true,
		},
		"one-fold": {
			mutate: func(c *Config) { c.NumFolds = 1; c.PruneSize = 0 },
			err:    true,
		},
		"prune-size-too-large": {
			mutate: func(c *Config) { c.NumFolds = 0; c.PruneSize = 1.0 },
			err:    true,
		},
		"neither-set": {
			mutate: func(c *Config) { c.NumFolds = 0; c.PruneSize = 0 },
			err:    true,
		},
		"contradiction": {
			mutate: func(c *Config) { c.NumFolds = 3; c.PruneSize = 0.5 },
			err:    true,
		},
		"consistent-pair": {
			mutate: func(c *Config) { c.NumFolds = 2; c.PruneSize = 0.5 },
		},
		"negative-optimizations": {
			mutate: func(c *Config) { c.NumOptimizations = -1 },
			err:    true,
		},
		"zero-k": {
			mutate: func(c *Config) { c.K = 0 },
			err:    true,
		},
		"zero-dl-allowance": {
			mutate: func(c *Config) { c.DLAllowance = 0 },
			err:    true,
		},
		"negative-bins": {
			mutate: func(c *Config) { c.NDiscretizeBins = -1 },
			err:    true,
		},
		"negative-cap": {
			mutate: func(c *Config) { c.MaxRules = -1 },
			err:    true,
		},
		"threshold-above-one": {
			mutate: func(c *Config) { c.Threshold = 1.5 },
			err:    true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.err {
				assert.True(t, errors.Is(err, ErrConfiguration))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_Folds(t *testing.T) {

	type test struct {
		numFolds  int
		pruneSize float64
		expected  int
	}

	tests := map[string]test{
		"explicit":             {numFolds: 5, expected: 5},
		"derived-third":        {pruneSize: 1.0 / 3.0, expected: 3},
		"derived-half":         {pruneSize: 0.5, expected: 2},
		"derived-quarter":      {pruneSize: 0.25, expected: 4},
		"derived-floor-at-two": {pruneSize: 0.9, expected: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Config{NumFolds: tt.numFolds, PruneSize: tt.pruneSize}
			assert.Equal(t, tt.expected, cfg.Folds())
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.K = 0
	_, err := New(cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
