package ripper

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration signals invalid or contradictory hyperparameters.
var ErrConfiguration = errors.New("invalid configuration")

// Config is the explicit hyperparameter set for one training run.
// Every field is effect-bearing, except Verbosity which only tunes diagnostics.
type Config struct {
	// MinNo is the minimum weighted accurate coverage required to accept a split.
	MinNo float64 `json:"minNo"`
	// NumFolds is the grow/prune fold count : one fold prunes, the rest grow.
	NumFolds int `json:"numFolds"`
	// NumOptimizations is the optimization-phase iteration count.
	NumOptimizations int `json:"numOptimizations"`
	// K is the outer repetition count of the whole grow phase.
	K int `json:"k"`
	// DLAllowance is the description-length stopping slack, in bits.
	DLAllowance float64 `json:"dlAllowance"`
	// PruneSize is the fraction of data reserved for pruning.
	// When NumFolds is unset it derives the fold count.
	PruneSize float64 `json:"pruneSize"`
	// NDiscretizeBins pre-bins continuous attributes, 0 disables.
	NDiscretizeBins int `json:"nDiscretizeBins"`
	// MaxRules, MaxRuleConds and MaxTotalConds cap the ruleset size, 0 for no cap.
	MaxRules      int `json:"maxRules"`
	MaxRuleConds  int `json:"maxRuleConds"`
	MaxTotalConds int `json:"maxTotalConds"`
	// RandomState seeds fold assignment and randomized tie-breaking.
	RandomState int64 `json:"randomState"`
	// Threshold is the maximum tolerated missing-value fraction per attribute
	// before the attribute is excluded from split search.
	Threshold float64 `json:"threshold"`
	// Verbosity tunes diagnostic detail and never affects results.
	Verbosity int `json:"verbosity"`
}

// Default returns the canonical hyperparameter set.
func Default() Config {
	return Config{
		MinNo:            2.0,
		NumFolds:         3,
		NumOptimizations: 2,
		K:                2,
		DLAllowance:      64,
		PruneSize:        1.0 / 3.0,
		NDiscretizeBins:  10,
		RandomState:      1,
		Threshold:        0.1,
	}
}

// Folds resolves the effective fold count from NumFolds and PruneSize.
func (c Config) Folds() int {
	if c.NumFolds >= 2 {
		return c.NumFolds
	}
	return int(math.Max(2, math.Round(1/c.PruneSize)))
}

// Validate rejects invalid or contradictory hyperparameters eagerly.
func (c Config) Validate() error {
	if c.MinNo < 0 {
		return fmt.Errorf("minNo %v is negative: %w", c.MinNo, ErrConfiguration)
	}
	if c.NumFolds != 0 && c.NumFolds < 2 {
		return fmt.Errorf("numFolds %d below 2: %w", c.NumFolds, ErrConfiguration)
	}
	if c.PruneSize < 0 || c.PruneSize >= 1 {
		return fmt.Errorf("pruneSize %v outside [0,1): %w", c.PruneSize, ErrConfiguration)
	}
	if c.NumFolds == 0 && c.PruneSize == 0 {
		return fmt.Errorf("neither numFolds nor pruneSize set: %w", ErrConfiguration)
	}
	if c.NumFolds >= 2 && c.PruneSize > 0 {
		if derived := int(math.Max(2, math.Round(1/c.PruneSize))); derived != c.NumFolds {
			return fmt.Errorf("numFolds %d contradicts pruneSize %v: %w", c.NumFolds, c.PruneSize, ErrConfiguration)
		}
	}
	if c.NumOptimizations < 0 {
		return fmt.Errorf("numOptimizations %d is negative: %w", c.NumOptimizations, ErrConfiguration)
	}
	if c.K < 1 {
		return fmt.Errorf("k %d below 1: %w", c.K, ErrConfiguration)
	}
	if c.DLAllowance <= 0 {
		return fmt.Errorf("dlAllowance %v not positive: %w", c.DLAllowance, ErrConfiguration)
	}
	if c.NDiscretizeBins < 0 {
		return fmt.Errorf("nDiscretizeBins %d is negative: %w", c.NDiscretizeBins, ErrConfiguration)
	}
	if c.MaxRules < 0 || c.MaxRuleConds < 0 || c.MaxTotalConds < 0 {
		return fmt.Errorf("negative size cap: %w", ErrConfiguration)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]: %w", c.Threshold, ErrConfiguration)
	}
	return nil
}
