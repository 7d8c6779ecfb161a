package rule

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/ripper/internal/data"
)

var (
	// ErrPrecondition signals an operation invoked out of the rule lifecycle order.
	ErrPrecondition = errors.New("precondition failed")
	// ErrParse signals a malformed serialized antecedent or rule.
	ErrParse = errors.New("could not parse")
)

// Operator is the comparison used by an antecedent.
type Operator string

const (
	Eq  Operator = "="
	Neq Operator = "!="
	Leq Operator = "<="
	Geq Operator = ">="
	Gt  Operator = ">"
	Lt  Operator = "<"
)

// Antecedent is a single attribute test used as a rule condition.
// There are exactly two concrete kinds, matching the attribute kinds.
// An antecedent is immutable once accepted into a rule.
type Antecedent interface {
	Attribute() data.Attribute
	Operator() Operator
	// Value is the comparison value : a threshold for continuous tests,
	// a domain key for discrete ones.
	Value() float64
	// Covers evaluates the test against the row.
	// A missing value never covers.
	Covers(row data.Row) bool
	String() string
}

// SplitResult is the immutable outcome of a best-split search.
type SplitResult struct {
	Antecedent Antecedent
	// Gain is the information gain of the split over the default accuracy rate.
	Gain float64
	// AccuRate is the Laplace-corrected accuracy rate of the covered bag.
	AccuRate float64
	// Cover is the covered weight, Accu the accurately covered weight.
	Cover float64
	Accu  float64
}

// laplace is the corrected accuracy rate, in (0,1] even at zero coverage.
func laplace(accu, cover float64) float64 {
	return (accu + 1) / (cover + 1)
}

// gain is the weighted improvement of the corrected rate over the default rate.
func gain(accu, cover, defaultRate float64) float64 {
	return accu * (math.Log2(laplace(accu, cover)) - math.Log2(defaultRate))
}

// BestSplit searches the best single test on the given attribute.
// It returns false when the attribute yields no valid split,
// e.g. when all its values are missing.
// Ties resolve to the first candidate encountered.
func BestSplit(attr data.Attribute, set *data.Instances, defaultRate float64, target int) (SplitResult, bool) {
	switch a := attr.(type) {
	case *data.Continuous:
		return bestContinuousSplit(a, set, defaultRate, target)
	case *data.Discrete:
		return bestDiscreteSplit(a, set, defaultRate, target)
	}
	return SplitResult{}, false
}

// bestContinuousSplit scans the boundaries between groups of equal values,
// in ascending order, tracking a below-or-equal bag and an above bag.
// The container is sorted by the attribute as part of the search.
func bestContinuousSplit(attr *data.Continuous, set *data.Instances, defaultRate float64, target int) (SplitResult, bool) {
	set.SortByAttribute(attr)

	totalCover, totalAccu := 0.0, 0.0
	n := 0
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if row.IsMissing(attr) {
			break
		}
		n++
		totalCover += row.Weight
		if row.Class == target {
			totalAccu += row.Weight
		}
	}
	if n == 0 {
		return SplitResult{}, false
	}

	best := SplitResult{Gain: math.Inf(-1)}
	found := false

	belowCover, belowAccu := 0.0, 0.0
	for i := 0; i < n; i++ {
		row := set.Row(i)
		belowCover += row.Weight
		if row.Class == target {
			belowAccu += row.Weight
		}
		v := row.Value(attr)
		// a boundary sits after the last row of a group of equal values
		if i+1 < n && set.Row(i+1).Value(attr) == v {
			continue
		}
		if i+1 == n {
			// no above bag beyond the last group
			break
		}

		aboveCover := totalCover - belowCover
		aboveAccu := totalAccu - belowAccu

		if g := gain(belowAccu, belowCover, defaultRate); g > best.Gain {
			best = SplitResult{
				Antecedent: &ContinuousAntecedent{attr: attr, op: Leq, value: v},
				Gain:       g,
				AccuRate:   laplace(belowAccu, belowCover),
				Cover:      belowCover,
				Accu:       belowAccu,
			}
			found = true
		}
		if g := gain(aboveAccu, aboveCover, defaultRate); g > best.Gain {
			best = SplitResult{
				Antecedent: &ContinuousAntecedent{attr: attr, op: Gt, value: v},
				Gain:       g,
				AccuRate:   laplace(aboveAccu, aboveCover),
				Cover:      aboveCover,
				Accu:       aboveAccu,
			}
			found = true
		}
	}
	if !found {
		return SplitResult{}, false
	}
	return best, true
}

// bestDiscreteSplit partitions rows into one bag per domain value in a single pass.
// Rows missing the value are excluded from all bags. The operator is equality.
func bestDiscreteSplit(attr *data.Discrete, set *data.Instances, defaultRate float64, target int) (SplitResult, bool) {
	size := attr.Size()
	if size == 0 {
		return SplitResult{}, false
	}
	cover := make([]float64, size)
	accu := make([]float64, size)

	it := set.Iterate()
	seen := false
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if row.IsMissing(attr) {
			continue
		}
		key := int(row.Value(attr))
		if key < 0 || key >= size {
			continue
		}
		seen = true
		cover[key] += row.Weight
		if row.Class == target {
			accu[key] += row.Weight
		}
	}
	if !seen {
		return SplitResult{}, false
	}

	best := SplitResult{Gain: math.Inf(-1)}
	found := false
	for key := 0; key < size; key++ {
		if g := gain(accu[key], cover[key], defaultRate); g > best.Gain {
			best = SplitResult{
				Antecedent: &DiscreteAntecedent{attr: attr, op: Eq, value: key},
				Gain:       g,
				AccuRate:   laplace(accu[key], cover[key]),
				Cover:      cover[key],
				Accu:       accu[key],
			}
			found = true
		}
	}
	if !found {
		return SplitResult{}, false
	}
	return best, true
}

// DiscreteAntecedent tests a discrete attribute against one domain value.
type DiscreteAntecedent struct {
	attr  *data.Discrete
	op    Operator
	value int
}

// NewDiscreteAntecedent creates a discrete test.
// Only equality and inequality operators apply.
func NewDiscreteAntecedent(attr *data.Discrete, op Operator, value int) (*DiscreteAntecedent, error) {
	if op != Eq && op != Neq {
		return nil, fmt.Errorf("operator '%s' on discrete attribute '%s': %w", op, attr.Name(), ErrParse)
	}
	return &DiscreteAntecedent{attr: attr, op: op, value: value}, nil
}

func (a *DiscreteAntecedent) Attribute() data.Attribute {
	return a.attr
}

func (a *DiscreteAntecedent) Operator() Operator {
	return a.op
}

func (a *DiscreteAntecedent) Value() float64 {
	return float64(a.value)
}

// Key returns the tested domain key.
func (a *DiscreteAntecedent) Key() int {
	return a.value
}

func (a *DiscreteAntecedent) Covers(row data.Row) bool {
	if row.IsMissing(a.attr) {
		return false
	}
	eq := int(row.Value(a.attr)) == a.value
	if a.op == Neq {
		return !eq
	}
	return eq
}

func (a *DiscreteAntecedent) String() string {
	label, err := a.attr.Represent(a.value)
	if err != nil {
		label = fmt.Sprintf("#%d", a.value)
	}
	return fmt.Sprintf("(%s %s %s)", a.attr.Name(), a.op, label)
}

// ContinuousAntecedent tests a continuous attribute against a threshold.
type ContinuousAntecedent struct {
	attr  *data.Continuous
	op    Operator
	value float64
}

// NewContinuousAntecedent creates a continuous test.
// Only threshold operators apply.
func NewContinuousAntecedent(attr *data.Continuous, op Operator, value float64) (*ContinuousAntecedent, error) {
	switch op {
	case Leq, Geq, Gt, Lt:
		return &ContinuousAntecedent{attr: attr, op: op, value: value}, nil
	}
	return nil, fmt.Errorf("operator '%s' on continuous attribute '%s': %w", op, attr.Name(), ErrParse)
}

func (a *ContinuousAntecedent) Attribute() data.Attribute {
	return a.attr
}

func (a *ContinuousAntecedent) Operator() Operator {
	return a.op
}

func (a *ContinuousAntecedent) Value() float64 {
	return a.value
}

func (a *ContinuousAntecedent) Covers(row data.Row) bool {
	if row.IsMissing(a.attr) {
		return false
	}
	v := row.Value(a.attr)
	switch a.op {
	case Leq:
		return v <= a.value
	case Geq:
		return v >= a.value
	case Gt:
		return v > a.value
	case Lt:
		return v < a.value
	}
	return false
}

func (a *ContinuousAntecedent) String() string {
	return fmt.Sprintf("(%s %s %v)", a.attr.Name(), a.op, a.value)
}
