package rule

import (
	"fmt"
	"strings"

	"github.com/drakos74/ripper/internal/data"
	"github.com/rs/zerolog/log"
)

// Rule is a conjunction of antecedents with a predicted class.
// A rule with no antecedents is a default rule and covers every row.
// Rules are mutable during growth and frozen once accepted into a ruleset.
type Rule struct {
	antecedents []Antecedent
	consequent  int
}

// New creates an empty rule without a consequent.
func New() *Rule {
	return &Rule{consequent: -1}
}

// NewDefault creates a default rule for the given class.
func NewDefault(consequent int) *Rule {
	return &Rule{consequent: consequent}
}

// SetConsequent fixes the predicted class. Growth requires it.
func (r *Rule) SetConsequent(class int) {
	r.consequent = class
}

// Consequent returns the predicted class, -1 if not set.
func (r *Rule) Consequent() int {
	return r.consequent
}

// Antecedents returns the conjunction in order.
func (r *Rule) Antecedents() []Antecedent {
	aa := make([]Antecedent, len(r.antecedents))
	copy(aa, r.antecedents)
	return aa
}

// Size returns the number of antecedents.
func (r *Rule) Size() int {
	return len(r.antecedents)
}

// Copy clones the rule. Antecedents are immutable and shared by reference.
func (r *Rule) Copy() *Rule {
	aa := make([]Antecedent, len(r.antecedents))
	copy(aa, r.antecedents)
	return &Rule{
		antecedents: aa,
		consequent:  r.consequent,
	}
}

// Covers is true when every antecedent covers the row.
func (r *Rule) Covers(row data.Row) bool {
	for _, a := range r.antecedents {
		if !a.Covers(row) {
			return false
		}
	}
	return true
}

// Covered copies the rows of the set covered by the rule.
func (r *Rule) Covered(set *data.Instances) *data.Instances {
	out := data.EmptyLike(set)
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if r.Covers(row) {
			out.Append(row)
		}
	}
	return out
}

// Uncovered copies the rows of the set not covered by the rule.
func (r *Rule) Uncovered(set *data.Instances) *data.Instances {
	out := data.EmptyLike(set)
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if !r.Covers(row) {
			out.Append(row)
		}
	}
	return out
}

// Grow appends antecedents greedily, one best split at a time,
// shrinking the growing data to the covered bag after each acceptance.
// Growth stops when no attribute yields a valid split, when the best split
// covers less accurate weight than minWeight, when the rule is already pure,
// when the data is exhausted, or when maxConds antecedents are reached (0 for no cap).
// There is no backtracking.
func (r *Rule) Grow(grow *data.Instances, minWeight float64, maxConds int) error {
	if r.consequent < 0 {
		return fmt.Errorf("cannot grow without a consequent: %w", ErrPrecondition)
	}

	// growing continues from any antecedents already on the rule,
	// so revision passes can extend a pruned prefix
	working := grow.Clone()
	used := make(map[int]bool)
	for _, a := range r.antecedents {
		working = coveredBag(a, working)
		if _, discrete := a.(*DiscreteAntecedent); discrete {
			used[a.Attribute().Index()] = true
		}
	}

	total := working.SumOfWeights()
	if total <= 0 {
		return nil
	}
	defaultRate := working.ClassWeight(r.consequent) / total
	if defaultRate <= 0 {
		// nothing left to cover
		return nil
	}

	for {
		if defaultRate >= 1.0 || working.RowCount() == 0 {
			return nil
		}
		if maxConds > 0 && len(r.antecedents) >= maxConds {
			return nil
		}

		best := SplitResult{}
		found := false
		for i := 0; i < working.AttributeCount(); i++ {
			attr := working.Attribute(i)
			if used[attr.Index()] {
				continue
			}
			res, ok := BestSplit(attr, working, defaultRate, r.consequent)
			if !ok {
				continue
			}
			if !found || res.Gain > best.Gain {
				best = res
				found = true
			}
		}
		if !found || best.Accu < minWeight {
			return nil
		}

		r.antecedents = append(r.antecedents, best.Antecedent)
		// discrete attributes are spent after one test, continuous ones can tighten further
		if _, discrete := best.Antecedent.(*DiscreteAntecedent); discrete {
			used[best.Antecedent.Attribute().Index()] = true
		}

		log.Trace().
			Str("antecedent", best.Antecedent.String()).
			Float64("gain", best.Gain).
			Float64("accu", best.Accu).
			Msg("grew antecedent")

		working = coveredBag(best.Antecedent, working)
		defaultRate = best.AccuRate
	}
}

// coveredBag shrinks the set to the rows covered by a single antecedent.
func coveredBag(a Antecedent, set *data.Instances) *data.Instances {
	out := data.EmptyLike(set)
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if a.Covers(row) {
			out.Append(row)
		}
	}
	return out
}

// worth scores a prefix of the rule on pruning data.
// With wholeData it is the fraction of the pruning weight the prefix gets right,
// counting true negatives outside its coverage. Otherwise it is the
// Laplace-corrected accuracy over the covered subset only.
func (r *Rule) worth(prefix int, prune *data.Instances, wholeData bool) float64 {
	cover, accu, trueNeg := 0.0, 0.0, 0.0
	it := prune.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		covers := true
		for _, a := range r.antecedents[:prefix] {
			if !a.Covers(row) {
				covers = false
				break
			}
		}
		if covers {
			cover += row.Weight
			if row.Class == r.consequent {
				accu += row.Weight
			}
		} else if row.Class != r.consequent {
			trueNeg += row.Weight
		}
	}
	if wholeData {
		total := prune.SumOfWeights()
		if total <= 0 {
			return 0
		}
		return (accu + trueNeg) / total
	}
	return laplace(accu, cover)
}

// Prune keeps the shortest antecedent prefix maximising worth on the pruning data.
// Prefixes are scanned in ascending length, so ties keep the shorter rule.
func (r *Rule) Prune(prune *data.Instances, wholeData bool) error {
	if r.consequent < 0 {
		return fmt.Errorf("cannot prune without a consequent: %w", ErrPrecondition)
	}
	bestLen := 0
	bestWorth := r.worth(0, prune, wholeData)
	for prefix := 1; prefix <= len(r.antecedents); prefix++ {
		if w := r.worth(prefix, prune, wholeData); w > bestWorth {
			bestWorth = w
			bestLen = prefix
		}
	}
	r.antecedents = r.antecedents[:bestLen]
	return nil
}

// CleanUp merges repeated continuous bounds on the same attribute and direction,
// keeping only the tightest one. Discrete antecedents are never altered.
// The scan runs from the last antecedent to the first.
func (r *Rule) CleanUp() {
	type key struct {
		index int
		upper bool
	}
	tightest := make(map[key]float64)
	kept := make([]Antecedent, 0, len(r.antecedents))

	for i := len(r.antecedents) - 1; i >= 0; i-- {
		a := r.antecedents[i]
		c, ok := a.(*ContinuousAntecedent)
		if !ok {
			kept = append(kept, a)
			continue
		}
		upper := c.op == Leq || c.op == Lt
		k := key{index: c.attr.Index(), upper: upper}
		bound, seen := tightest[k]
		if !seen || (upper && c.value < bound) || (!upper && c.value > bound) {
			tightest[k] = c.value
			kept = append(kept, a)
			continue
		}
		// dominated duplicate
	}

	// restore original order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	r.antecedents = kept
}

func (r *Rule) String() string {
	return r.Render(nil)
}

// Render writes the rule in its textual interchange form,
// resolving the consequent through the class attribute when given.
func (r *Rule) Render(class *data.Discrete) string {
	label := fmt.Sprintf("#%d", r.consequent)
	if class != nil {
		if l, err := class.Represent(r.consequent); err == nil {
			label = l
		}
	}
	if len(r.antecedents) == 0 {
		return fmt.Sprintf("() => %s", label)
	}
	parts := make([]string, len(r.antecedents))
	for i, a := range r.antecedents {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s => %s", strings.Join(parts, " AND "), label)
}
