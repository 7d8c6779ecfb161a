package ripper

import (
	"math"

	"github.com/drakos74/ripper/internal/data"
	"github.com/drakos74/ripper/internal/rule"
	"gonum.org/v1/gonum/stat/combin"
)

// subsetBits is the cost of identifying which k of n possible conditions a rule uses.
func subsetBits(n, k float64) float64 {
	if n <= 0 || k <= 0 || k >= n {
		return 0
	}
	pr := k / n
	return k*math.Log2(1/pr) + (n-k)*math.Log2(1/(1-pr))
}

// ruleBits is the theory cost of one rule with k antecedents
// out of n possible conditions. Half the bits account for redundancy.
func ruleBits(k, n float64) float64 {
	if k <= 0 {
		return 0
	}
	return 0.5 * (math.Log2(k) + subsetBits(n, k))
}

// logChoose2 is the base-2 log of the generalized binomial coefficient,
// tolerating fractional weights.
func logChoose2(n, k float64) float64 {
	if n <= 0 || k <= 0 || k >= n {
		return 0
	}
	return combin.LogGeneralizedBinomial(n, k) / math.Ln2
}

// exceptionBits is the cost of transmitting the classification errors :
// the false positives among the covered weight and the
// false negatives among the uncovered weight.
func exceptionBits(covered, uncovered, fp, fn float64) float64 {
	return logChoose2(covered, fp) + logChoose2(uncovered, fn)
}

// descriptionLength is the total encoding cost of the ruleset over the data :
// per-rule theory bits plus exception bits for the disjunction's errors
// against the target class.
func descriptionLength(rules []*rule.Rule, set *data.Instances, target int, possibleConds float64) float64 {
	theory := 0.0
	for _, r := range rules {
		theory += ruleBits(float64(r.Size()), possibleConds)
	}

	covered, uncovered, fp, fn := 0.0, 0.0, 0.0, 0.0
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		hit := false
		for _, r := range rules {
			if r.Covers(row) {
				hit = true
				break
			}
		}
		if hit {
			covered += row.Weight
			if row.Class != target {
				fp += row.Weight
			}
		} else {
			uncovered += row.Weight
			if row.Class == target {
				fn += row.Weight
			}
		}
	}

	return theory + exceptionBits(covered, uncovered, fp, fn)
}

// possibleConditions counts the candidate antecedents the data admits :
// one per discrete domain value, one per distinct continuous value.
func possibleConditions(set *data.Instances) float64 {
	n := 0
	for i := 0; i < set.AttributeCount(); i++ {
		switch attr := set.Attribute(i).(type) {
		case *data.Discrete:
			n += attr.Size()
		case *data.Continuous:
			n += set.DistinctValues(attr)
		}
	}
	return float64(n)
}
