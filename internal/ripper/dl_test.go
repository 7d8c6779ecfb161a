package ripper

import (
	"math"
	"testing"

	"github.com/drakos74/ripper/internal/data"
	"github.com/drakos74/ripper/internal/rule"
	"github.com/stretchr/testify/assert"
)

func TestSubsetBits(t *testing.T) {
	assert.Equal(t, 0.0, subsetBits(10, 0))
	assert.Equal(t, 0.0, subsetBits(10, 10))
	assert.Equal(t, 0.0, subsetBits(0, 0))
	// picking 2 of 4 at even odds costs one bit per condition
	assert.InDelta(t, 4.0, subsetBits(4, 2), 1e-9)
	assert.True(t, subsetBits(10, 3) > 0)
}

func TestRuleBits(t *testing.T) {
	assert.Equal(t, 0.0, ruleBits(0, 10))
	// longer rules cost more theory bits
	assert.True(t, ruleBits(2, 10) > ruleBits(1, 10))
}

func TestLogChoose2(t *testing.T) {
	// C(10,3) = 120
	assert.InDelta(t, math.Log2(120), logChoose2(10, 3), 1e-9)
	assert.Equal(t, 0.0, logChoose2(10, 0))
	assert.Equal(t, 0.0, logChoose2(3, 3))
	assert.Equal(t, 0.0, logChoose2(0, 1))
}

func TestExceptionBits(t *testing.T) {
	// a faultless ruleset transmits no exceptions
	assert.Equal(t, 0.0, exceptionBits(10, 10, 0, 0))
	assert.True(t, exceptionBits(10, 10, 2, 1) > 0)
}

func separable() *data.Instances {
	x := data.NewContinuous("x", 0)
	class := data.NewDiscrete("class", 1, "A", "B")
	set := data.NewInstances([]data.Attribute{x}, class)
	for _, v := range []float64{1, 2, 3, 4} {
		set.Add([]float64{v}, 1.0, 0)
	}
	for _, v := range []float64{6, 7, 8, 9} {
		set.Add([]float64{v}, 1.0, 1)
	}
	return set
}

func TestDescriptionLength(t *testing.T) {

	set := separable()
	possible := possibleConditions(set)
	assert.Equal(t, 8.0, possible)

	empty := descriptionLength(nil, set, 0, possible)
	// all four positives are uncovered exceptions
	assert.InDelta(t, math.Log2(70), empty, 1e-9)

	a, err := rule.NewContinuousAntecedent(set.Attribute(0).(*data.Continuous), rule.Leq, 4.0)
	assert.NoError(t, err)
	perfect := rule.New()
	perfect.SetConsequent(0)
	assert.NoError(t, perfect.Grow(set, 1.0, 0))
	assert.Equal(t, a.String(), perfect.Antecedents()[0].String())

	withRule := descriptionLength([]*rule.Rule{perfect}, set, 0, possible)
	// a faultless rule trades all exception bits for a little theory
	assert.True(t, withRule < empty)

	// a redundant second rule only adds theory bits
	withTwo := descriptionLength([]*rule.Rule{perfect, perfect.Copy()}, set, 0, possible)
	assert.True(t, withTwo > withRule)
}

func TestPossibleConditions(t *testing.T) {

	x := data.NewContinuous("x", 0)
	color := data.NewDiscrete("color", 1, "red", "green", "blue")
	class := data.NewDiscrete("class", 2, "A", "B")
	set := data.NewInstances([]data.Attribute{x, color}, class)
	set.Add([]float64{1.0, 0}, 1.0, 0)
	set.Add([]float64{2.0, 0}, 1.0, 0)
	set.Add([]float64{2.0, 1}, 1.0, 1)

	// two distinct x values plus three domain labels
	assert.Equal(t, 5.0, possibleConditions(set))
}
