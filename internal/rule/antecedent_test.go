package rule

import (
	"math"
	"testing"

	"github.com/drakos74/ripper/internal/data"
	"github.com/stretchr/testify/assert"
)

func continuousSet(values []float64, classes []int) *data.Instances {
	x := data.NewContinuous("x", 0)
	class := data.NewDiscrete("class", 1, "A", "B")
	set := data.NewInstances([]data.Attribute{x}, class)
	for i, v := range values {
		set.Add([]float64{v}, 1.0, classes[i])
	}
	return set
}

func colorSet(colors []int, classes []int) *data.Instances {
	color := data.NewDiscrete("color", 0, "red", "green", "blue")
	class := data.NewDiscrete("class", 1, "A", "B")
	set := data.NewInstances([]data.Attribute{color}, class)
	for i, c := range colors {
		set.Add([]float64{float64(c)}, 1.0, classes[i])
	}
	return set
}

func TestBestSplit_Continuous(t *testing.T) {

	// perfectly separable on x : 1..4 => A, 6..9 => B
	set := continuousSet(
		[]float64{6, 1, 9, 4, 2, 8, 3, 7},
		[]int{1, 0, 1, 0, 0, 1, 0, 1},
	)

	res, ok := BestSplit(set.Attribute(0), set, 0.5, 0)
	assert.True(t, ok)
	assert.Equal(t, Leq, res.Antecedent.Operator())
	assert.Equal(t, 4.0, res.Antecedent.Value())
	assert.Equal(t, 4.0, res.Accu)
	assert.Equal(t, 4.0, res.Cover)
	// laplace rate (4+1)/(4+1) over a default of one half gains one bit per covered unit
	assert.InDelta(t, 1.0, res.AccuRate, 1e-9)
	assert.InDelta(t, 4.0, res.Gain, 1e-9)
}

func TestBestSplit_Continuous_EqualValueGroups(t *testing.T) {

	// no boundary may fall inside a group of equal values
	set := continuousSet(
		[]float64{1, 1, 1, 2, 2},
		[]int{0, 0, 1, 1, 1},
	)

	res, ok := BestSplit(set.Attribute(0), set, 3.0/5.0, 1)
	assert.True(t, ok)
	assert.Equal(t, Gt, res.Antecedent.Operator())
	assert.Equal(t, 1.0, res.Antecedent.Value())
	assert.Equal(t, 2.0, res.Accu)
	assert.Equal(t, 2.0, res.Cover)
}

func TestBestSplit_Continuous_AllMissing(t *testing.T) {

	set := continuousSet(
		[]float64{data.Missing(), data.Missing()},
		[]int{0, 1},
	)

	_, ok := BestSplit(set.Attribute(0), set, 0.5, 0)
	assert.False(t, ok)
}

func TestBestSplit_Discrete(t *testing.T) {

	// red is pure for A, green and blue belong to B
	set := colorSet(
		[]int{0, 1, 0, 2, 0, 1},
		[]int{0, 1, 0, 1, 0, 1},
	)

	res, ok := BestSplit(set.Attribute(0), set, 0.5, 0)
	assert.True(t, ok)
	assert.Equal(t, Eq, res.Antecedent.Operator())
	assert.Equal(t, "(color = red)", res.Antecedent.String())
	assert.Equal(t, res.Cover, res.Accu)
	assert.Equal(t, 3.0, res.Accu)
	assert.True(t, res.Gain > 0)
}

func TestBestSplit_Discrete_MissingExcluded(t *testing.T) {

	set := colorSet(nil, nil)
	set.Add([]float64{0}, 1.0, 0)
	set.Add([]float64{data.Missing()}, 1.0, 0)

	res, ok := BestSplit(set.Attribute(0), set, 0.5, 0)
	assert.True(t, ok)
	// the missing row contributes to no bag
	assert.Equal(t, 1.0, res.Cover)
}

func TestAntecedent_Covers(t *testing.T) {

	x := data.NewContinuous("x", 0)
	color := data.NewDiscrete("color", 1, "red", "green")
	class := data.NewDiscrete("class", 2, "A", "B")
	set := data.NewInstances([]data.Attribute{x, color}, class)
	row := set.Add([]float64{3.0, 1}, 1.0, 0)
	missing := set.Add([]float64{data.Missing(), data.Missing()}, 1.0, 0)

	type test struct {
		attr     data.Attribute
		op       Operator
		value    float64
		expected bool
	}

	tests := map[string]test{
		"leq-covers":     {attr: x, op: Leq, value: 3.0, expected: true},
		"leq-misses":     {attr: x, op: Leq, value: 2.0, expected: false},
		"gt-misses":      {attr: x, op: Gt, value: 3.0, expected: false},
		"geq-covers":     {attr: x, op: Geq, value: 3.0, expected: true},
		"lt-misses":      {attr: x, op: Lt, value: 3.0, expected: false},
		"eq-covers":      {attr: color, op: Eq, value: 1, expected: true},
		"eq-misses":      {attr: color, op: Eq, value: 0, expected: false},
		"neq-covers":     {attr: color, op: Neq, value: 0, expected: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var a Antecedent
			var err error
			switch attr := tt.attr.(type) {
			case *data.Continuous:
				a, err = NewContinuousAntecedent(attr, tt.op, tt.value)
			case *data.Discrete:
				a, err = NewDiscreteAntecedent(attr, tt.op, int(tt.value))
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, a.Covers(row))
			// a missing value never covers
			assert.False(t, a.Covers(missing))
		})
	}
}

func TestNewAntecedent_OperatorValidation(t *testing.T) {

	x := data.NewContinuous("x", 0)
	color := data.NewDiscrete("color", 1, "red")

	_, err := NewContinuousAntecedent(x, Eq, 1.0)
	assert.Error(t, err)

	_, err = NewDiscreteAntecedent(color, Leq, 0)
	assert.Error(t, err)
}

func TestLaplace(t *testing.T) {
	assert.Equal(t, 1.0, laplace(0, 0))
	assert.Equal(t, 0.5, laplace(0, 1))
	assert.InDelta(t, 5.0/6.0, laplace(4, 5), 1e-9)

	// corrected rate stays in (0,1] for any coverage
	for cover := 0.0; cover <= 10; cover++ {
		for accu := 0.0; accu <= cover; accu++ {
			l := laplace(accu, cover)
			assert.True(t, l > 0 && l <= 1)
		}
	}
}

func TestGain(t *testing.T) {
	// a pure bag over a default of one half gains one bit per covered unit
	assert.InDelta(t, 4.0, gain(4, 4, 0.5), 1e-9)
	// no improvement over a perfect default
	assert.True(t, gain(2, 4, 1.0) <= 0)
	assert.False(t, math.IsNaN(gain(0, 0, 0.5)))
}
