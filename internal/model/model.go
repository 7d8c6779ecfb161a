package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/drakos74/ripper/internal/data"
	"github.com/drakos74/ripper/internal/rule"
)

// Ruleset is the ordered rule list trained for one target class,
// terminated by exactly one default rule.
type Ruleset struct {
	Target int
	Rules  []*rule.Rule
}

// Default returns the trailing default rule.
func (rs *Ruleset) Default() *rule.Rule {
	return rs.Rules[len(rs.Rules)-1]
}

// Body returns the non-default rules in order.
func (rs *Ruleset) Body() []*rule.Rule {
	return rs.Rules[:len(rs.Rules)-1]
}

// Conditions counts the antecedents across all rules.
func (rs *Ruleset) Conditions() int {
	n := 0
	for _, r := range rs.Rules {
		n += r.Size()
	}
	return n
}

// Expression renders the positive side of the ruleset as a disjunction of conjunctions.
func (rs *Ruleset) Expression() *rule.Expression {
	terms := make([]*rule.Expression, 0, len(rs.Rules))
	for _, r := range rs.Body() {
		terms = append(terms, r.Expression())
	}
	return &rule.Expression{Op: "or", Terms: terms}
}

// Render writes the ruleset in its textual interchange form, one rule per line.
func (rs *Ruleset) Render(class *data.Discrete) string {
	lines := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		lines[i] = r.Render(class)
	}
	return strings.Join(lines, "\n")
}

// Measures are the per-rule quality figures :
// the plain ones are computed on the rows that reach the rule under
// first-match evaluation, the global ones against the whole population.
type Measures struct {
	Covered          float64 `json:"covered"`
	Support          float64 `json:"support"`
	Confidence       float64 `json:"confidence"`
	Lift             float64 `json:"lift"`
	Conviction       float64 `json:"conviction"`
	GlobalCovered    float64 `json:"globalCovered"`
	GlobalSupport    float64 `json:"globalSupport"`
	GlobalConfidence float64 `json:"globalConfidence"`
	GlobalLift       float64 `json:"globalLift"`
	GlobalConviction float64 `json:"globalConviction"`
}

// RuleRecord is the stored artifact form of one rule with its measures.
type RuleRecord struct {
	Antecedents []rule.Record `json:"antecedents"`
	Consequent  string        `json:"consequent"`
	Measures
}

// RuleBasedModel is the serving artifact : an ordered rule list with a trailing
// default rule, applied first-match-wins. It is immutable after training.
type RuleBasedModel struct {
	schema   []data.Attribute
	class    *data.Discrete
	rules    []*rule.Rule
	measures []Measures
}

// NewRuleBasedModel assembles a model from an ordered rule list
// terminated by a default rule.
func NewRuleBasedModel(schema []data.Attribute, class *data.Discrete, rules []*rule.Rule) (*RuleBasedModel, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules: %w", data.ErrData)
	}
	last := rules[len(rules)-1]
	if last.Size() != 0 {
		return nil, fmt.Errorf("last rule '%s' is not a default rule: %w", last, data.ErrData)
	}
	for _, r := range rules[:len(rules)-1] {
		if r.Size() == 0 {
			return nil, fmt.Errorf("default rule before the end: %w", data.ErrData)
		}
	}
	return &RuleBasedModel{
		schema: schema,
		class:  class,
		rules:  rules,
	}, nil
}

// Compose flattens per-class rulesets into one serving model.
// The order hint lists target classes by precedence; the default rule
// of the last ruleset in order terminates the model.
func Compose(schema []data.Attribute, class *data.Discrete, rulesets []*Ruleset, order []int) (*RuleBasedModel, error) {
	byTarget := make(map[int]*Ruleset, len(rulesets))
	for _, rs := range rulesets {
		byTarget[rs.Target] = rs
	}
	if len(order) == 0 {
		for _, rs := range rulesets {
			order = append(order, rs.Target)
		}
	}

	rules := make([]*rule.Rule, 0)
	var last *Ruleset
	for _, target := range order {
		rs, ok := byTarget[target]
		if !ok {
			return nil, fmt.Errorf("no ruleset for class %d: %w", target, data.ErrData)
		}
		rules = append(rules, rs.Body()...)
		last = rs
	}
	if last == nil {
		return nil, fmt.Errorf("no rulesets to compose: %w", data.ErrData)
	}
	rules = append(rules, last.Default())
	return NewRuleBasedModel(schema, class, rules)
}

// Rules returns the ordered rule list, default rule last.
func (m *RuleBasedModel) Rules() []*rule.Rule {
	rr := make([]*rule.Rule, len(m.rules))
	copy(rr, m.rules)
	return rr
}

// ClassAttribute returns the class attribute predictions refer to.
func (m *RuleBasedModel) ClassAttribute() *data.Discrete {
	return m.class
}

// Predict evaluates the rules in stored order and returns the consequent
// of the first rule covering the row. The default rule catches the rest;
// missing or unseen values simply fail to cover.
func (m *RuleBasedModel) Predict(row data.Row) int {
	for _, r := range m.rules {
		if r.Covers(row) {
			return r.Consequent()
		}
	}
	return m.rules[len(m.rules)-1].Consequent()
}

// conviction is (1 - prior) / (1 - confidence), capped so the
// artifact stays JSON-encodable when confidence hits 1.
func conviction(prior, confidence float64) float64 {
	if confidence >= 1 {
		return math.MaxFloat64
	}
	return (1 - prior) / (1 - confidence)
}

func measure(covered, accurate, popWeight, priorWeight float64) (support, confidence, lift, conv float64) {
	if popWeight <= 0 {
		return 0, 0, 0, 0
	}
	support = accurate / popWeight
	if covered > 0 {
		confidence = accurate / covered
	}
	prior := priorWeight / popWeight
	if prior > 0 {
		lift = confidence / prior
	}
	conv = conviction(prior, confidence)
	return support, confidence, lift, conv
}

// Evaluate accumulates per-rule coverage against labeled instances and
// computes the measures. Results are kept on the model for serialization.
func (m *RuleBasedModel) Evaluate(set *data.Instances) ([]Measures, error) {
	if set.RowCount() == 0 {
		return nil, fmt.Errorf("empty evaluation set: %w", data.ErrData)
	}

	mm := make([]Measures, len(m.rules))
	total := set.SumOfWeights()

	// population of rows still reaching rule i under first-match order
	population := set.Clone()
	for i, r := range m.rules {
		popWeight := population.SumOfWeights()
		priorWeight := population.ClassWeight(r.Consequent())

		covered, accurate := 0.0, 0.0
		it := population.Iterate()
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			if r.Covers(row) {
				covered += row.Weight
				if row.Class == r.Consequent() {
					accurate += row.Weight
				}
			}
		}
		support, confidence, lift, conv := measure(covered, accurate, popWeight, priorWeight)

		gCovered, gAccurate := 0.0, 0.0
		git := set.Iterate()
		for row, ok := git.Next(); ok; row, ok = git.Next() {
			if r.Covers(row) {
				gCovered += row.Weight
				if row.Class == r.Consequent() {
					gAccurate += row.Weight
				}
			}
		}
		gSupport, gConfidence, gLift, gConv := measure(gCovered, gAccurate, total, set.ClassWeight(r.Consequent()))

		mm[i] = Measures{
			Covered:          covered,
			Support:          support,
			Confidence:       confidence,
			Lift:             lift,
			Conviction:       conv,
			GlobalCovered:    gCovered,
			GlobalSupport:    gSupport,
			GlobalConfidence: gConfidence,
			GlobalLift:       gLift,
			GlobalConviction: gConv,
		}

		population = r.Uncovered(population)
	}

	m.measures = mm
	return mm, nil
}

// Accuracy is the weighted fraction of rows the model classifies correctly.
func (m *RuleBasedModel) Accuracy(set *data.Instances) float64 {
	total := set.SumOfWeights()
	if total <= 0 {
		return 0
	}
	correct := 0.0
	it := set.Iterate()
	for row, ok := it.Next(); ok; row, ok = it.Next() {
		if m.Predict(row) == row.Class {
			correct += row.Weight
		}
	}
	return correct / total
}

// Records flattens the model into its stored artifact form.
// Measures are zero unless Evaluate ran beforehand.
func (m *RuleBasedModel) Records() ([]RuleRecord, error) {
	records := make([]RuleRecord, len(m.rules))
	for i, r := range m.rules {
		label, err := m.class.Represent(r.Consequent())
		if err != nil {
			return nil, err
		}
		records[i] = RuleRecord{
			Antecedents: r.Records(),
			Consequent:  label,
		}
		if m.measures != nil {
			records[i].Measures = m.measures[i]
		}
	}
	return records, nil
}

// FromRecords rebuilds a model from its stored artifact form
// against the supplied schema and class attribute.
func FromRecords(records []RuleRecord, schema []data.Attribute, class *data.Discrete) (*RuleBasedModel, error) {
	rules := make([]*rule.Rule, len(records))
	measures := make([]Measures, len(records))
	for i, rec := range records {
		consequent, err := class.KeyOf(rec.Consequent, false)
		if err != nil {
			return nil, err
		}
		r, err := rule.FromRecords(rec.Antecedents, schema, consequent)
		if err != nil {
			return nil, err
		}
		rules[i] = r
		measures[i] = rec.Measures
	}
	m, err := NewRuleBasedModel(schema, class, rules)
	if err != nil {
		return nil, err
	}
	m.measures = measures
	return m, nil
}

// Render writes the whole model in its textual interchange form.
func (m *RuleBasedModel) Render() string {
	lines := make([]string, len(m.rules))
	for i, r := range m.rules {
		lines[i] = r.Render(m.class)
	}
	return strings.Join(lines, "\n")
}
