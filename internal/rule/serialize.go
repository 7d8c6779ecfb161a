package rule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drakos74/ripper/internal/data"
)

// Record is the flat interchange form of an antecedent.
// Discrete values travel as domain labels, continuous ones as numbers.
type Record struct {
	FeatureIndex int         `json:"featureIndex"`
	FeatureName  string      `json:"featureName"`
	Operator     string      `json:"operator"`
	Value        interface{} `json:"value"`
}

// Expression is the nested boolean-logic form used by external rule evaluators.
// Op is one of 'or', 'and', 'cond'.
type Expression struct {
	Op    string        `json:"op"`
	Terms []*Expression `json:"terms,omitempty"`
	Cond  *Record       `json:"cond,omitempty"`
}

// ToRecord flattens an antecedent.
func ToRecord(a Antecedent) Record {
	rec := Record{
		FeatureIndex: a.Attribute().Index(),
		FeatureName:  a.Attribute().Name(),
		Operator:     string(a.Operator()),
	}
	switch c := a.(type) {
	case *DiscreteAntecedent:
		label, err := c.attr.Represent(c.value)
		if err != nil {
			label = fmt.Sprintf("#%d", c.value)
		}
		rec.Value = label
	case *ContinuousAntecedent:
		rec.Value = c.value
	}
	return rec
}

// FromRecord rebuilds an antecedent against the supplied attribute list.
// Discrete labels are re-indexed into the target attribute's domain,
// so the covered row set is preserved even across differing domain orders.
func FromRecord(rec Record, schema []data.Attribute) (Antecedent, error) {
	var attr data.Attribute
	for _, a := range schema {
		if a.Name() == rec.FeatureName {
			attr = a
			break
		}
	}
	if attr == nil && rec.FeatureIndex >= 0 {
		for _, a := range schema {
			if a.Index() == rec.FeatureIndex {
				attr = a
				break
			}
		}
	}
	if attr == nil {
		return nil, fmt.Errorf("unknown feature '%s': %w", rec.FeatureName, ErrParse)
	}

	switch a := attr.(type) {
	case *data.Discrete:
		label, ok := rec.Value.(string)
		if !ok {
			return nil, fmt.Errorf("discrete value '%v' for '%s': %w", rec.Value, rec.FeatureName, ErrParse)
		}
		key, err := a.KeyOf(label, false)
		if err != nil {
			return nil, err
		}
		return NewDiscreteAntecedent(a, Operator(rec.Operator), key)
	case *data.Continuous:
		var v float64
		switch value := rec.Value.(type) {
		case float64:
			v = value
		case string:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("continuous value '%s' for '%s': %w", value, rec.FeatureName, ErrParse)
			}
			v = f
		default:
			return nil, fmt.Errorf("continuous value '%v' for '%s': %w", rec.Value, rec.FeatureName, ErrParse)
		}
		return NewContinuousAntecedent(a, Operator(rec.Operator), v)
	}
	return nil, fmt.Errorf("feature '%s' of unknown kind: %w", rec.FeatureName, ErrParse)
}

// Records flattens the rule's conjunction in order.
func (r *Rule) Records() []Record {
	recs := make([]Record, len(r.antecedents))
	for i, a := range r.antecedents {
		recs[i] = ToRecord(a)
	}
	return recs
}

// FromRecords rebuilds a rule from its flat form against the supplied attribute list.
func FromRecords(recs []Record, schema []data.Attribute, consequent int) (*Rule, error) {
	r := &Rule{consequent: consequent}
	for _, rec := range recs {
		a, err := FromRecord(rec, schema)
		if err != nil {
			return nil, err
		}
		r.antecedents = append(r.antecedents, a)
	}
	return r, nil
}

// Expression renders the conjunction as a boolean-logic tree.
func (r *Rule) Expression() *Expression {
	terms := make([]*Expression, len(r.antecedents))
	for i, a := range r.antecedents {
		rec := ToRecord(a)
		terms[i] = &Expression{Op: "cond", Cond: &rec}
	}
	return &Expression{Op: "and", Terms: terms}
}

// FromExpression rebuilds a rule from an 'and' tree against the supplied attribute list.
func FromExpression(expr *Expression, schema []data.Attribute, consequent int) (*Rule, error) {
	if expr == nil || expr.Op != "and" {
		return nil, fmt.Errorf("expected an 'and' expression: %w", ErrParse)
	}
	recs := make([]Record, 0, len(expr.Terms))
	for _, term := range expr.Terms {
		if term.Op != "cond" || term.Cond == nil {
			return nil, fmt.Errorf("expected a 'cond' term, got '%s': %w", term.Op, ErrParse)
		}
		recs = append(recs, *term.Cond)
	}
	return FromRecords(recs, schema, consequent)
}

// operators in matching order, longer ones first
var operators = []Operator{Leq, Geq, Neq, Gt, Lt, Eq}

// ParseRule reads one textual rule line of the form
// '(a <= 4) AND (color = red) => CLASS', or '() => CLASS' for a default rule.
func ParseRule(line string, schema []data.Attribute, class *data.Discrete) (*Rule, error) {
	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("no consequent in '%s': %w", line, ErrParse)
	}
	label := strings.TrimSpace(parts[1])
	consequent, err := class.KeyOf(label, false)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(parts[0])
	if body == "()" || body == "" {
		return NewDefault(consequent), nil
	}

	r := &Rule{consequent: consequent}
	for _, clause := range strings.Split(body, " AND ") {
		a, err := parseClause(clause, schema)
		if err != nil {
			return nil, err
		}
		r.antecedents = append(r.antecedents, a)
	}
	return r, nil
}

func parseClause(clause string, schema []data.Attribute) (Antecedent, error) {
	c := strings.TrimSpace(clause)
	if !strings.HasPrefix(c, "(") || !strings.HasSuffix(c, ")") {
		return nil, fmt.Errorf("clause '%s' not parenthesised: %w", clause, ErrParse)
	}
	c = c[1 : len(c)-1]

	for _, op := range operators {
		idx := strings.Index(c, string(op))
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(c[:idx])
		value := strings.TrimSpace(c[idx+len(op):])
		if name == "" || value == "" {
			return nil, fmt.Errorf("clause '%s' incomplete: %w", clause, ErrParse)
		}
		return FromRecord(Record{
			FeatureIndex: -1,
			FeatureName:  name,
			Operator:     string(op),
			Value:        value,
		}, schema)
	}
	return nil, fmt.Errorf("no operator in clause '%s': %w", clause, ErrParse)
}
