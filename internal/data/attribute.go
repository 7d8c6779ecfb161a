package data

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrSchemaParse signals a malformed external schema description.
	ErrSchemaParse = errors.New("malformed schema")
	// ErrDomainLookup signals a strict lookup of a label outside a discrete domain.
	ErrDomainLookup = errors.New("value not in domain")
	// ErrData signals an unusable data container (empty partition, missing class attribute etc).
	ErrData = errors.New("invalid data")
)

// Missing is the in-row marker for an absent attribute value.
func Missing() float64 {
	return math.NaN()
}

// IsMissing checks whether the given raw value marks a missing one.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Attribute describes one input dimension of the training data.
// There are exactly two concrete kinds : Discrete and Continuous.
type Attribute interface {
	Name() string
	Index() int
	// IsAtLeastAsExpressiveAs is true if the other attribute is of the same kind and name,
	// and every value it can represent is representable by this one.
	IsAtLeastAsExpressiveAs(other Attribute) bool
}

// Discrete is an attribute over an ordered set of string labels.
// Values are stored in rows as domain indices.
// The domain is append-only : labels can be pushed during training, never removed.
type Discrete struct {
	name   string
	index  int
	domain []string
}

// NewDiscrete creates a discrete attribute with the given initial domain.
func NewDiscrete(name string, index int, domain ...string) *Discrete {
	d := make([]string, len(domain))
	copy(d, domain)
	return &Discrete{
		name:   name,
		index:  index,
		domain: d,
	}
}

func (a *Discrete) Name() string {
	return a.name
}

func (a *Discrete) Index() int {
	return a.index
}

// Domain returns a copy of the current domain labels.
func (a *Discrete) Domain() []string {
	d := make([]string, len(a.domain))
	copy(d, a.domain)
	return d
}

// Size returns the current domain size.
func (a *Discrete) Size() int {
	return len(a.domain)
}

// KeyOf resolves a label to its domain index.
// Under strict lookup an unknown label is an error,
// otherwise it is pushed to the end of the domain.
func (a *Discrete) KeyOf(label string, strict bool) (int, error) {
	for i, l := range a.domain {
		if l == label {
			return i, nil
		}
	}
	if strict {
		return -1, fmt.Errorf("'%s' for attribute '%s': %w", label, a.name, ErrDomainLookup)
	}
	a.domain = append(a.domain, label)
	return len(a.domain) - 1, nil
}

// Represent resolves a domain index back to its label.
func (a *Discrete) Represent(key int) (string, error) {
	if key < 0 || key >= len(a.domain) {
		return "", fmt.Errorf("key %d out of domain of '%s': %w", key, a.name, ErrDomainLookup)
	}
	return a.domain[key], nil
}

func (a *Discrete) IsAtLeastAsExpressiveAs(other Attribute) bool {
	o, ok := other.(*Discrete)
	if !ok || o.name != a.name {
		return false
	}
	for _, label := range o.domain {
		found := false
		for _, l := range a.domain {
			if l == label {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Continuous is a real-valued attribute.
type Continuous struct {
	name  string
	index int
}

// NewContinuous creates a continuous attribute.
func NewContinuous(name string, index int) *Continuous {
	return &Continuous{
		name:  name,
		index: index,
	}
}

func (a *Continuous) Name() string {
	return a.name
}

func (a *Continuous) Index() int {
	return a.index
}

// IsAtLeastAsExpressiveAs is true for any continuous attribute with the same name.
func (a *Continuous) IsAtLeastAsExpressiveAs(other Attribute) bool {
	o, ok := other.(*Continuous)
	return ok && o.name == a.name
}

// ParseAttribute builds an attribute from an external schema description.
// Recognised types are 'continuous' (aliases 'numeric', 'real', 'float')
// and 'discrete' (aliases 'categorical', 'nominal') with an optional enumerated domain.
func ParseAttribute(name string, typ string, index int, domain ...string) (Attribute, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "continuous", "numeric", "real", "float":
		if len(domain) > 0 {
			return nil, fmt.Errorf("continuous attribute '%s' cannot enumerate a domain: %w", name, ErrSchemaParse)
		}
		return NewContinuous(name, index), nil
	case "discrete", "categorical", "nominal":
		return NewDiscrete(name, index, domain...), nil
	default:
		return nil, fmt.Errorf("unknown attribute type '%s' for '%s': %w", typ, name, ErrSchemaParse)
	}
}
