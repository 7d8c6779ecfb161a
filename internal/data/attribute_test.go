package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttribute(t *testing.T) {

	type test struct {
		typ    string
		domain []string
		err    error
		kind   interface{}
	}

	tests := map[string]test{
		"continuous": {
			typ:  "continuous",
			kind: &Continuous{},
		},
		"numeric-alias": {
			typ:  "Numeric",
			kind: &Continuous{},
		},
		"float-alias": {
			typ:  " float ",
			kind: &Continuous{},
		},
		"discrete": {
			typ:    "discrete",
			domain: []string{"red", "green"},
			kind:   &Discrete{},
		},
		"nominal-alias": {
			typ:  "nominal",
			kind: &Discrete{},
		},
		"unknown-type": {
			typ: "fancy",
			err: ErrSchemaParse,
		},
		"continuous-with-domain": {
			typ:    "continuous",
			domain: []string{"a"},
			err:    ErrSchemaParse,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			attr, err := ParseAttribute("attr", tt.typ, 0, tt.domain...)
			if tt.err != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			assert.NoError(t, err)
			assert.IsType(t, tt.kind, attr)
			assert.Equal(t, "attr", attr.Name())
			assert.Equal(t, 0, attr.Index())
		})
	}
}

func TestDiscrete_KeyOf(t *testing.T) {

	attr := NewDiscrete("color", 0, "red", "green")

	key, err := attr.KeyOf("green", true)
	assert.NoError(t, err)
	assert.Equal(t, 1, key)

	// strict lookup of an unknown label fails
	_, err = attr.KeyOf("blue", true)
	assert.True(t, errors.Is(err, ErrDomainLookup))
	assert.Equal(t, 2, attr.Size())

	// non-strict lookup pushes the label to the domain
	key, err = attr.KeyOf("blue", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, key)
	assert.Equal(t, 3, attr.Size())

	label, err := attr.Represent(2)
	assert.NoError(t, err)
	assert.Equal(t, "blue", label)

	_, err = attr.Represent(5)
	assert.True(t, errors.Is(err, ErrDomainLookup))
}

func TestAttribute_IsAtLeastAsExpressiveAs(t *testing.T) {

	type test struct {
		a, b     Attribute
		expected bool
	}

	tests := map[string]test{
		"superset-domain": {
			a:        NewDiscrete("color", 0, "red", "green", "blue"),
			b:        NewDiscrete("color", 0, "red", "green"),
			expected: true,
		},
		"subset-domain": {
			a:        NewDiscrete("color", 0, "red"),
			b:        NewDiscrete("color", 0, "red", "green"),
			expected: false,
		},
		"different-name": {
			a:        NewDiscrete("color", 0, "red"),
			b:        NewDiscrete("shade", 0, "red"),
			expected: false,
		},
		"continuous-pair": {
			a:        NewContinuous("x", 0),
			b:        NewContinuous("x", 3),
			expected: true,
		},
		"mixed-kinds": {
			a:        NewContinuous("x", 0),
			b:        NewDiscrete("x", 0, "1"),
			expected: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.IsAtLeastAsExpressiveAs(tt.b))
		})
	}
}
