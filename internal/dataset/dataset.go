package dataset

import (
	"fmt"

	"github.com/drakos74/ripper/internal/data"
	"github.com/sjwhitworth/golearn/base"
)

// FromCSV loads a csv file with headers into an engine container.
// The class column follows the grid's class attribute designation.
func FromCSV(path string) (*data.Instances, error) {
	grid, err := base.ParseCSVToInstances(path, true)
	if err != nil {
		return nil, fmt.Errorf("could not parse csv '%s': %w", path, err)
	}
	return FromGrid(grid)
}

// FromGrid converts a data grid into an engine container :
// categorical attributes become discrete ones with their domain,
// float attributes become continuous ones, rows carry unit weight.
func FromGrid(grid base.FixedDataGrid) (*data.Instances, error) {
	classAttrs := grid.AllClassAttributes()
	if len(classAttrs) != 1 {
		return nil, fmt.Errorf("expected one class attribute, got %d: %w", len(classAttrs), data.ErrData)
	}
	classCat, ok := classAttrs[0].(*base.CategoricalAttribute)
	if !ok {
		return nil, fmt.Errorf("class attribute '%s' is not categorical: %w", classAttrs[0].GetName(), data.ErrData)
	}

	attrs := base.NonClassAttributes(grid)
	schema := make([]data.Attribute, len(attrs))
	for i, a := range attrs {
		switch attr := a.(type) {
		case *base.FloatAttribute:
			schema[i] = data.NewContinuous(attr.GetName(), i)
		case *base.CategoricalAttribute:
			schema[i] = data.NewDiscrete(attr.GetName(), i, attr.GetValues()...)
		default:
			return nil, fmt.Errorf("attribute '%s' of unsupported kind: %w", a.GetName(), data.ErrSchemaParse)
		}
	}
	class := data.NewDiscrete(classAttrs[0].GetName(), len(attrs), classCat.GetValues()...)

	set := data.NewInstances(schema, class)

	specs := base.ResolveAttributes(grid, attrs)
	classSpec := base.ResolveAttributes(grid, classAttrs)[0]

	_, rows := grid.Size()
	for i := 0; i < rows; i++ {
		values := make([]float64, len(attrs))
		for j, spec := range specs {
			raw := grid.Get(spec, i)
			switch attr := attrs[j].(type) {
			case *base.FloatAttribute:
				if len(raw) == 0 {
					values[j] = data.Missing()
				} else {
					values[j] = base.UnpackBytesToFloat(raw)
				}
			case *base.CategoricalAttribute:
				label := attr.GetStringFromSysVal(raw)
				if label == "" {
					values[j] = data.Missing()
				} else {
					key, err := schema[j].(*data.Discrete).KeyOf(label, false)
					if err != nil {
						return nil, err
					}
					values[j] = float64(key)
				}
			}
		}

		label := classCat.GetStringFromSysVal(grid.Get(classSpec, i))
		key, err := class.KeyOf(label, true)
		if err != nil {
			return nil, err
		}
		set.Add(values, 1.0, key)
	}
	return set, nil
}
