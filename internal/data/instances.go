package data

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Row is one weighted instance : a value vector over the schema plus a class key.
// A missing value is marked with Missing().
type Row struct {
	ID     int
	Weight float64
	Values []float64
	Class  int
}

// Value returns the raw value of the row for the given attribute.
func (r Row) Value(attr Attribute) float64 {
	return r.Values[attr.Index()]
}

// IsMissing checks whether the row misses a value for the given attribute.
func (r Row) IsMissing(attr Attribute) bool {
	return IsMissing(r.Values[attr.Index()])
}

func (r Row) copy() Row {
	vv := make([]float64, len(r.Values))
	copy(vv, r.Values)
	return Row{
		ID:     r.ID,
		Weight: r.Weight,
		Values: vv,
		Class:  r.Class,
	}
}

// Instances owns an ordered, weighted set of rows over a fixed attribute schema,
// plus one designated class attribute.
// Slices and filtered copies are independent value objects :
// they never alias mutable state back to the parent.
type Instances struct {
	schema []Attribute
	class  *Discrete
	rows   []Row
	nextID int
}

// NewInstances creates an empty container for the given schema and class attribute.
func NewInstances(schema []Attribute, class *Discrete) *Instances {
	s := make([]Attribute, len(schema))
	copy(s, schema)
	return &Instances{
		schema: s,
		class:  class,
		rows:   make([]Row, 0),
	}
}

// EmptyLike creates a new container with the same schema and class attribute, and no rows.
func EmptyLike(other *Instances) *Instances {
	set := NewInstances(other.schema, other.class)
	set.nextID = other.nextID
	return set
}

// Add appends a new row, assigning it the next stable identifier.
func (set *Instances) Add(values []float64, weight float64, class int) Row {
	vv := make([]float64, len(values))
	copy(vv, values)
	row := Row{
		ID:     set.nextID,
		Weight: weight,
		Values: vv,
		Class:  class,
	}
	set.nextID++
	set.rows = append(set.rows, row)
	return row
}

// Append copies the given row into the container, preserving its identifier.
func (set *Instances) Append(row Row) {
	set.rows = append(set.rows, row.copy())
	if row.ID >= set.nextID {
		set.nextID = row.ID + 1
	}
}

// AppendRowFrom copies one row of the source, identified by its stable id.
// The source is unaffected.
func (set *Instances) AppendRowFrom(source *Instances, rowID int) error {
	for _, row := range source.rows {
		if row.ID == rowID {
			set.Append(row)
			return nil
		}
	}
	return fmt.Errorf("no row with id %d: %w", rowID, ErrData)
}

// SortByAttribute orders rows ascending by the attribute value.
// The sort is stable and rows missing the value go after all others,
// keeping their prior relative order.
func (set *Instances) SortByAttribute(attr Attribute) {
	i := attr.Index()
	sort.SliceStable(set.rows, func(a, b int) bool {
		va, vb := set.rows[a].Values[i], set.rows[b].Values[i]
		if IsMissing(va) {
			return false
		}
		if IsMissing(vb) {
			return true
		}
		return va < vb
	})
}

// SliceByRange copies the rows [offset, offset+length) in order, identifiers intact.
func (set *Instances) SliceByRange(offset, length int) *Instances {
	out := EmptyLike(set)
	for i := offset; i < offset+length && i < len(set.rows); i++ {
		out.Append(set.rows[i])
	}
	return out
}

// Clone copies the whole container.
func (set *Instances) Clone() *Instances {
	return set.SliceByRange(0, len(set.rows))
}

// Row returns the row at the given position in current order.
func (set *Instances) Row(i int) Row {
	return set.rows[i]
}

// RowCount returns the number of rows.
func (set *Instances) RowCount() int {
	return len(set.rows)
}

// AttributeCount returns the number of schema attributes, excluding the class.
func (set *Instances) AttributeCount() int {
	return len(set.schema)
}

// Attribute returns the schema attribute at the given index.
func (set *Instances) Attribute(i int) Attribute {
	return set.schema[i]
}

// Schema returns the schema attributes in order.
func (set *Instances) Schema() []Attribute {
	s := make([]Attribute, len(set.schema))
	copy(s, set.schema)
	return s
}

// ClassAttribute returns the designated class attribute.
func (set *Instances) ClassAttribute() *Discrete {
	return set.class
}

// Weights returns the row weights in current order.
func (set *Instances) Weights() []float64 {
	ww := make([]float64, len(set.rows))
	for i, row := range set.rows {
		ww[i] = row.Weight
	}
	return ww
}

// SumOfWeights returns the total weight of the container.
func (set *Instances) SumOfWeights() float64 {
	if len(set.rows) == 0 {
		return 0
	}
	return floats.Sum(set.Weights())
}

// ClassWeight returns the total weight of rows with the given class key.
func (set *Instances) ClassWeight(class int) float64 {
	w := 0.0
	for _, row := range set.rows {
		if row.Class == class {
			w += row.Weight
		}
	}
	return w
}

// MajorityClass returns the class key with the largest total weight.
// Ties resolve to the smaller key.
func (set *Instances) MajorityClass() int {
	ww := make([]float64, set.class.Size())
	for _, row := range set.rows {
		if row.Class >= 0 && row.Class < len(ww) {
			ww[row.Class] += row.Weight
		}
	}
	best := 0
	for i, w := range ww {
		if w > ww[best] {
			best = i
		}
	}
	return best
}

// MissingFraction returns the weighted fraction of rows missing the attribute value.
func (set *Instances) MissingFraction(attr Attribute) float64 {
	total := set.SumOfWeights()
	if total <= 0 {
		return 0
	}
	missing := 0.0
	for _, row := range set.rows {
		if row.IsMissing(attr) {
			missing += row.Weight
		}
	}
	return missing / total
}

// DistinctValues counts the distinct non-missing values of the attribute.
func (set *Instances) DistinctValues(attr Attribute) int {
	seen := make(map[float64]struct{})
	for _, row := range set.rows {
		if row.IsMissing(attr) {
			continue
		}
		seen[row.Value(attr)] = struct{}{}
	}
	return len(seen)
}

// MaskAttribute blanks the attribute value on every row.
// A masked attribute yields no splits and covers nothing.
func (set *Instances) MaskAttribute(attr Attribute) {
	i := attr.Index()
	for r := range set.rows {
		set.rows[r].Values[i] = Missing()
	}
}

// QuantizeEqualFrequency maps the attribute's values onto at most the given
// number of equal-frequency buckets, each value replaced by its bucket maximum.
// Attributes with no more distinct values than buckets are left untouched.
func (set *Instances) QuantizeEqualFrequency(attr *Continuous, buckets int) {
	if buckets <= 0 || set.DistinctValues(attr) <= buckets {
		return
	}
	i := attr.Index()
	values := make([]float64, 0, len(set.rows))
	for _, row := range set.rows {
		if !row.IsMissing(attr) {
			values = append(values, row.Values[i])
		}
	}
	sort.Float64s(values)

	per := (len(values) + buckets - 1) / buckets
	cuts := make([]float64, 0, buckets)
	for b := per - 1; b < len(values); b += per {
		cuts = append(cuts, values[b])
	}
	if cuts[len(cuts)-1] < values[len(values)-1] {
		cuts = append(cuts, values[len(values)-1])
	}

	for r := range set.rows {
		v := set.rows[r].Values[i]
		if IsMissing(v) {
			continue
		}
		for _, cut := range cuts {
			if v <= cut {
				set.rows[r].Values[i] = cut
				break
			}
		}
	}
}

// RowIterator produces the (id, row) sequence in current order.
// It is finite and restartable.
type RowIterator struct {
	set *Instances
	pos int
}

// Iterate creates a fresh iterator over the container.
func (set *Instances) Iterate() *RowIterator {
	return &RowIterator{set: set}
}

// Next returns the next row, or false when the sequence is exhausted.
func (it *RowIterator) Next() (Row, bool) {
	if it.pos >= len(it.set.rows) {
		return Row{}, false
	}
	row := it.set.rows[it.pos]
	it.pos++
	return row, true
}

// Reset restarts the sequence from the beginning.
func (it *RowIterator) Reset() {
	it.pos = 0
}
