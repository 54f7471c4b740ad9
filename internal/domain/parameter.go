package domain

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Shape is the (rows, cols) extent of one named parameter component.
type Shape struct {
	Rows, Cols int
}

// Size returns the number of scalar entries in the component.
func (s Shape) Size() int { return s.Rows * s.Cols }

// ParameterType maps component names to their shapes. Every operator and
// functional is built against one fixed ParameterType.
type ParameterType map[string]Shape

// ComponentNames returns the component names in sorted order, which is the
// canonical iteration order everywhere a deterministic layout is needed.
func (t ParameterType) ComponentNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalSize returns the number of scalar entries over all components.
func (t ParameterType) TotalSize() int {
	total := 0
	for _, shape := range t {
		total += shape.Size()
	}
	return total
}

// Check verifies that mu carries exactly the components of t with matching
// shapes.
func (t ParameterType) Check(mu Parameter) error {
	if len(mu.values) != len(t) {
		return fmt.Errorf("%w: got %d components, want %d",
			ErrParameterTypeMismatch, len(mu.values), len(t))
	}
	for name, shape := range t {
		m, ok := mu.values[name]
		if !ok {
			return fmt.Errorf("%w: missing component %q", ErrParameterTypeMismatch, name)
		}
		r, c := m.Dims()
		if r != shape.Rows || c != shape.Cols {
			return fmt.Errorf("%w: component %q has shape (%d,%d), want (%d,%d)",
				ErrParameterTypeMismatch, name, r, c, shape.Rows, shape.Cols)
		}
	}
	return nil
}

// Parameter is an immutable assignment of a value array to every component
// of a ParameterType.
type Parameter struct {
	values map[string]*mat.Dense
}

// NewParameter builds a parameter from row-major component data. The data
// slices are copied.
func NewParameter(ptype ParameterType, values map[string][]float64) (Parameter, error) {
	p := Parameter{values: make(map[string]*mat.Dense, len(ptype))}
	for name, shape := range ptype {
		data, ok := values[name]
		if !ok {
			return Parameter{}, fmt.Errorf("%w: missing component %q", ErrParameterTypeMismatch, name)
		}
		if len(data) != shape.Size() {
			return Parameter{}, fmt.Errorf("%w: component %q has %d entries, want %d",
				ErrParameterTypeMismatch, name, len(data), shape.Size())
		}
		copied := make([]float64, len(data))
		copy(copied, data)
		p.values[name] = mat.NewDense(shape.Rows, shape.Cols, copied)
	}
	if len(values) != len(ptype) {
		return Parameter{}, fmt.Errorf("%w: got %d components, want %d",
			ErrParameterTypeMismatch, len(values), len(ptype))
	}
	return p, nil
}

// ConstantParameter assigns the same value to every entry of every component.
func ConstantParameter(ptype ParameterType, value float64) Parameter {
	values := make(map[string][]float64, len(ptype))
	for name, shape := range ptype {
		data := make([]float64, shape.Size())
		for i := range data {
			data[i] = value
		}
		values[name] = data
	}
	p, _ := NewParameter(ptype, values)
	return p
}

// At reads one scalar entry of a named component. Panics on unknown names
// or out-of-range coordinates; shape validation happens up front via
// ParameterType.Check.
func (p Parameter) At(component string, i, j int) float64 {
	m, ok := p.values[component]
	if !ok {
		panic(fmt.Sprintf("domain: parameter has no component %q", component))
	}
	return m.At(i, j)
}

// Component returns a copy of one component's row-major data.
func (p Parameter) Component(name string) []float64 {
	m := p.values[name]
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return data
}

func (p Parameter) String() string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, mat.Formatted(p.values[name], mat.FormatPython())))
	}
	return strings.Join(parts, ", ")
}
