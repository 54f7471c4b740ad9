package domain

// FunctionalKind tags the closed set of scalar parameter functional
// variants. The set is small and fixed, so dispatch is a switch rather than
// an interface hierarchy.
type FunctionalKind uint8

const (
	// ProjectionKind reads one scalar entry of one named component.
	ProjectionKind FunctionalKind = iota
	// GenericKind evaluates an arbitrary closed-form scalar map.
	GenericKind
)

// Functional is a pure scalar-valued function of a Parameter.
type Functional struct {
	Kind      FunctionalKind
	Component string
	Row, Col  int
	Fn        func(Parameter) float64
}

// Projection builds the functional reading component[row, col].
func Projection(component string, row, col int) Functional {
	return Functional{Kind: ProjectionKind, Component: component, Row: row, Col: col}
}

// Generic builds a functional from a closure. The closure must be pure.
func Generic(fn func(Parameter) float64) Functional {
	return Functional{Kind: GenericKind, Fn: fn}
}

// Evaluate computes the scalar weight at mu.
func (f Functional) Evaluate(mu Parameter) float64 {
	switch f.Kind {
	case ProjectionKind:
		return mu.At(f.Component, f.Row, f.Col)
	default:
		return f.Fn(mu)
	}
}
