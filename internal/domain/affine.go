package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// AffineOperator is a parametrized matrix
//
//	A(mu) = sum_q theta_q(mu) * A_q  (+ optional constant term)
//
// with parameter-independent components A_q and scalar functionals theta_q.
// The component order is fixed at construction and assembly accumulates in
// exactly that order, so floating-point summation is reproducible.
type AffineOperator struct {
	ptype       ParameterType
	components  []*mat.Dense
	functionals []Functional
	constant    *mat.Dense
	rows, cols  int
}

// NewAffineOperator pairs components with their weight functionals. All
// components (and the optional constant, which may be nil) must share one
// shape, and there must be one functional per component.
func NewAffineOperator(ptype ParameterType, components []*mat.Dense, functionals []Functional, constant *mat.Dense) (*AffineOperator, error) {
	if len(components) != len(functionals) {
		return nil, fmt.Errorf("domain: %d components but %d functionals", len(components), len(functionals))
	}
	if len(components) == 0 && constant == nil {
		return nil, fmt.Errorf("domain: affine operator needs at least one term")
	}
	var rows, cols int
	if constant != nil {
		rows, cols = constant.Dims()
	} else {
		rows, cols = components[0].Dims()
	}
	for q, c := range components {
		r, cc := c.Dims()
		if r != rows || cc != cols {
			return nil, fmt.Errorf("domain: component %d has shape (%d,%d), want (%d,%d)", q, r, cc, rows, cols)
		}
	}
	return &AffineOperator{
		ptype:       ptype,
		components:  components,
		functionals: functionals,
		constant:    constant,
		rows:        rows,
		cols:        cols,
	}, nil
}

// Dims returns the shape of the assembled operator.
func (op *AffineOperator) Dims() (int, int) { return op.rows, op.cols }

// ParameterType returns the type the operator was built against.
func (op *AffineOperator) ParameterType() ParameterType { return op.ptype }

// NumTerms counts affine terms, the constant included.
func (op *AffineOperator) NumTerms() int {
	n := len(op.components)
	if op.constant != nil {
		n++
	}
	return n
}

// Term returns the q-th parameter-independent component. The constant term,
// when present, is the last one.
func (op *AffineOperator) Term(q int) *mat.Dense {
	if q < len(op.components) {
		return op.components[q]
	}
	return op.constant
}

// Theta evaluates the weight of term q at mu. The constant term has weight 1.
func (op *AffineOperator) Theta(q int, mu Parameter) float64 {
	if q < len(op.functionals) {
		return op.functionals[q].Evaluate(mu)
	}
	return 1
}

// Thetas evaluates every term weight at mu after checking mu against the
// operator's parameter type.
func (op *AffineOperator) Thetas(mu Parameter) ([]float64, error) {
	if err := op.ptype.Check(mu); err != nil {
		return nil, err
	}
	thetas := make([]float64, op.NumTerms())
	for q := range thetas {
		thetas[q] = op.Theta(q, mu)
	}
	return thetas, nil
}

// Assemble evaluates the weighted sum at mu.
func (op *AffineOperator) Assemble(mu Parameter) (*mat.Dense, error) {
	thetas, err := op.Thetas(mu)
	if err != nil {
		return nil, err
	}
	acc := mat.NewDense(op.rows, op.cols, nil)
	tmp := mat.NewDense(op.rows, op.cols, nil)
	for q := 0; q < op.NumTerms(); q++ {
		tmp.Scale(thetas[q], op.Term(q))
		acc.Add(acc, tmp)
	}
	return acc, nil
}

// AffineVector is the vector counterpart of AffineOperator, used for
// right-hand sides and output functionals.
type AffineVector struct {
	ptype       ParameterType
	components  []*mat.VecDense
	functionals []Functional
	constant    *mat.VecDense
	len         int
}

// NewAffineVector mirrors NewAffineOperator for vectors.
func NewAffineVector(ptype ParameterType, components []*mat.VecDense, functionals []Functional, constant *mat.VecDense) (*AffineVector, error) {
	if len(components) != len(functionals) {
		return nil, fmt.Errorf("domain: %d components but %d functionals", len(components), len(functionals))
	}
	if len(components) == 0 && constant == nil {
		return nil, fmt.Errorf("domain: affine vector needs at least one term")
	}
	var n int
	if constant != nil {
		n = constant.Len()
	} else {
		n = components[0].Len()
	}
	for q, c := range components {
		if c.Len() != n {
			return nil, fmt.Errorf("domain: component %d has length %d, want %d", q, c.Len(), n)
		}
	}
	return &AffineVector{
		ptype:       ptype,
		components:  components,
		functionals: functionals,
		constant:    constant,
		len:         n,
	}, nil
}

// ConstantVector wraps a parameter-independent vector as a degenerate
// affine decomposition.
func ConstantVector(ptype ParameterType, v *mat.VecDense) *AffineVector {
	av, err := NewAffineVector(ptype, nil, nil, v)
	if err != nil {
		panic(err)
	}
	return av
}

// Len returns the assembled vector length.
func (av *AffineVector) Len() int { return av.len }

// NumTerms counts affine terms, the constant included.
func (av *AffineVector) NumTerms() int {
	n := len(av.components)
	if av.constant != nil {
		n++
	}
	return n
}

// Term returns the q-th component; the constant, when present, is last.
func (av *AffineVector) Term(q int) *mat.VecDense {
	if q < len(av.components) {
		return av.components[q]
	}
	return av.constant
}

// Theta evaluates the weight of term q at mu. The constant term has weight 1.
func (av *AffineVector) Theta(q int, mu Parameter) float64 {
	if q < len(av.functionals) {
		return av.functionals[q].Evaluate(mu)
	}
	return 1
}

// Thetas evaluates every term weight at mu after a type check.
func (av *AffineVector) Thetas(mu Parameter) ([]float64, error) {
	if err := av.ptype.Check(mu); err != nil {
		return nil, err
	}
	thetas := make([]float64, av.NumTerms())
	for q := range thetas {
		thetas[q] = av.Theta(q, mu)
	}
	return thetas, nil
}

// Assemble evaluates the weighted sum at mu.
func (av *AffineVector) Assemble(mu Parameter) (*mat.VecDense, error) {
	thetas, err := av.Thetas(mu)
	if err != nil {
		return nil, err
	}
	acc := mat.NewVecDense(av.len, nil)
	for q := 0; q < av.NumTerms(); q++ {
		acc.AddScaledVec(acc, thetas[q], av.Term(q))
	}
	return acc, nil
}
