package reducedbasis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

// LinearSolver solves an assembled linear system A·x = b. Implementations
// surface singular or ill-conditioned systems as ErrLinearSolverFailure;
// this layer never retries a failed solve.
type LinearSolver interface {
	Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error)
}

// DenseSolver factorizes with LU and refuses systems that are singular to
// working precision.
type DenseSolver struct{}

func (DenseSolver) Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	var lu mat.LU
	lu.Factorize(a)
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLinearSolverFailure, err)
	}
	return &x, nil
}
