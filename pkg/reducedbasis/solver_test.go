package reducedbasis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

func TestDenseSolverSolves(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{2, 0, 0, 4})
	b := mat.NewVecDense(2, []float64{2, 8})

	x, err := DenseSolver{}.Solve(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1, x.AtVec(0), 1e-14)
	assert.InDelta(t, 2, x.AtVec(1), 1e-14)
}

func TestDenseSolverSingularSystem(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	b := mat.NewVecDense(2, []float64{1, 2})

	_, err := DenseSolver{}.Solve(a, b)
	require.ErrorIs(t, err, domain.ErrLinearSolverFailure)
}
