package reducedbasis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/discretizer"
	"thermalblock-rb/internal/domain"
)

func thermalBlockFOM(t *testing.T, nx, ny, n int) (*discretizer.Discretization, *FullOrderModel) {
	t.Helper()
	p := discretizer.NewThermalBlockProblem(nx, ny, 0.1, 1)
	disc, err := discretizer.DiscretizeEllipticCG(p, n, zap.NewNop())
	require.NoError(t, err)
	fom := NewFullOrderModel(zap.NewNop(), disc.Operator, disc.RHS, disc.Products, DenseSolver{})
	return disc, fom
}

func TestGreedyEmptyTrainingSet(t *testing.T) {
	_, fom := thermalBlockFOM(t, 2, 2, 4)
	_, err := RunGreedy(zap.NewNop(), fom, nil, GreedyOptions{MaxSize: 3, UseEstimator: true})
	require.ErrorIs(t, err, domain.ErrEmptyTrainingSet)
}

// 2x2 blocks, range [0.1, 1], 3 snapshots per diffusion entry
// (81 training parameters), target size 10.
func TestGreedyEndToEnd(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 8)
	training := disc.Space.SampleUniformly(3)
	require.Len(t, training, 81)

	data, err := RunGreedy(zap.NewNop(), fom, training, GreedyOptions{
		MaxSize:      10,
		Workers:      4,
		UseEstimator: true,
	})
	require.NoError(t, err)
	require.Equal(t, 10, data.Basis.Len())
	require.Len(t, data.History, 10)

	// The first snapshot is taken without estimating.
	assert.True(t, math.IsInf(data.History[0].MaxError, 1))

	// Max estimated training error never increases as the basis grows.
	for i := 2; i < len(data.History); i++ {
		assert.LessOrEqual(t, data.History[i].MaxError,
			data.History[i-1].MaxError*(1+1e-9),
			"max error increased at iteration %d", i)
	}

	// Basis orthonormality under the extension product (Euclidean here).
	for i := 0; i < data.Basis.Len(); i++ {
		for j := 0; j < data.Basis.Len(); j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want,
				mat.Dot(data.Basis.Vector(i), data.Basis.Vector(j)), 1e-10)
		}
	}

	// The reduced model reproduces snapshot parameters up to round-off.
	ured, err := data.Model.Solve(data.History[0].Mu)
	require.NoError(t, err)
	est, err := data.Model.Estimate(data.History[0].Mu, ured)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, est, 0.0)
	assert.Less(t, est, 1e-6)

	// The trivial estimate is by definition the Euclidean residual norm of
	// the reconstructed solution.
	mu := training[40]
	ured, err = data.Model.Solve(mu)
	require.NoError(t, err)
	est, err = data.Model.Estimate(mu, ured)
	require.NoError(t, err)

	a, err := disc.Operator.Assemble(mu)
	require.NoError(t, err)
	b, err := disc.RHS.Assemble(mu)
	require.NoError(t, err)
	urec := data.Reconstructor.Reconstruct(ured)
	var residual mat.VecDense
	residual.MulVec(a, urec)
	residual.SubVec(b, &residual)
	assert.InDelta(t, mat.Norm(&residual, 2), est, 1e-8)
}

// With the energy product and the min-theta coercivity bound the estimate
// is a rigorous upper bound on the H1 reconstruction error.
func TestGreedyEnergyEstimatorBoundsTrueError(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 8)
	training := disc.Space.SampleUniformly(3)
	h1 := disc.Products["h1"]

	data, err := RunGreedy(zap.NewNop(), fom, training, GreedyOptions{
		MaxSize:      6,
		Workers:      4,
		UseEstimator: true,
		ErrorProduct: h1,
		Coercivity:   &disc.CoercivityLB,
	})
	require.NoError(t, err)
	require.Equal(t, 6, data.Basis.Len())

	for _, idx := range []int{0, 7, 40, 80} {
		mu := training[idx]
		ured, err := data.Model.Solve(mu)
		require.NoError(t, err)
		est, err := data.Model.Estimate(mu, ured)
		require.NoError(t, err)

		uref, err := fom.Solve(mu)
		require.NoError(t, err)
		var diff mat.VecDense
		diff.SubVec(uref, data.Reconstructor.Reconstruct(ured))
		trueErr := math.Sqrt(math.Max(mat.Inner(&diff, h1, &diff), 0))

		// Absolute slack covers samples where both sides are round-off.
		assert.LessOrEqual(t, trueErr, est*(1+1e-6)+1e-8,
			"estimate does not bound the true error at sample %d", idx)
	}
}

func TestGreedyToleranceStopsEarly(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 4)
	training := disc.Space.SampleUniformly(2)

	data, err := RunGreedy(zap.NewNop(), fom, training, GreedyOptions{
		MaxSize:      10,
		Tolerance:    1e6,
		Workers:      2,
		UseEstimator: true,
	})
	require.NoError(t, err)
	// The first snapshot is always taken; the next sweep already satisfies
	// the (huge) tolerance.
	assert.Equal(t, 1, data.Basis.Len())
	assert.Len(t, data.History, 1)
}

func TestGreedyStallsOnDegenerateTrainingSet(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 4)
	training := disc.Space.SampleUniformly(2)[:1]

	data, err := RunGreedy(zap.NewNop(), fom, training, GreedyOptions{
		MaxSize:      3,
		Workers:      2,
		UseEstimator: true,
	})
	require.ErrorIs(t, err, domain.ErrBasisExtensionStalled)
	// The partial model built before the stall is still returned.
	require.NotNil(t, data)
	assert.Equal(t, 1, data.Basis.Len())
	require.NotNil(t, data.Model)
	assert.Equal(t, 1, data.Model.Size())
}

// Exhaustive selection solves the full-order model for every training
// sample; it exists for validation only, and must agree with the default
// mode on termination behavior.
func TestGreedyExhaustiveMode(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 4)
	training := disc.Space.SampleUniformly(2)

	data, err := RunGreedy(zap.NewNop(), fom, training, GreedyOptions{
		MaxSize:      3,
		Workers:      2,
		UseEstimator: false,
	})
	require.NoError(t, err)
	require.Equal(t, 3, data.Basis.Len())
	for i := 2; i < len(data.History); i++ {
		assert.LessOrEqual(t, data.History[i].MaxError,
			data.History[i-1].MaxError*(1+1e-9))
	}
}

func TestReducedModelUnbuilt(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 4)
	basis := NewBasis(fom.Dim(), nil)
	model, _, err := Reduce(zap.NewNop(), fom, basis, nil, nil)
	require.NoError(t, err)

	mu := domain.ConstantParameter(disc.Problem.ParameterType(), 0.5)
	_, err = model.Solve(mu)
	require.ErrorIs(t, err, domain.ErrModelUnbuilt)
}

// A reduced basis spanning the full solution space makes the Galerkin
// solution exact: reconstruction must match the full-order solve.
func TestGalerkinConsistencyOnFullSpace(t *testing.T) {
	disc, fom := thermalBlockFOM(t, 2, 2, 4)
	training := disc.Space.SampleUniformly(2)

	basis := NewBasis(fom.Dim(), nil)
	for _, mu := range training {
		u, err := fom.Solve(mu)
		require.NoError(t, err)
		if basis.Len() == fom.Dim() {
			break
		}
		basis.Extend(u)
	}
	require.Greater(t, basis.Len(), 0)

	model, rec, err := Reduce(zap.NewNop(), fom, basis, nil, nil)
	require.NoError(t, err)

	mu := training[3]
	ured, err := model.Solve(mu)
	require.NoError(t, err)
	uref, err := fom.Solve(mu)
	require.NoError(t, err)

	urec := rec.Reconstruct(ured)
	var diff mat.VecDense
	diff.SubVec(uref, urec)
	relErr := mat.Norm(&diff, 2) / mat.Norm(uref, 2)

	est, err := model.Estimate(mu, ured)
	require.NoError(t, err)
	assert.Less(t, relErr, 1e-6)
	assert.Less(t, est, 1e-6)
}
