package reducedbasis

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

// ReducedModel is the Galerkin projection of the full-order system onto the
// current basis. Solving it costs a small dense factorization, independent
// of the full-order dimension.
type ReducedModel struct {
	logger   *zap.Logger
	op       *domain.AffineOperator // full-order decomposition, thetas only
	rhs      *domain.AffineVector
	opTerms  []*mat.Dense    // Bᵀ·A_q·B, term order preserved
	rhsTerms []*mat.VecDense // Bᵀ·f_q
	estim    *ErrorEstimator
	solver   LinearSolver
	n        int
}

// Size returns the reduced dimension.
func (m *ReducedModel) Size() int { return m.n }

// Estimator returns the error estimator bound to this model's basis.
func (m *ReducedModel) Estimator() *ErrorEstimator { return m.estim }

// Solve assembles the projected affine system at mu and solves it.
// A model over an empty basis cannot be solved.
func (m *ReducedModel) Solve(mu domain.Parameter) (*mat.VecDense, error) {
	if m.n == 0 {
		return nil, domain.ErrModelUnbuilt
	}
	thetaA, err := m.op.Thetas(mu)
	if err != nil {
		return nil, err
	}
	thetaF, err := m.rhs.Thetas(mu)
	if err != nil {
		return nil, err
	}
	a := mat.NewDense(m.n, m.n, nil)
	tmp := mat.NewDense(m.n, m.n, nil)
	for q, t := range thetaA {
		tmp.Scale(t, m.opTerms[q])
		a.Add(a, tmp)
	}
	b := mat.NewVecDense(m.n, nil)
	for q, t := range thetaF {
		b.AddScaledVec(b, t, m.rhsTerms[q])
	}
	return m.solver.Solve(a, b)
}

// Estimate bounds the full-order error of the reduced solution ured at mu.
func (m *ReducedModel) Estimate(mu domain.Parameter, ured *mat.VecDense) (float64, error) {
	return m.estim.Estimate(mu, ured)
}

// Reconstructor maps reduced coefficient vectors back to full-order space
// through the basis it was built against. It is rebuilt together with the
// reduced model whenever the basis grows.
type Reconstructor struct {
	basis *mat.Dense
}

// Reconstruct computes B·ured.
func (r *Reconstructor) Reconstruct(ured mat.Vector) *mat.VecDense {
	rows, _ := r.basis.Dims()
	u := mat.NewVecDense(rows, nil)
	u.MulVec(r.basis, ured)
	return u
}

// Reduce projects the full-order model onto the basis and precomputes the
// error estimator for the given error product (nil selects the trivial
// Euclidean residual norm). Every affine term is re-projected from scratch;
// with a handful of components and a small basis this is cheaper than
// patching projections incrementally and keeps the invariants obvious.
func Reduce(logger *zap.Logger, fom *FullOrderModel, basis *Basis, errorProduct *mat.SymDense, coercivity *domain.Functional) (*ReducedModel, *Reconstructor, error) {
	op := fom.Operator()
	rhs := fom.RHS()
	n := basis.Len()

	var b *mat.Dense
	opTerms := make([]*mat.Dense, op.NumTerms())
	rhsTerms := make([]*mat.VecDense, rhs.NumTerms())
	if n > 0 {
		b = basis.Matrix()
		for q := range opTerms {
			var ab, red mat.Dense
			ab.Mul(op.Term(q), b)
			red.Mul(b.T(), &ab)
			opTerms[q] = &red
		}
		for q := range rhsTerms {
			var red mat.VecDense
			red.MulVec(b.T(), rhs.Term(q))
			rhsTerms[q] = &red
		}
	}

	estim, err := NewErrorEstimator(fom, basis, errorProduct, coercivity)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("Projected reduced model",
		zap.Int("basis_size", n),
		zap.Int("operator_terms", op.NumTerms()),
		zap.Int("rhs_terms", rhs.NumTerms()))

	model := &ReducedModel{
		logger:   logger,
		op:       op,
		rhs:      rhs,
		opTerms:  opTerms,
		rhsTerms: rhsTerms,
		estim:    estim,
		solver:   DenseSolver{},
		n:        n,
	}
	return model, &Reconstructor{basis: b}, nil
}
