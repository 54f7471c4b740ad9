package reducedbasis

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

// FullOrderModel holds the assembled affine system and answers full-order
// solves. This is the expensive path of the pipeline: assembly scales with
// the mesh and the solve with the factorization.
type FullOrderModel struct {
	logger   *zap.Logger
	operator *domain.AffineOperator
	rhs      *domain.AffineVector
	products map[string]*mat.SymDense
	solver   LinearSolver
}

func NewFullOrderModel(logger *zap.Logger, operator *domain.AffineOperator, rhs *domain.AffineVector, products map[string]*mat.SymDense, solver LinearSolver) *FullOrderModel {
	return &FullOrderModel{
		logger:   logger,
		operator: operator,
		rhs:      rhs,
		products: products,
		solver:   solver,
	}
}

// Dim returns the full-order solution dimension.
func (m *FullOrderModel) Dim() int {
	r, _ := m.operator.Dims()
	return r
}

// Operator returns the affine system operator.
func (m *FullOrderModel) Operator() *domain.AffineOperator { return m.operator }

// RHS returns the affine right-hand side.
func (m *FullOrderModel) RHS() *domain.AffineVector { return m.rhs }

// Product returns a named inner-product matrix, nil when absent.
func (m *FullOrderModel) Product(name string) *mat.SymDense { return m.products[name] }

// Solve assembles the system at mu and delegates to the linear solver.
func (m *FullOrderModel) Solve(mu domain.Parameter) (*mat.VecDense, error) {
	a, err := m.operator.Assemble(mu)
	if err != nil {
		return nil, err
	}
	b, err := m.rhs.Assemble(mu)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Full-order solve", zap.Int("dim", m.Dim()))
	return m.solver.Solve(a, b)
}

// Norm computes sqrt(vᵀ·P·v) for a named product, or the Euclidean norm
// when name is empty or unknown.
func (m *FullOrderModel) Norm(name string, v mat.Vector) float64 {
	p := m.products[name]
	if p == nil {
		return mat.Norm(v, 2)
	}
	return math.Sqrt(mat.Inner(v, p, v))
}
