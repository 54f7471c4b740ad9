package app

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/discretizer"
	"thermalblock-rb/internal/domain"
	"thermalblock-rb/pkg/reducedbasis"
)

// ReducedSimulator answers solve queries through the reduced model,
// building it lazily on first use. Lifecycle: Unbuilt until the first
// successful greedy run, Built afterwards; a query can never reach the
// reduced solver while Unbuilt.
type ReducedSimulator struct {
	logger *zap.Logger
	disc   *discretizer.Discretization
	fom    *reducedbasis.FullOrderModel
	config *domain.Config

	mu   sync.Mutex
	data *reducedbasis.GreedyData
}

func NewReducedSimulator(logger *zap.Logger, disc *discretizer.Discretization, config *domain.Config) *ReducedSimulator {
	fom := reducedbasis.NewFullOrderModel(logger, disc.Operator, disc.RHS, disc.Products, reducedbasis.DenseSolver{})
	return &ReducedSimulator{
		logger: logger,
		disc:   disc,
		fom:    fom,
		config: config,
	}
}

// FOM exposes the underlying full-order model, for error reporting.
func (s *ReducedSimulator) FOM() *reducedbasis.FullOrderModel { return s.fom }

// Data returns the greedy output, nil while Unbuilt.
func (s *ReducedSimulator) Data() *reducedbasis.GreedyData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Build runs the greedy loop once; later calls are no-ops. A stalled
// extension leaves a usable degraded model and is logged, not failed.
func (s *ReducedSimulator) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		return nil
	}

	training := s.disc.Space.SampleUniformly(s.config.Snapshots)
	opts := reducedbasis.GreedyOptions{
		MaxSize:      s.config.RBSize,
		Tolerance:    s.config.Tolerance,
		Workers:      s.config.Workers,
		UseEstimator: true,
	}
	if s.config.GetEstimatorNorm() == domain.NormEnergy {
		opts.ErrorProduct = s.disc.Products["h1"]
		opts.Coercivity = &s.disc.CoercivityLB
	}

	data, err := reducedbasis.RunGreedy(s.logger, s.fom, training, opts)
	if err != nil {
		if errors.Is(err, domain.ErrBasisExtensionStalled) && data.Model != nil {
			s.logger.Warn("Greedy stalled, keeping degraded reduced model",
				zap.Int("basis_size", data.Basis.Len()),
				zap.Error(err))
			s.data = data
			return nil
		}
		return err
	}
	s.data = data
	return nil
}

// Solve returns the reconstructed full-order approximation at mu, building
// the reduced model first when needed.
func (s *ReducedSimulator) Solve(mu domain.Parameter) (*mat.VecDense, error) {
	if err := s.Build(); err != nil {
		return nil, err
	}
	data := s.Data()
	ured, err := data.Model.Solve(mu)
	if err != nil {
		return nil, err
	}
	return data.Reconstructor.Reconstruct(ured), nil
}

// Estimate returns the error bound for the reduced solution at mu.
func (s *ReducedSimulator) Estimate(mu domain.Parameter) (float64, error) {
	if err := s.Build(); err != nil {
		return 0, err
	}
	data := s.Data()
	ured, err := data.Model.Solve(mu)
	if err != nil {
		return 0, err
	}
	return data.Model.Estimate(mu, ured)
}

// DetailedSimulator answers every query with a full-order solve.
type DetailedSimulator struct {
	logger *zap.Logger
	fom    *reducedbasis.FullOrderModel
}

func NewDetailedSimulator(logger *zap.Logger, disc *discretizer.Discretization) *DetailedSimulator {
	fom := reducedbasis.NewFullOrderModel(logger, disc.Operator, disc.RHS, disc.Products, reducedbasis.DenseSolver{})
	return &DetailedSimulator{logger: logger, fom: fom}
}

// FOM exposes the underlying full-order model.
func (s *DetailedSimulator) FOM() *reducedbasis.FullOrderModel { return s.fom }

// Solve computes the full-order solution at mu.
func (s *DetailedSimulator) Solve(mu domain.Parameter) (*mat.VecDense, error) {
	return s.fom.Solve(mu)
}
