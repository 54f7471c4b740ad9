package reducedbasis

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"thermalblock-rb/internal/domain"
)

// GreedyOptions configures a basis-construction run.
type GreedyOptions struct {
	// MaxSize is the target basis size; values below 1 are clamped to 1.
	MaxSize int
	// Tolerance, when positive, stops the run once the maximum error over
	// the training set falls to or below it.
	Tolerance float64
	// Workers bounds the parallelism of the per-sample error sweep.
	Workers int
	// UseEstimator selects estimator-based sampling (the default mode).
	// When false every training sample is solved full-order each iteration
	// and the true error in the configured norm drives the selection; this
	// is prohibitively expensive and exists for validation only.
	UseEstimator bool
	// Product is the inner product the basis stays orthonormal under
	// (nil for Euclidean).
	Product *mat.SymDense
	// ErrorProduct is the residual norm of the estimator, and the error
	// norm of the exhaustive mode (nil for the trivial Euclidean norm).
	ErrorProduct *mat.SymDense
	// Coercivity, when set, divides estimates by a coercivity lower bound.
	Coercivity *domain.Functional
}

// Extension records one accepted greedy iteration.
type Extension struct {
	Mu domain.Parameter
	// MaxError is the maximum error over the training set at selection
	// time; +Inf for the first snapshot, which is taken without estimating.
	MaxError float64
}

// GreedyData is the output of a greedy run. On a terminal error
// (ErrBasisExtensionStalled, solver failure) the data built so far is still
// returned, so a caller may keep the degraded reduced model.
type GreedyData struct {
	Basis         *Basis
	Model         *ReducedModel
	Reconstructor *Reconstructor
	History       []Extension
}

// RunGreedy builds a reduced basis over the training set: each iteration
// ranks every sample by estimated error, solves the full-order model only
// at the worst one, extends the basis orthonormally and re-projects. The
// full-order model is solved once per accepted basis vector; everything
// else is reduced-order work. Sample ranking runs on a worker pool; ties
// break to the earliest training-set index regardless of completion order.
func RunGreedy(logger *zap.Logger, fom *FullOrderModel, training []domain.Parameter, opts GreedyOptions) (*GreedyData, error) {
	if len(training) == 0 {
		return nil, domain.ErrEmptyTrainingSet
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	maxSize := opts.MaxSize
	if maxSize < 1 {
		maxSize = 1
	}

	basis := NewBasis(fom.Dim(), opts.Product)
	data := &GreedyData{Basis: basis}

	logger.Info("Starting greedy basis construction",
		zap.Int("training_samples", len(training)),
		zap.Int("max_size", maxSize),
		zap.Bool("use_estimator", opts.UseEstimator),
		zap.Int("workers", workers))

	for {
		var mu domain.Parameter
		maxErr := math.Inf(1)
		if basis.Len() == 0 {
			// No model to estimate against yet; any training sample works
			// as the first snapshot.
			mu = training[0]
		} else {
			var idx int
			var err error
			maxErr, idx, err = maxErrorOver(fom, data.Model, data.Reconstructor, training, workers, opts)
			if err != nil {
				return data, err
			}
			logger.Info("Greedy iteration",
				zap.Int("basis_size", basis.Len()),
				zap.Float64("max_error", maxErr),
				zap.Int("selected_index", idx))
			if opts.Tolerance > 0 && maxErr <= opts.Tolerance {
				logger.Info("Error tolerance reached",
					zap.Float64("max_error", maxErr),
					zap.Float64("tolerance", opts.Tolerance))
				return data, nil
			}
			mu = training[idx]
		}

		u, err := fom.Solve(mu)
		if err != nil {
			return data, err
		}
		if !basis.Extend(u) {
			logger.Warn("Snapshot numerically dependent on basis, stopping early",
				zap.Int("basis_size", basis.Len()))
			return data, fmt.Errorf("%w: after %d extensions", domain.ErrBasisExtensionStalled, basis.Len())
		}
		model, rec, err := Reduce(logger, fom, basis, opts.ErrorProduct, opts.Coercivity)
		if err != nil {
			return data, err
		}
		data.Model = model
		data.Reconstructor = rec
		data.History = append(data.History, Extension{Mu: mu, MaxError: maxErr})

		if basis.Len() >= maxSize {
			logger.Info("Target basis size reached", zap.Int("basis_size", basis.Len()))
			return data, nil
		}
	}
}

type errorTask struct {
	idx int
	mu  domain.Parameter
}

type errorResult struct {
	idx   int
	value float64
	err   error
}

// maxErrorOver sweeps the training set on a worker pool and returns the
// largest error with its sample index. Results are collected by index, so
// the argmax and its earliest-index tie-break do not depend on scheduling.
func maxErrorOver(fom *FullOrderModel, model *ReducedModel, rec *Reconstructor, training []domain.Parameter, workers int, opts GreedyOptions) (float64, int, error) {
	tasks := make(chan errorTask, workers*2)
	results := make(chan errorResult, len(training))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				value, err := sampleError(fom, model, rec, task.mu, opts)
				results <- errorResult{idx: task.idx, value: value, err: err}
			}
		}()
	}

	go func() {
		for i, mu := range training {
			tasks <- errorTask{idx: i, mu: mu}
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	values := make([]float64, len(training))
	var firstErr error
	firstErrIdx := len(training)
	for res := range results {
		if res.err != nil && res.idx < firstErrIdx {
			firstErr = res.err
			firstErrIdx = res.idx
		}
		values[res.idx] = res.value
	}
	if firstErr != nil {
		return 0, 0, firstErr
	}

	best := math.Inf(-1)
	bestIdx := 0
	for i, v := range values {
		if v > best {
			best = v
			bestIdx = i
		}
	}
	return best, bestIdx, nil
}

// sampleError computes one training sample's error: the estimator bound in
// the default mode, or the true full-order error in the exhaustive mode.
func sampleError(fom *FullOrderModel, model *ReducedModel, rec *Reconstructor, mu domain.Parameter, opts GreedyOptions) (float64, error) {
	ured, err := model.Solve(mu)
	if err != nil {
		return 0, err
	}
	if opts.UseEstimator {
		return model.Estimate(mu, ured)
	}
	u, err := fom.Solve(mu)
	if err != nil {
		return 0, err
	}
	var diff mat.VecDense
	diff.SubVec(u, rec.Reconstruct(ured))
	if opts.ErrorProduct == nil {
		return mat.Norm(&diff, 2), nil
	}
	return math.Sqrt(math.Max(mat.Inner(&diff, opts.ErrorProduct, &diff), 0)), nil
}
