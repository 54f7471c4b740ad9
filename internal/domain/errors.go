package domain

import (
	"errors"
)

var (
	// ErrParameterTypeMismatch reports a parameter whose components or
	// shapes differ from the type an operator or functional was built for.
	ErrParameterTypeMismatch = errors.New("parameter type mismatch")

	// ErrEmptyTrainingSet reports a greedy run started without samples.
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrBasisExtensionStalled reports a snapshot rejected as numerically
	// dependent on the current basis before the target size was reached.
	ErrBasisExtensionStalled = errors.New("basis extension stalled")

	// ErrLinearSolverFailure reports a singular or ill-conditioned system.
	// The solve is never retried.
	ErrLinearSolverFailure = errors.New("linear solver failure")

	// ErrModelUnbuilt reports a reduced solve against an empty basis.
	ErrModelUnbuilt = errors.New("reduced model not built")
)
