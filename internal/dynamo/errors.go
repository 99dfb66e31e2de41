package dynamo

import "errors"

// Domain errors for integration.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget ran out before the end time.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrSingular indicates a linear solve inside an implicit step failed.
	ErrSingular = errors.New("dynamo: singular iteration matrix")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)
