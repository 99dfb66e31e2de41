package sim

import (
	"errors"
	"fmt"
)

// ErrIntegration matches every IntegrationError via errors.Is.
var ErrIntegration = errors.New("sim: integration failed")

// IntegrationError reports a solver failure. Err is one of the dynamo
// sentinels (ErrStepTooSmall, ErrMaxSteps, ErrInvalidState).
type IntegrationError struct {
	Method string
	Step   int
	Time   float64
	Err    error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("sim: %s failed at step %d (t=%g): %v", e.Method, e.Step, e.Time, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

func (e *IntegrationError) Is(target error) bool {
	return target == ErrIntegration
}
