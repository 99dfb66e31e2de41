package kinetics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("kinetics: invalid configuration")

// ConfigurationError collects the problems found while building a
// reaction or network. It is always returned synchronously, before any
// integration starts.
type ConfigurationError struct {
	Issues []string
}

func (e *ConfigurationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "kinetics: invalid configuration"
	case 1:
		return "kinetics: " + e.Issues[0]
	default:
		return "kinetics: configuration errors: " + strings.Join(e.Issues, "; ")
	}
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

func (e *ConfigurationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Errorf returns a single-issue ConfigurationError.
func Errorf(format string, args ...any) error {
	e := &ConfigurationError{}
	e.Add(format, args...)
	return e
}

func (e *ConfigurationError) orNil() error {
	if e.HasIssues() {
		return e
	}
	return nil
}
