package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/kinsim/internal/dynamo"
)

var constructors = map[string]func(Tolerance) dynamo.Stepper{
	"euler":        func(Tolerance) dynamo.Stepper { return NewEuler() },
	"rk4":          func(Tolerance) dynamo.Stepper { return NewRK4() },
	"rk45":         func(tol Tolerance) dynamo.Stepper { return NewRK45(tol) },
	"rosenbrock23": func(tol Tolerance) dynamo.Stepper { return NewRosenbrock23(tol) },
}

var aliases = map[string]string{
	"dopri5": "rk45",
	"ode23s": "rosenbrock23",
}

// New returns a fresh stepper for the named method. Names are case
// insensitive. The tolerance is ignored by fixed-step methods.
func New(name string, tol Tolerance) (dynamo.Stepper, error) {
	key := Canonical(name)
	fn, ok := constructors[key]
	if !ok {
		return nil, fmt.Errorf("unknown integration method %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return fn(tol), nil
}

// Canonical resolves aliases and case. Unknown names come back lowercased.
func Canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		return a
	}
	return key
}

// IsAdaptive reports whether the named method controls its own step size.
func IsAdaptive(name string) bool {
	switch Canonical(name) {
	case "rk45", "rosenbrock23":
		return true
	}
	return false
}

// Names lists the canonical method names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
