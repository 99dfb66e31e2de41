package kinetics

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reaction is one elementary reaction with mass-action rate law. It is
// immutable once built and may be shared between networks.
type Reaction struct {
	reactants  map[string]int
	products   map[string]int
	k          float64
	kr         float64
	reversible bool
}

type ReactionOption func(*Reaction)

// Reversible adds a reverse rate constant, making the products react back
// into the reactants.
func Reversible(kr float64) ReactionOption {
	return func(r *Reaction) {
		r.kr = kr
		r.reversible = true
	}
}

// NewReaction validates and copies the stoichiometry. Coefficients must be
// positive, names non-blank and rate constants finite and non-negative.
func NewReaction(reactants, products map[string]int, k float64, opts ...ReactionOption) (*Reaction, error) {
	r := &Reaction{
		reactants: copyStoich(reactants),
		products:  copyStoich(products),
		k:         k,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reaction) validate() error {
	err := &ConfigurationError{}

	checkSide := func(side string, m map[string]int) {
		for _, name := range sortedNames(m) {
			if strings.TrimSpace(name) == "" {
				err.Add("%s: species name must not be blank", side)
				continue
			}
			if n := m[name]; n <= 0 {
				err.Add("%s: coefficient of %q must be positive, got %d", side, name, n)
			}
		}
	}
	checkSide("reactants", r.reactants)
	checkSide("products", r.products)

	if len(r.reactants) == 0 && len(r.products) == 0 {
		err.Add("reaction must reference at least one species")
	}
	if !validRate(r.k) {
		err.Add("rate constant must be finite and non-negative, got %v", r.k)
	}
	if r.reversible && !validRate(r.kr) {
		err.Add("reverse rate constant must be finite and non-negative, got %v", r.kr)
	}

	return err.orNil()
}

func validRate(k float64) bool {
	return k >= 0 && !math.IsInf(k, 0) && !math.IsNaN(k)
}

// WithRateConstant returns a copy of r with forward rate constant k.
func (r *Reaction) WithRateConstant(k float64) (*Reaction, error) {
	if !validRate(k) {
		return nil, Errorf("rate constant must be finite and non-negative, got %v", k)
	}
	c := &Reaction{
		reactants:  copyStoich(r.reactants),
		products:   copyStoich(r.products),
		k:          k,
		kr:         r.kr,
		reversible: r.reversible,
	}
	return c, nil
}

func (r *Reaction) Reactants() map[string]int { return copyStoich(r.reactants) }
func (r *Reaction) Products() map[string]int  { return copyStoich(r.products) }
func (r *Reaction) RateConstant() float64     { return r.k }

// ReverseRateConstant reports the reverse constant and whether the
// reaction is reversible at all.
func (r *Reaction) ReverseRateConstant() (float64, bool) {
	return r.kr, r.reversible
}

// Species lists every species the reaction references: reactants first,
// then products not already listed, each side sorted by name.
func (r *Reaction) Species() []string {
	names := sortedNames(r.reactants)
	for _, p := range sortedNames(r.products) {
		if _, ok := r.reactants[p]; !ok {
			names = append(names, p)
		}
	}
	return names
}

// NetStoichiometry is products[name] - reactants[name].
func (r *Reaction) NetStoichiometry(name string) int {
	return r.products[name] - r.reactants[name]
}

// ForwardRate evaluates k * prod(c[s]^n[s]) over the reactants. A missing
// species counts as zero concentration.
func (r *Reaction) ForwardRate(conc map[string]float64) float64 {
	return massAction(r.k, r.reactants, conc)
}

// ReverseRate is the mass-action rate of the reverse direction, zero for
// irreversible reactions.
func (r *Reaction) ReverseRate(conc map[string]float64) float64 {
	if !r.reversible {
		return 0
	}
	return massAction(r.kr, r.products, conc)
}

func massAction(k float64, stoich map[string]int, conc map[string]float64) float64 {
	rate := k
	for _, name := range sortedNames(stoich) {
		rate *= ipow(clamp(conc[name]), stoich[name])
	}
	return rate
}

// String renders "A + 2 X -> 3 X", using "<=>" for reversible reactions
// and "0" for an empty side.
func (r *Reaction) String() string {
	arrow := " -> "
	if r.reversible {
		arrow = " <=> "
	}
	return formatSide(r.reactants) + arrow + formatSide(r.products)
}

func formatSide(m map[string]int) string {
	if len(m) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(m))
	for _, name := range sortedNames(m) {
		if n := m[name]; n != 1 {
			parts = append(parts, strconv.Itoa(n)+" "+name)
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " + ")
}

func copyStoich(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func sortedNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clamp keeps rate-law powers away from negative bases produced by
// integrator undershoot.
func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	return c
}

func ipow(x float64, n int) float64 {
	switch n {
	case 1:
		return x
	case 2:
		return x * x
	}
	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}
