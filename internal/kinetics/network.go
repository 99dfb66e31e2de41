package kinetics

import (
	"fmt"

	"github.com/san-kum/kinsim/internal/dynamo"
)

// term is one species in a compiled rate law or stoichiometry row.
type term struct {
	idx int
	n   int
}

type compiled struct {
	k, kr    float64
	fwd, rev []term
	delta    []term // net change per species, zero entries dropped
}

// Network is an ordered set of reactions plus the species index built
// from them. Stoichiometry is translated to index-aligned terms once, in
// AddReaction; RHS never touches a map.
type Network struct {
	registry  *Registry
	reactions []*Reaction
	terms     []compiled
	seen      map[*Reaction]struct{}
	held      []bool
}

func NewNetwork(reactions ...*Reaction) (*Network, error) {
	n := &Network{
		registry: NewRegistry(),
		seen:     make(map[*Reaction]struct{}),
	}
	for _, r := range reactions {
		if err := n.AddReaction(r); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// AddReaction registers the reaction's new species and appends it. The
// same *Reaction may only be added once; an equal reaction built
// separately is legal and its rate adds up.
func (n *Network) AddReaction(r *Reaction) error {
	if r == nil {
		return Errorf("nil reaction")
	}
	if _, dup := n.seen[r]; dup {
		return Errorf("reaction %s already registered", r)
	}

	for _, name := range r.Species() {
		n.registry.register(name)
	}
	for len(n.held) < n.registry.Len() {
		n.held = append(n.held, false)
	}

	n.seen[r] = struct{}{}
	n.reactions = append(n.reactions, r)
	n.terms = append(n.terms, n.compile(r))
	return nil
}

func (n *Network) compile(r *Reaction) compiled {
	c := compiled{k: r.k}
	for _, name := range sortedNames(r.reactants) {
		idx, _ := n.registry.Index(name)
		c.fwd = append(c.fwd, term{idx: idx, n: r.reactants[name]})
	}
	if r.reversible {
		c.kr = r.kr
		for _, name := range sortedNames(r.products) {
			idx, _ := n.registry.Index(name)
			c.rev = append(c.rev, term{idx: idx, n: r.products[name]})
		}
	}
	for _, name := range r.Species() {
		if d := r.NetStoichiometry(name); d != 0 {
			idx, _ := n.registry.Index(name)
			c.delta = append(c.delta, term{idx: idx, n: d})
		}
	}
	return c
}

// Hold buffers the named species: their concentration stays at its
// initial value because their derivative is forced to zero.
func (n *Network) Hold(names ...string) error {
	err := &ConfigurationError{}
	idxs := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := n.registry.Index(name)
		if !ok {
			err.Add("cannot hold unknown species %q", name)
			continue
		}
		idxs = append(idxs, idx)
	}
	if err.HasIssues() {
		return err
	}
	for _, idx := range idxs {
		n.held[idx] = true
	}
	return nil
}

// Held reports whether the named species is buffered.
func (n *Network) Held(name string) bool {
	idx, ok := n.registry.Index(name)
	return ok && n.held[idx]
}

func (n *Network) Index(name string) (int, bool) { return n.registry.Index(name) }

// Species returns species names in index order.
func (n *Network) Species() []string { return n.registry.Names() }

func (n *Network) Reactions() []*Reaction {
	out := make([]*Reaction, len(n.reactions))
	copy(out, n.reactions)
	return out
}

func (n *Network) StateDim() int { return n.registry.Len() }

// RHS returns dc/dt for the concentration vector c, aligned with
// Species(). t is unused: mass-action rate laws here are autonomous.
func (n *Network) RHS(t float64, c []float64) []float64 {
	dst := make([]float64, n.registry.Len())
	n.RHSInto(dst, t, c)
	return dst
}

// RHSInto is the allocation-free form of RHS. It panics with an error
// wrapping dynamo.ErrDimensionMismatch if c or dst do not match the network
// dimension.
func (n *Network) RHSInto(dst []float64, t float64, c []float64) {
	n.checkDim(len(dst), len(c))

	for i := range dst {
		dst[i] = 0
	}
	for i := range n.terms {
		ct := &n.terms[i]
		rate := ct.k * product(ct.fwd, c)
		if ct.kr != 0 {
			rate -= ct.kr * product(ct.rev, c)
		}
		for _, d := range ct.delta {
			dst[d.idx] += float64(d.n) * rate
		}
	}
	for i, h := range n.held {
		if h {
			dst[i] = 0
		}
	}
}

// Jacobian writes d(dc_i/dt)/dc_j into jac. Derivatives are taken at the
// clamped concentrations the rate laws see.
func (n *Network) Jacobian(x dynamo.State, t float64, jac [][]float64) {
	dim := n.registry.Len()
	n.checkDim(len(jac), len(x))
	for i := range jac {
		row := jac[i][:dim]
		for j := range row {
			row[j] = 0
		}
	}

	for i := range n.terms {
		ct := &n.terms[i]
		n.accumulatePartials(jac, ct.delta, ct.fwd, ct.k, x, 1)
		if ct.kr != 0 {
			n.accumulatePartials(jac, ct.delta, ct.rev, ct.kr, x, -1)
		}
	}
	for i, h := range n.held {
		if h {
			for j := range jac[i][:dim] {
				jac[i][j] = 0
			}
		}
	}
}

func (n *Network) accumulatePartials(jac [][]float64, delta, law []term, k float64, c []float64, sign float64) {
	for a, ta := range law {
		// d/dc_a of k * prod c_b^n_b
		partial := k * float64(ta.n) * ipow(clamp(c[ta.idx]), ta.n-1)
		for b, tb := range law {
			if b != a {
				partial *= ipow(clamp(c[tb.idx]), tb.n)
			}
		}
		if partial == 0 {
			continue
		}
		for _, d := range delta {
			jac[d.idx][ta.idx] += sign * float64(d.n) * partial
		}
	}
}

func (n *Network) Derive(x dynamo.State, t float64) dynamo.State {
	return n.RHS(t, x)
}

func (n *Network) DeriveInto(dst, x dynamo.State, t float64) {
	n.RHSInto(dst, t, x)
}

func (n *Network) checkDim(lens ...int) {
	dim := n.registry.Len()
	for _, l := range lens {
		if l != dim {
			panic(fmt.Errorf("kinetics: vector length %d does not match %d species: %w", l, dim, dynamo.ErrDimensionMismatch))
		}
	}
}

func product(law []term, c []float64) float64 {
	p := 1.0
	for _, t := range law {
		p *= ipow(clamp(c[t.idx]), t.n)
	}
	return p
}
