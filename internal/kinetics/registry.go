package kinetics

// Registry assigns each species name a stable index into the
// concentration vector. It only grows.
type Registry struct {
	index map[string]int
	names []string
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

func (r *Registry) register(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	i := len(r.names)
	r.index[name] = i
	r.names = append(r.names, name)
	return i
}

func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Names returns species names in index order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int { return len(r.names) }
