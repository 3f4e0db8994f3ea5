package social

// Registry resolves provider tags to their adapters. Registration order does
// not matter; the last adapter registered for a tag wins.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry with the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider under its own tag.
func (r *Registry) Register(p Provider) *Registry {
	if p == nil {
		return r
	}
	r.providers[p.Name()] = p
	return r
}

// Resolve returns the adapter for a provider tag. Unknown tags fail before
// any adapter call is made.
func (r *Registry) Resolve(tag string) (Provider, error) {
	if r == nil {
		return nil, ErrUnknownProvider
	}

	p, ok := r.providers[tag]
	if !ok {
		return nil, ErrUnknownProvider
	}

	return p, nil
}

// Tags lists the registered provider tags.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.providers))
	for tag := range r.providers {
		tags = append(tags, tag)
	}
	return tags
}
