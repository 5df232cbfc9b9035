package datasource

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Registry is an in-memory Service. Lookups match by uid first, then by name,
// after template interpolation.
type Registry struct {
	mu         sync.RWMutex
	byUID      map[string]DataSource
	order      []string
	defaultUID string
	vars       Interpolator
	log        logr.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithVariables sets the interpolator used for references.
func WithVariables(vars Interpolator) RegistryOption {
	return func(r *Registry) {
		r.vars = vars
	}
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(lgr logr.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = lgr
	}
}

// NewRegistry creates a registry holding the built-in mixed and expression
// data sources.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byUID: map[string]DataSource{},
		vars:  TemplateVars{},
		log:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Add(&Instance{Settings: MixedSettings()})
	r.Add(&Instance{Settings: ExpressionSettings()})
	return r
}

// Add registers ds, replacing any data source with the same uid.
func (r *Registry) Add(ds DataSource) {
	s := ds.InstanceSettings()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUID[s.UID]; !ok {
		r.order = append(r.order, s.UID)
	}
	r.byUID[s.UID] = ds
	if s.IsDefault {
		r.defaultUID = s.UID
	}
}

// SetDefault marks uid as the system default.
func (r *Registry) SetDefault(uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUID[uid]; !ok {
		return fmt.Errorf("default %q: %w", uid, ErrNotFound)
	}
	r.defaultUID = uid
	return nil
}

// List returns all registered settings in registration order.
func (r *Registry) List() []*InstanceSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*InstanceSettings, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.byUID[uid].InstanceSettings())
	}
	return out
}

// Interpolator returns the registry's variable interpolator.
func (r *Registry) Interpolator() Interpolator {
	return r.vars
}

// Get implements Service.
func (r *Registry) Get(_ context.Context, ref *Ref) (DataSource, error) {
	ds := r.lookup(ref)
	if ds == nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	r.log.V(1).Info("resolved data source", "ref", ref.String(), "uid", ds.InstanceSettings().UID)
	return ds, nil
}

// GetInstanceSettings implements Service.
func (r *Registry) GetInstanceSettings(ref *Ref) *InstanceSettings {
	ds := r.lookup(ref)
	if ds == nil {
		return nil
	}
	return ds.InstanceSettings()
}

func (r *Registry) lookup(ref *Ref) DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ref == nil || ref.UID == "" {
		if ref != nil && ref.Type != "" {
			return r.firstOfType(ref.Type)
		}
		return r.byUID[r.defaultUID]
	}
	key := r.vars.Replace(ref.UID)
	if ds, ok := r.byUID[key]; ok {
		return ds
	}
	for _, uid := range r.order {
		if r.byUID[uid].InstanceSettings().Name == key {
			return r.byUID[uid]
		}
	}
	return nil
}

func (r *Registry) firstOfType(typ string) DataSource {
	for _, uid := range r.order {
		if ds := r.byUID[uid]; ds.InstanceSettings().Type == typ {
			return ds
		}
	}
	return nil
}
