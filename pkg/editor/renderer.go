package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Renderer renders one query row's editor. It owns at most one legacy
// component, which is released when the data source identity changes, when
// the strategy changes, and on Close.
type Renderer struct {
	mu       sync.Mutex
	loader   LegacyLoader
	log      logr.Logger
	current  LegacyComponent
	identity string
	strategy Strategy
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLegacyLoader sets the loader used for legacy editors.
func WithLegacyLoader(l LegacyLoader) RendererOption {
	return func(r *Renderer) {
		r.loader = l
	}
}

// WithRendererLogger sets the renderer logger.
func WithRendererLogger(lgr logr.Logger) RendererOption {
	return func(r *Renderer) {
		r.log = lgr
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{log: logr.Discard(), strategy: StrategyUnsupported}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the editor for props.DataSource and returns the strategy used.
// StrategyUnsupported is not an error; callers show a placeholder.
func (r *Renderer) Render(ctx context.Context, props Props) (Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	strategy := Select(props.DataSource)
	identity := ""
	if props.DataSource != nil {
		identity = props.DataSource.InstanceSettings().UID
	}
	if identity != r.identity || strategy != r.strategy {
		r.releaseLocked()
		r.identity = identity
		r.strategy = strategy
	}

	switch strategy {
	case StrategyNative:
		return strategy, props.DataSource.(NativeProvider).QueryEditor().Render(ctx, props)
	case StrategyLegacy:
		if r.current != nil {
			return strategy, r.current.Update(ctx, props)
		}
		if r.loader == nil {
			return strategy, ErrNoLoader
		}
		desc := props.DataSource.(LegacyProvider).LegacyQueryEditor()
		comp, err := r.loader.Load(ctx, desc, props)
		if err != nil {
			return strategy, fmt.Errorf("load legacy editor %q: %w", desc.Name, err)
		}
		r.current = comp
		r.log.V(1).Info("legacy editor acquired", "editor", desc.Name, "datasource", identity)
		return strategy, nil
	default:
		return strategy, nil
	}
}

// Strategy returns the strategy of the last render.
func (r *Renderer) Strategy() Strategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strategy
}

// Close releases any live legacy component.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked()
	r.identity = ""
	r.strategy = StrategyUnsupported
}

func (r *Renderer) releaseLocked() {
	if r.current == nil {
		return
	}
	r.current.Destroy()
	r.current = nil
	r.log.V(1).Info("legacy editor released", "datasource", r.identity)
}
