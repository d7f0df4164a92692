package registry

import (
	"context"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Notifier is told about finished watch rebuilds.
type Notifier interface {
	Notify(ctx context.Context, changed []string) error
	Close() error
}

// Registry holds all the registered transform and notifier constructors for
// a single application instance.
type Registry struct {
	TransformRegistry map[pipeline.Role]*RegisteredTransform
	NotifierRegistry  map[string]*RegisteredNotifier
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		TransformRegistry: make(map[pipeline.Role]*RegisteredTransform),
		NotifierRegistry:  make(map[string]*RegisteredNotifier),
	}
}

// Notifiers builds every registered notifier that is configured in settings.
// Constructors return a nil Notifier when their settings are absent.
func (r *Registry) Notifiers(settings *project.Settings) ([]Notifier, error) {
	var out []Notifier
	for _, name := range sortedKeys(r.NotifierRegistry) {
		n, err := r.NotifierRegistry[name].New(settings)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}
