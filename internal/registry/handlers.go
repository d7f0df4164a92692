package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
)

// RegisteredTransform holds the constructor of a role's transform.
type RegisteredTransform struct {
	Module string
	New    func(settings *project.Settings) (pipeline.Transform, error)
}

// RegisterTransform registers the constructor filling role.
func (r *Registry) RegisterTransform(role pipeline.Role, handler *RegisteredTransform) {
	if existing, exists := r.TransformRegistry[role]; exists {
		panic(fmt.Sprintf("transform for role '%s' already registered by module '%s'", role, existing.Module))
	}
	slog.Debug("Registering transform.", "role", role, "module", handler.Module)
	r.TransformRegistry[role] = handler
}

// RegisteredNotifier holds the constructor of a notifier.
type RegisteredNotifier struct {
	New func(settings *project.Settings) (Notifier, error)
}

// RegisterNotifier registers a notifier constructor under name.
func (r *Registry) RegisterNotifier(name string, handler *RegisteredNotifier) {
	if _, exists := r.NotifierRegistry[name]; exists {
		panic(fmt.Sprintf("notifier with name '%s' already registered", name))
	}
	slog.Debug("Registering notifier.", "name", name)
	r.NotifierRegistry[name] = handler
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
