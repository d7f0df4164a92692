package registry

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
)

// Toolchain builds transforms on first use and hands out the same instance
// afterwards. It implements pipeline.Toolchain.
type Toolchain struct {
	registry *Registry
	settings *project.Settings

	mu    sync.Mutex
	built map[pipeline.Role]pipeline.Transform
}

// Toolchain binds the registry to the project settings.
func (r *Registry) Toolchain(settings *project.Settings) *Toolchain {
	return &Toolchain{
		registry: r,
		settings: settings,
		built:    make(map[pipeline.Role]pipeline.Transform),
	}
}

// Transform returns the transform filling role.
func (t *Toolchain) Transform(role pipeline.Role) (pipeline.Transform, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.built[role]; ok {
		return tr, nil
	}

	handler, ok := t.registry.TransformRegistry[role]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", pipeline.ErrUnknownRole, role)
	}

	tr, err := handler.New(t.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build transform for role '%s': %w", role, err)
	}
	t.built[role] = tr
	return tr, nil
}

var _ pipeline.Toolchain = (*Toolchain)(nil)
