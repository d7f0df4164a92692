package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/pipeline"
)

// ValidateRegistry checks that every pipeline role has a registered
// transform.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var missing []string
	for _, role := range pipeline.AllRoles {
		if _, ok := r.TransformRegistry[role]; !ok {
			missing = append(missing, string(role))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("registry validation failed: no module registered for roles: %s", strings.Join(missing, ", "))
	}

	logger.Debug("Registry validation passed.", "roles", len(r.TransformRegistry), "notifiers", len(r.NotifierRegistry))
	return nil
}
