package livereload

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_OnlyBuiltWhenConfigured(t *testing.T) {
	t.Parallel()

	r := registry.New()
	(&Module{}).Register(r)

	notifiers, err := r.Notifiers(project.Defaults("/p"))
	require.NoError(t, err)
	assert.Empty(t, notifiers)

	settings := project.Defaults("/p")
	settings.LiveReload = &project.LiveReload{URL: "http://localhost:35729/socket.io/", Namespace: "/", Event: "reload", Timeout: "5s"}
	notifiers, err = r.Notifiers(settings)
	require.NoError(t, err)
	assert.Len(t, notifiers, 1)
}

func TestNewNotifier_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     project.LiveReload
		errText string
	}{
		{name: "relative url", cfg: project.LiveReload{URL: "/socket.io/", Timeout: "1s"}, errText: "must be absolute"},
		{name: "bad url", cfg: project.LiveReload{URL: "http://[::1", Timeout: "1s"}, errText: "failed to parse"},
		{name: "bad timeout", cfg: project.LiveReload{URL: "http://localhost:1/", Timeout: "soon"}, errText: "invalid livereload timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewNotifier(tc.cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestNotify_UnreachableServerFails(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Reserve a port and close it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	n, err := NewNotifier(project.LiveReload{
		URL:       "http://" + addr + "/socket.io/",
		Namespace: "/",
		Event:     project.DefaultReloadEvent,
		Timeout:   "500ms",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })

	// --- Act ---
	start := time.Now()
	err = n.Notify(ctxlog.Discard(context.Background()), []string{"/p/sass/app.scss"})

	// --- Assert ---
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
