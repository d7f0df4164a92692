package rename

import (
	"context"
	"testing"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMin(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path     string
		expected string
	}{
		{path: "/p/css/app.css", expected: "/p/css/app.min.css"},
		{path: "/p/js/modules/menu.js", expected: "/p/js/modules/menu.min.js"},
		{path: "/p/js/vendor.bundle.js", expected: "/p/js/vendor.bundle.min.js"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			out, err := Min{}.Apply(context.Background(), &pipeline.File{Path: tc.path, Contents: []byte("x")})

			require.NoError(t, err)
			require.Len(t, out, 2)
			assert.Equal(t, tc.path, out[0].Path)
			assert.Equal(t, tc.expected, out[1].Path)
			assert.Equal(t, out[0].Contents, out[1].Contents)
		})
	}
}
