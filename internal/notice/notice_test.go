package notice_test

import (
	"strings"
	"testing"

	"github.com/jonesrussell/autoload-next-post/internal/notice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, pluginName, requiredVersion string) string {
	t.Helper()

	var sb strings.Builder
	require.NoError(t, notice.Render(&sb, pluginName, requiredVersion))
	return sb.String()
}

func TestRender(t *testing.T) {
	t.Parallel()

	out := render(t, notice.DefaultPluginName, "6.0")

	assert.True(t, strings.HasPrefix(out, `<div class="notice notice-error">`))
	assert.Contains(t, out,
		"<p>Sorry, <strong>Auto Load Next Post</strong> requires WordPress 6.0 or higher. "+
			"Please upgrade your WordPress setup.</p>")
}

func TestRender_EscapesPluginName(t *testing.T) {
	t.Parallel()

	out := render(t, `<script>alert("x")</script>`, "6.0")

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		minimum string
		want    bool
	}{
		{name: "older minor", current: "5.9", minimum: "6.0", want: true},
		{name: "newer patch", current: "6.2.1", minimum: "6.0", want: false},
		{name: "equal", current: "6.0", minimum: "6.0", want: false},
		{name: "equal with patch zero", current: "6.0.0", minimum: "6.0", want: false},
		{name: "release candidate", current: "6.0-RC1", minimum: "6.0", want: false},
		{name: "old release candidate", current: "5.8-beta2", minimum: "6.0", want: true},
		{name: "unknown current", current: "", minimum: "6.0", want: false},
		{name: "garbage current", current: "latest", minimum: "6.0", want: true},
		{name: "garbage minimum", current: "6.0", minimum: "n/a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, notice.Required(tt.current, tt.minimum))
		})
	}
}
