// Package notice renders the admin warning shown when the host platform is
// older than the plugin supports.
package notice

import (
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultPluginName is the display name used in the notice.
const DefaultPluginName = "Auto Load Next Post"

// DefaultRequiredVersion is the oldest WordPress release the plugin supports.
const DefaultRequiredVersion = "4.7"

var requirementTemplate = template.Must(template.New("requirement").Parse(
	`<div class="notice notice-error">
	<p>Sorry, <strong>{{.PluginName}}</strong> requires WordPress {{.RequiredVersion}} or higher. Please upgrade your WordPress setup.</p>
</div>
`))

type requirementData struct {
	PluginName      string
	RequiredVersion string
}

// Render writes the notice fragment to w.
func Render(w io.Writer, pluginName, requiredVersion string) error {
	return requirementTemplate.Execute(w, requirementData{
		PluginName:      pluginName,
		RequiredVersion: requiredVersion,
	})
}

// Required reports whether current is below minimum and the notice should be
// shown. An empty current version means the platform version is unknown and
// nothing is shown; an unparseable one is treated as too old.
func Required(current, minimum string) bool {
	current = strings.TrimSpace(current)
	if current == "" {
		return false
	}

	want, err := semver.NewVersion(minimum)
	if err != nil {
		return false
	}

	have, err := semver.NewVersion(stripPrerelease(current))
	if err != nil {
		return true
	}

	return have.LessThan(want)
}

// stripPrerelease drops WordPress suffixes like "-RC1" or "-beta2-55000";
// a release candidate of 6.0 satisfies a 6.0 requirement.
func stripPrerelease(v string) string {
	if i := strings.IndexByte(v, '-'); i > 0 {
		return v[:i]
	}
	return v
}
