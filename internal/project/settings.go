package project

import (
	"github.com/specialistvlad/assetgrid/internal/config"
)

// DefaultFile is the project file looked up in the project root.
const DefaultFile = "assetgrid.hcl"

// Collaborator defaults applied when the project file leaves them unset.
const (
	DefaultSassCommand   = "sass"
	DefaultCompatibility = "ie8"
	DefaultScriptTarget  = "es2015"
	DefaultPolyfill      = "node_modules/@babel/polyfill/browser.js"
	DefaultReloadEvent   = "reload"
	DefaultReloadTimeout = "5s"
)

// DefaultBrowsers is the prefixing matrix: the two latest majors of the
// evergreen browsers plus the legacy targets kept for old installs.
var DefaultBrowsers = []string{
	"chrome 136", "chrome 137",
	"edge 136", "edge 137",
	"firefox 138", "firefox 139",
	"safari 5", "ie 8", "ie 9",
}

// Settings is the decoded project file after defaults are applied.
type Settings struct {
	Sass       Sass
	Styles     Styles
	Scripts    Scripts
	LiveReload *LiveReload
}

// Sass configures the external style compiler.
type Sass struct {
	Command   string   `hcl:"command,optional"`
	Args      []string `hcl:"args,optional"`
	LoadPaths []string `hcl:"load_paths,optional"`
}

// Styles configures post-processing of compiled style sheets.
type Styles struct {
	Compatibility string   `hcl:"compatibility,optional"`
	Browsers      []string `hcl:"browsers,optional"`
}

// Scripts configures transpiling and bundling.
type Scripts struct {
	Target   string `hcl:"target,optional"`
	Polyfill string `hcl:"polyfill,optional"`
}

// LiveReload configures the socket.io endpoint notified after watch rebuilds.
type LiveReload struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// Defaults returns the settings used when no project file exists.
func Defaults(root string) *Settings {
	s := &Settings{}
	s.applyDefaults(root)
	return s
}

// applyDefaults fills every unset field. Relative paths are anchored at root.
func (s *Settings) applyDefaults(root string) {
	if s.Sass.Command == "" {
		s.Sass.Command = DefaultSassCommand
	}
	for i, p := range s.Sass.LoadPaths {
		s.Sass.LoadPaths[i] = config.NormalizePath(root, p)
	}

	if s.Styles.Compatibility == "" {
		s.Styles.Compatibility = DefaultCompatibility
	}
	if len(s.Styles.Browsers) == 0 {
		s.Styles.Browsers = append([]string(nil), DefaultBrowsers...)
	}

	if s.Scripts.Target == "" {
		s.Scripts.Target = DefaultScriptTarget
	}
	if s.Scripts.Polyfill == "" {
		s.Scripts.Polyfill = DefaultPolyfill
	}
	s.Scripts.Polyfill = config.NormalizePath(root, s.Scripts.Polyfill)

	if lr := s.LiveReload; lr != nil {
		if lr.Namespace == "" {
			lr.Namespace = "/"
		}
		if lr.Event == "" {
			lr.Event = DefaultReloadEvent
		}
		if lr.Timeout == "" {
			lr.Timeout = DefaultReloadTimeout
		}
	}
}
