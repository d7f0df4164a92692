package esbuild

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/evanw/esbuild/pkg/api"
)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// ParseBrowsers turns entries like "chrome 136" or "ie 8" into engines.
func ParseBrowsers(browsers []string) ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(browsers))
	for _, b := range browsers {
		fields := strings.Fields(strings.ToLower(b))
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid browser %q: want \"<name> <version>\"", b)
		}
		e, err := engine(fields[0], fields[1])
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	return engines, nil
}

// ParseCompatibility turns a compatibility level like "ie8" into engines.
// "*" and "" mean no constraint.
func ParseCompatibility(level string) ([]api.Engine, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" || level == "*" {
		return nil, nil
	}
	i := strings.IndexFunc(level, unicode.IsDigit)
	if i <= 0 {
		return nil, fmt.Errorf("invalid compatibility %q: want a browser name followed by a version, like \"ie8\"", level)
	}
	e, err := engine(level[:i], level[i:])
	if err != nil {
		return nil, err
	}
	return []api.Engine{e}, nil
}

// ParseTarget maps a language level like "es2015" to an esbuild target.
func ParseTarget(target string) (api.Target, error) {
	t, ok := targets[strings.ToLower(strings.TrimSpace(target))]
	if !ok {
		return api.DefaultTarget, fmt.Errorf("unsupported script target %q", target)
	}
	return t, nil
}

func engine(name, version string) (api.Engine, error) {
	n, ok := engineNames[name]
	if !ok {
		return api.Engine{}, fmt.Errorf("unsupported browser %q", name)
	}
	return api.Engine{Name: n, Version: version}, nil
}
