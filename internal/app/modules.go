package app

import (
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/specialistvlad/assetgrid/modules/esbuild"
	"github.com/specialistvlad/assetgrid/modules/livereload"
	"github.com/specialistvlad/assetgrid/modules/mediaqueries"
	"github.com/specialistvlad/assetgrid/modules/rename"
	"github.com/specialistvlad/assetgrid/modules/sass"
	"github.com/specialistvlad/assetgrid/modules/sourcemaps"
)

// coreModules is the definitive list of all modules that are compiled into
// the assetgrid binary.
var coreModules = []registry.Module{
	&sass.Module{},
	&sourcemaps.Module{},
	&mediaqueries.Module{},
	&esbuild.Module{},
	&rename.Module{},
	&livereload.Module{},
}
