// Package project loads the optional HCL project file that tunes the
// collaborators behind each pipeline stage: the style compiler command, the
// browser matrix, the script target, the polyfill source and the live-reload
// endpoint.
//
// Every block and attribute is optional. Expressions may call env("NAME")
// (with an optional fallback argument) and read the mode and root variables.
package project
