// Package registry collects the collaborators compiled into the binary.
//
// Each package under modules/ implements Module and registers constructors
// for the pipeline roles it fills (style compiler, minifier, ...) and for
// notifiers. The registry turns those constructors into a Toolchain once the
// project settings are known.
package registry
