// Package app contains the core application logic. It resolves the
// configuration of one invocation, wires the toolchain from the registered
// modules, composes the named tasks and runs the selected one, decoupled from
// any specific entrypoint like a CLI.
package app
