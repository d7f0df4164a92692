// Package config resolves the effective build configuration from an
// environment snapshot and the invocation overrides.
//
// Path options and the minified-variant switch come from the environment
// only. The production mode is the one setting that consults both sources:
// a bare "--prod" flag or ENVIRONMENT=production each force it on.
//
// The resolved configuration is computed once at start-up and passed by
// pointer to every component; nothing in this package keeps global state.
package config
