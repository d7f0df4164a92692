// Package testutil provides helpers for tests that run whole tasks against a
// temporary project.
package testutil
