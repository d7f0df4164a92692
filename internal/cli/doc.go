// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates the task name and override tokens into the application's
// internal configuration.
package cli
