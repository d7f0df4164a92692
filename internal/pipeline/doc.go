// Package pipeline runs the build stages: it selects the files a stage
// consumes, streams each one through the stage's transforms and writes the
// results to the stage's destination.
//
// Which transforms a stage runs is decided once, when the stage is built,
// from a two-variant descriptor (development, production). Stage bodies
// never branch on the mode themselves.
package pipeline
