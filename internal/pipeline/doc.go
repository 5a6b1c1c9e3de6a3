// Package pipeline runs the hybrid wall detector end to end.
//
// A run takes one grayscale scan through the text mask, preprocessing, both
// wall detectors, fusion and validation, and assembles the Result document
// with its metadata, the final wall list and any detected light fixtures.
// Path A, Path B and symbol detection only read the cleaned image and run
// concurrently.
package pipeline
