// Package walls implements hybrid wall detection for floor-plan scans.
//
// A run has five stages, each a pure function of its inputs:
//
//  1. Preprocess: grayscale scan and text mask to a cleaned binary mask
//  2. DetectRidgeWalls (Path A): filled walls from distance-transform ridges
//  3. DetectParallelWalls (Path B): hollow walls from paired parallel edges
//  4. Fuse: merges detections both paths agree on
//  5. Validate: drops degenerate segments
//
// Paths A and B share nothing but the read-only cleaned mask and may run
// concurrently.
//
// # Coordinates
//
// Detectors work in pixels and emit WallSegment coordinates in percent of
// the image width (x) and height (y), rounded to three decimals. Thickness
// stays in pixels.
//
// # Ordering
//
// Path B pairing and fusion are greedy and depend on iteration order.
// Both iterate in the index order produced by the stage before them, so a
// given image always yields the same result.
package walls
