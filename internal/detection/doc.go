// Package detection finds plan symbols and label areas that sit alongside
// the walls of a scanned floor plan.
//
// Light fixtures are drawn as circles and are found with a gradient Hough
// transform over the Canny edges of the scan (DetectLights). Printed labels
// are located from edge density and run statistics (DetectTextRegions) when
// no OCR engine is available to produce a text mask.
//
// Symbol positions are reported in percent of the image size, the same
// frame the wall segments use; radii stay in pixels.
package detection
