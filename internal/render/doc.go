// Package render draws detection results for inspection: a raster overlay
// of the walls on the scan and a vector plot of the walls in percentage
// space. Walls are coloured by the detector that produced them.
package render
