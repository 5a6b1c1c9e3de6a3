// Package imaging provides the raster primitives the wall detector is built
// from.
//
// Scans are decoded with disintegration/imaging and converted to 8-bit
// grayscale (LoadGray, ImageCache). Everything downstream works on Mask, a
// row-major 8-bit grid where Foreground (255) marks ink and Background (0)
// marks paper:
//
//   - AdaptiveThresholdInv: Gaussian-weighted local mean threshold
//   - Erode, Dilate, Open: square-kernel morphology
//   - ConnectedComponents: 8-connected labelling with area and bounds
//   - DistanceTransform: exact Euclidean distance to the nearest background
//   - Skeletonize: Zhang-Suen thinning
//   - TraceContours: Moore-neighbour outer borders
//   - BlurMask, Sobel, Canny: edge extraction
//   - Crop, PercentRect, QuadrantRect: region selection for debug views
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner;
// regions are inclusive at the top-left and exclusive at the bottom-right.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Masks are not synchronized, but the
// processing functions above return a new Mask and never write to their
// inputs, so a finished Mask may be shared between readers.
package imaging
