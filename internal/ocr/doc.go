// Package ocr finds printed words on a floor plan scan with Tesseract
// (through gosseract/v2) and turns them into a text mask.
//
// Room labels, dimensions and notes are drawn with the same ink as walls and
// would otherwise survive thresholding as short thick strokes. The wall
// pipeline intersects its binary image with the mask from Masker.TextMask so
// that those strokes become background before any wall is traced.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// When Tesseract fails the pipeline carries on with an all-keep mask and
// marks the run as degraded; see the pipeline package.
package ocr
