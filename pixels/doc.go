// Package pixels describes the multi-dimensional pixel sets that a rendering
// engine turns into displayable images.
//
// A Set is immutable: it records the X, Y, Z, T and C extents plus the name
// of the numeric type every sample is stored as.
package pixels
