// Package plane identifies 2-D slices of a pixel set.
//
// A Key names one plane: the orientation of the slice and the two fixed
// coordinates along the remaining dimensions. Keys are comparable values and
// are used verbatim as cache keys.
package plane
