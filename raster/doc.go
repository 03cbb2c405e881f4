// Package raster converts engine output into displayable images.
//
// Engines return planes either as packed integers (one 0xAARRGGBB value per
// pixel) or as compressed bytes. Compressed planes are JPEG when a lossy
// quality was requested and a zstd frame of raw RGBA samples when lossless
// transport was requested; PNG is also accepted on decode.
package raster
