// Package pixel provides the RGBA pixel grid used by the atlas packer.
//
// # Overview
//
// A [Buffer] is a width×height grid of packed 32-bit [Pixel] values stored
// row-major with (0,0) at the top-left corner. Buffers are plain values owned
// by whoever created them: a packed image owns its padded source pixels and a
// sheet owns its composited output. Nothing in this package shares storage
// between buffers.
//
// # Bounds
//
// Reads outside the grid return [Missing] (opaque magenta) so that a bad
// coordinate shows up as an obvious colour in the output instead of a crash.
// Writes outside the grid are ignored. [Buffer.FillRect] and [Buffer.Blit]
// clip to the destination.
//
// # Equality
//
// [Buffer.Equal] compares dimensions and every pixel exactly. [Buffer.Checksum]
// is a CRC-32 over the packed bytes and is only a cheap pre-filter: equal
// buffers always have equal checksums, the converse is not guaranteed.
//
// The [Float] type is a floating-point alternative whose equality uses a
// channel-wise tolerance of 1e-5.
//
// # Conversion
//
// [FromImage] converts any decoded [image.Image] into a buffer with 8-bit
// non-premultiplied channels, and [Buffer.NRGBA] converts back for encoding.
package pixel
