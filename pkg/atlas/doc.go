// Package atlas packs rectangular images into texture atlas sheets.
//
// # Overview
//
// A [Packer] holds one packing session: the registered images, the target
// sheet size and the sheets produced by the last [Packer.Pack]. Images are
// registered by name through [Packer.AddImage]; the packer asks its [Loader]
// for the pixels, extrudes the borders, and merges names whose pixel content
// is identical into a single [Image].
//
// # Algorithm
//
// Each [Sheet] owns a binary space-partition tree. Inserting an image walks
// the tree depth-first, left child first; a free leaf that is larger than the
// image is split along the axis with the larger leftover so that the left
// child matches the image in one dimension, and insertion continues there.
// Placed images never move.
//
// [Packer.Pack] fills sheets greedily: every pass creates a sheet at the
// target size and tries all still-unpacked images, tallest first and, among
// those, widest first. Passes stop when a new sheet receives nothing. With
// compact mode the images of the last sheet are re-packed into the smallest
// sheet that holds them, grown one pixel at a time, alternating between
// width and height.
//
// # Memory
//
// Decoded pixel buffers can be purged and re-decoded on demand. With caching
// disabled ([Packer.SetCaching]) the packer keeps at most one image buffer
// resident while registering images, and [Packer.Compose] frees each image
// again right after copying it into the sheet. This bounds memory to the
// largest image plus one sheet, at the cost of decoding every image twice.
//
// A source whose pixels differ on re-decode is a fatal error: the packer
// returns an error coded [errors.ErrCodeSourceChanged] and the run must stop.
//
// # Texture Coordinates
//
// After packing, each image gets normalized coordinates (s0, s1, t0, t1) of
// its source rectangle, inset by half a texel on every edge. With the
// [BottomLeft] origin the vertical axis is flipped.
//
// [errors.ErrCodeSourceChanged]: github.com/matzehuels/imagepack/pkg/errors.ErrCodeSourceChanged
package atlas
