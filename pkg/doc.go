// Package pkg provides the core libraries for imagepack texture atlas packing.
//
// # Overview
//
// imagepack packs many small images into a few large sheets and records, for
// every image name, the sheet it landed on with its pixel rectangle and
// texture coordinates. The pkg directory is organized into three areas:
//
//  1. Domain logic: [pixel] buffers and [atlas] packing
//  2. Collaborators: [codec] image files, [defs] definition files
//  3. Orchestration: [pipeline] (discover → add → pack → write)
//
// # Architecture
//
// The typical data flow through imagepack:
//
//	image files
//	     ↓
//	[codec] decode into [pixel.Buffer]
//	     ↓
//	[atlas] dedup, extrude, pack onto sheets
//	     ↓
//	[codec] save sheets, [defs] write definitions
//
// # Quick Start
//
// Pack two images and read their placements:
//
//	import (
//	    "github.com/matzehuels/imagepack/pkg/atlas"
//	    "github.com/matzehuels/imagepack/pkg/codec"
//	)
//
//	p := atlas.New(codec.New())
//	p.SetSheetSize(512, 512)
//	p.SetExtrude(1)
//	_ = p.AddImage("sprites/hero.png")
//	_ = p.AddImage("sprites/coin.png")
//
//	stats := p.Pack()
//	for _, pl := range p.Placements() {
//	    fmt.Println(pl.Names, pl.Sheet, pl.X, pl.Y, pl.S0, pl.T0)
//	}
//	sheet, _ := p.Compose(0)
//
// # Main Packages
//
// [pixel] - 32-bit RGBA pixel buffers with fill, blit and CRC-32 checksums.
//
// [atlas] - The packer: binary-tree placement, multi-sheet distribution,
// compact and power-of-two sizing, edge extrusion, duplicate merging and
// the purge/re-materialize memory policy.
//
// [codec] - Image decoding and PNG encoding backed by disintegration/imaging.
//
// [defs] - The line-oriented .defs format and a TexturePacker-style JSON format.
//
// [pipeline] - The complete packing run used by the CLI.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for pipeline stages and image memory events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/atlas/...    # Specific package
//
// [pixel]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/pixel
// [pixel.Buffer]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/pixel#Buffer
// [atlas]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/atlas
// [codec]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/codec
// [defs]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/defs
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/imagepack/pkg/observability
package pkg
