// Package defs writes and reads atlas definition files.
//
// # Overview
//
// A definition file tells a consumer where each named image ended up: which
// sheet, which pixel rectangle, and which normalized texture coordinates.
// [FromPacker] captures a packing result as an [Atlas]; the writers then
// serialize it in one of two formats.
//
// # Text Format
//
// The .defs format has four lines per image name, in sheet order:
//
//	sprites/hero.png
//	out/atlas0.png
//	0 0 32 48
//	0.000488 0.015137 0.976074 0.999512
//
// The lines are the image name, the sheet path, the source rectangle
// (x y w h, top-left origin, extrusion excluded) and the texture coordinates
// s0 s1 t0 t1. Images merged as duplicates appear once per name.
//
// # JSON Format
//
// The .json format follows the TexturePacker multi-page ("textures") layout,
// so existing loaders can read it:
//
//	{
//	  "textures": [
//	    {
//	      "image": "out/atlas0.png",
//	      "size": {"w": 1024, "h": 1024},
//	      "frames": {
//	        "sprites/hero.png": {
//	          "frame": {"x": 0, "y": 0, "w": 32, "h": 48},
//	          "rotated": false,
//	          "trimmed": false,
//	          "spriteSourceSize": {"x": 0, "y": 0, "w": 32, "h": 48},
//	          "sourceSize": {"w": 32, "h": 48},
//	          "uv": {"s0": 0.0005, "s1": 0.0151, "t0": 0.9761, "t1": 0.9995}
//	        }
//	      }
//	    }
//	  ],
//	  "meta": {"app": "imagepack", "version": "dev", "origin": "bottom-left", "extrude": 0}
//	}
//
// The "uv" object is an extension; readers that do not know it ignore it.
// [ReadJSON] also accepts the single-page hash format with a top-level
// "frames" object.
package defs
