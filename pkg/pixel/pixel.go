package pixel

import "math"

// Pixel is an RGBA colour with 8 bits per channel packed as R<<24|G<<16|B<<8|A.
type Pixel uint32

// Missing is returned for reads outside a buffer: opaque magenta.
const Missing Pixel = 0xFF00FFFF

// Transparent is fully transparent black, the default sheet background.
const Transparent Pixel = 0x00000000

// RGBA packs four 8-bit channels into a Pixel.
func RGBA(r, g, b, a uint8) Pixel {
	return Pixel(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// R returns the red channel.
func (p Pixel) R() uint8 { return uint8(p >> 24) }

// G returns the green channel.
func (p Pixel) G() uint8 { return uint8(p >> 16) }

// B returns the blue channel.
func (p Pixel) B() uint8 { return uint8(p >> 8) }

// A returns the alpha channel.
func (p Pixel) A() uint8 { return uint8(p) }

// Float converts p to normalized floating-point channels.
func (p Pixel) Float() Float {
	return Float{
		R: float32(p.R()) / 255,
		G: float32(p.G()) / 255,
		B: float32(p.B()) / 255,
		A: float32(p.A()) / 255,
	}
}

// floatTolerance is the channel-wise tolerance used by Float.Equal.
const floatTolerance = 1e-5

// Float is an RGBA colour with normalized [0,1] channels.
type Float struct {
	R, G, B, A float32
}

// Pixel quantizes f to 8 bits per channel. Channels are truncated, not
// rounded, and clamped to [0,1] first.
func (f Float) Pixel() Pixel {
	return RGBA(quantize(f.R), quantize(f.G), quantize(f.B), quantize(f.A))
}

// Equal reports whether every channel of f and o differs by at most 1e-5.
func (f Float) Equal(o Float) bool {
	return near(f.R, o.R) && near(f.G, o.G) && near(f.B, o.B) && near(f.A, o.A)
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= floatTolerance
}

func quantize(c float32) uint8 {
	switch {
	case c <= 0:
		return 0
	case c >= 1:
		return 255
	}
	return uint8(c * 255)
}
