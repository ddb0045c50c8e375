package pixel

import (
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
)

// Buffer is a width×height grid of pixels stored row-major, top row first.
// The zero value is an empty 0×0 buffer ready for use.
type Buffer struct {
	width  int
	height int
	pix    []Pixel
}

// New returns a w×h buffer with every pixel set to Transparent.
// Negative dimensions are treated as 0.
func New(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Resize reallocates storage to w×h. Negative dimensions clamp to 0.
// Prior contents are not preserved.
func (b *Buffer) Resize(w, h int) {
	b.width = max(w, 0)
	b.height = max(h, 0)
	b.pix = make([]Pixel, b.width*b.height)
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the pixel at (x,y), or Missing when the coordinate is outside
// the buffer.
func (b *Buffer) At(x, y int) Pixel {
	if !b.inside(x, y) {
		return Missing
	}
	return b.pix[y*b.width+x]
}

// Set writes p at (x,y). Writes outside the buffer are ignored.
func (b *Buffer) Set(x, y int, p Pixel) {
	if b.inside(x, y) {
		b.pix[y*b.width+x] = p
	}
}

// Fill sets every pixel to p.
func (b *Buffer) Fill(p Pixel) {
	for i := range b.pix {
		b.pix[i] = p
	}
}

// FillRect fills the rectangle with inclusive corners (x0,y0) and (x1,y1).
// Corners may be given in either order; the rectangle is clamped to the
// buffer and nothing happens if the clamped area is empty.
func (b *Buffer) FillRect(x0, y0, x1, y1 int, p Pixel) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, b.width-1), min(y1, b.height-1)
	if x0 > x1 || y0 > y1 {
		return
	}
	for y := y0; y <= y1; y++ {
		row := b.pix[y*b.width : (y+1)*b.width]
		for x := x0; x <= x1; x++ {
			row[x] = p
		}
	}
}

// Blit copies src into b with src's top-left corner at (px,py). The copy is
// clipped to b; source pixels that land outside b are dropped.
func (b *Buffer) Blit(px, py int, src *Buffer) {
	if src == nil {
		return
	}
	dst := image.Rect(px, py, px+src.width, py+src.height).Intersect(b.Bounds())
	if dst.Empty() {
		return
	}
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		sy := y - py
		srow := src.pix[sy*src.width+(dst.Min.X-px) : sy*src.width+(dst.Max.X-px)]
		copy(b.pix[y*b.width+dst.Min.X:y*b.width+dst.Max.X], srow)
	}
}

// Checksum returns the CRC-32 (IEEE) of the packed pixel bytes, row-major
// from the top row, each pixel written big-endian as R,G,B,A.
func (b *Buffer) Checksum() uint32 {
	h := crc32.NewIEEE()
	row := make([]byte, 4*b.width)
	for y := 0; y < b.height; y++ {
		for x, p := range b.pix[y*b.width : (y+1)*b.width] {
			binary.BigEndian.PutUint32(row[4*x:], uint32(p))
		}
		h.Write(row)
	}
	return h.Sum32()
}

// Equal reports whether b and o have the same dimensions and identical pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if o == nil || b.width != o.width || b.height != o.height {
		return false
	}
	for i, p := range b.pix {
		if o.pix[i] != p {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{width: b.width, height: b.height, pix: make([]Pixel, len(b.pix))}
	copy(c.pix, b.pix)
	return c
}

// FromImage converts img into a buffer with 8-bit non-premultiplied channels.
// The result is anchored at (0,0) regardless of img.Bounds().Min.
func FromImage(img image.Image) *Buffer {
	r := img.Bounds()
	b := New(r.Dx(), r.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.height; y++ {
			off := nrgba.PixOffset(r.Min.X, r.Min.Y+y)
			for x := 0; x < b.width; x++ {
				s := nrgba.Pix[off+4*x : off+4*x+4 : off+4*x+4]
				b.pix[y*b.width+x] = RGBA(s[0], s[1], s[2], s[3])
			}
		}
		return b
	}

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
			b.pix[y*b.width+x] = RGBA(c.R, c.G, c.B, c.A)
		}
	}
	return b
}

// NRGBA converts b into an *image.NRGBA suitable for encoding.
func (b *Buffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	for i, p := range b.pix {
		img.Pix[4*i+0] = p.R()
		img.Pix[4*i+1] = p.G()
		img.Pix[4*i+2] = p.B()
		img.Pix[4*i+3] = p.A()
	}
	return img
}
