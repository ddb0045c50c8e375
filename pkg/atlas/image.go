package atlas

import (
	"image"

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/observability"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

// Loader decodes the image stored at path into a top-left-origin pixel buffer.
// Implementations must return an error, never panic, for unreadable or
// unsupported files.
type Loader interface {
	Load(path string) (*pixel.Buffer, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*pixel.Buffer, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*pixel.Buffer, error) { return f(path) }

// Image is one unique pixel content plus every name that maps to it.
//
// The padded buffer holds the source pixels surrounded by Extrude pixels of
// replicated border on each edge. It may be purged and later re-decoded from
// the first name; the checksum and padded size recorded at registration must
// match on every re-decode.
type Image struct {
	names   []string
	loader  Loader
	extrude int

	// padded size
	width, height int

	sourceWidth, sourceHeight int

	checksum uint32
	pixels   *pixel.Buffer

	// top-left of the padded rectangle within its sheet
	x, y   int
	packed bool

	s0, s1, t0, t1 float32
}

// newImage loads name through loader and builds the padded buffer.
func newImage(name string, extrude int, loader Loader) (*Image, error) {
	img := &Image{
		names:   []string{name},
		loader:  loader,
		extrude: max(extrude, 0),
	}

	padded, src, err := img.load()
	if err != nil {
		return nil, err
	}

	img.sourceWidth = src.Width()
	img.sourceHeight = src.Height()
	img.width = padded.Width()
	img.height = padded.Height()
	img.checksum = padded.Checksum()
	img.pixels = padded

	observability.Cache().OnLoad(name, img.width*img.height)
	return img, nil
}

// load decodes the source and returns the padded and raw buffers.
func (img *Image) load() (padded, src *pixel.Buffer, err error) {
	name := img.names[0]
	src, err = img.loader.Load(name)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "failed to load %s", name)
	}
	if src == nil || src.Width() == 0 || src.Height() == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidImage, "%s has no pixel data", name)
	}
	return extrudeEdges(src, img.extrude), src, nil
}

// extrudeEdges returns src centered in a buffer grown by n pixels on every
// edge. Border pixels repeat the nearest source edge or corner pixel.
func extrudeEdges(src *pixel.Buffer, n int) *pixel.Buffer {
	w, h := src.Width(), src.Height()
	dst := pixel.New(w+2*n, h+2*n)
	dst.Blit(n, n, src)
	if n == 0 {
		return dst
	}

	right, bottom := n+w, n+h
	last := dst.Width() - 1
	lastRow := dst.Height() - 1

	// corners
	dst.FillRect(0, 0, n-1, n-1, src.At(0, 0))
	dst.FillRect(right, 0, last, n-1, src.At(w-1, 0))
	dst.FillRect(0, bottom, n-1, lastRow, src.At(0, h-1))
	dst.FillRect(right, bottom, last, lastRow, src.At(w-1, h-1))

	// top and bottom edges
	for x := 0; x < w; x++ {
		dst.FillRect(n+x, 0, n+x, n-1, src.At(x, 0))
		dst.FillRect(n+x, bottom, n+x, lastRow, src.At(x, h-1))
	}
	// left and right edges
	for y := 0; y < h; y++ {
		dst.FillRect(0, n+y, n-1, n+y, src.At(0, y))
		dst.FillRect(right, n+y, last, n+y, src.At(w-1, y))
	}
	return dst
}

// Pixels returns the padded buffer, re-decoding it if it was purged.
//
// A re-decode whose size or checksum differs from the first load means the
// source changed on disk; the error is coded ErrCodeSourceChanged and must
// not be recovered from.
func (img *Image) Pixels() (*pixel.Buffer, error) {
	if img.pixels != nil {
		return img.pixels, nil
	}

	name := img.names[0]
	padded, _, err := img.load()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceChanged, err, "%s could not be reloaded", name)
	}
	if padded.Width() != img.width || padded.Height() != img.height {
		return nil, errors.New(errors.ErrCodeSourceChanged,
			"%s changed size from %dx%d to %dx%d since it was added",
			name, img.width, img.height, padded.Width(), padded.Height())
	}
	if sum := padded.Checksum(); sum != img.checksum {
		return nil, errors.New(errors.ErrCodeSourceChanged,
			"%s changed since it was added (checksum %08x, was %08x)", name, sum, img.checksum)
	}

	img.pixels = padded
	observability.Cache().OnMaterialize(name, img.width*img.height)
	return padded, nil
}

// Purge frees the padded buffer. The next Pixels call reloads it.
func (img *Image) Purge() {
	if img.pixels == nil {
		return
	}
	img.pixels = nil
	observability.Cache().OnPurge(img.names[0], img.width*img.height)
}

// EqualPixelData reports whether img and other hold identical padded pixels.
// Checksums and sizes are compared first; buffers are only compared (and
// re-decoded if needed) when those match.
func (img *Image) EqualPixelData(other *Image) (bool, error) {
	if img.checksum != other.checksum || img.width != other.width || img.height != other.height {
		return false, nil
	}
	a, err := img.Pixels()
	if err != nil {
		return false, err
	}
	b, err := other.Pixels()
	if err != nil {
		return false, err
	}
	return a.Equal(b), nil
}

// AddName records another name for the same pixel content.
func (img *Image) AddName(name string) {
	img.names = append(img.names, name)
}

// Names returns every name of the image in registration order.
func (img *Image) Names() []string { return img.names }

// Name returns the first registered name.
func (img *Image) Name() string { return img.names[0] }

// Extrude returns the border added on each edge.
func (img *Image) Extrude() int { return img.extrude }

// Width returns the padded width.
func (img *Image) Width() int { return img.width }

// Height returns the padded height.
func (img *Image) Height() int { return img.height }

// SourceWidth returns the width of the original image.
func (img *Image) SourceWidth() int { return img.sourceWidth }

// SourceHeight returns the height of the original image.
func (img *Image) SourceHeight() int { return img.sourceHeight }

// SourceOffset returns the position of the source pixels within the padded buffer.
func (img *Image) SourceOffset() image.Point { return image.Pt(img.extrude, img.extrude) }

// Checksum returns the CRC-32 of the padded buffer recorded at registration.
func (img *Image) Checksum() uint32 { return img.checksum }

// HasData reports whether the padded buffer is resident.
func (img *Image) HasData() bool { return img.pixels != nil }

// Packed reports whether the last Pack placed the image.
func (img *Image) Packed() bool { return img.packed }

// PaddedRect returns the sheet-relative rectangle including extrusion.
func (img *Image) PaddedRect() image.Rectangle {
	return image.Rect(img.x, img.y, img.x+img.width, img.y+img.height)
}

// SourceRect returns the sheet-relative rectangle of the source pixels.
func (img *Image) SourceRect() image.Rectangle {
	x, y := img.x+img.extrude, img.y+img.extrude
	return image.Rect(x, y, x+img.sourceWidth, y+img.sourceHeight)
}

// TexCoords returns the normalized texture coordinates computed by Pack.
func (img *Image) TexCoords() (s0, s1, t0, t1 float32) {
	return img.s0, img.s1, img.t0, img.t1
}
