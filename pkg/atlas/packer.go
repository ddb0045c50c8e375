package atlas

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/observability"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

// Default session settings.
const (
	DefaultSheetWidth  = 1024
	DefaultSheetHeight = 1024
)

// Origin selects where texture coordinate t = 0 lies.
type Origin int

const (
	// BottomLeft puts t = 0 at the bottom row of the sheet.
	BottomLeft Origin = iota
	// TopLeft puts t = 0 at the top row of the sheet.
	TopLeft
)

// String returns the flag spelling of the origin.
func (o Origin) String() string {
	switch o {
	case BottomLeft:
		return "bottom-left"
	case TopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// ParseOrigin accepts "bottom-left" or "top-left", case-insensitively.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bottom-left":
		return BottomLeft, nil
	case "top-left":
		return TopLeft, nil
	}
	return BottomLeft, errors.New(errors.ErrCodeInvalidOrigin,
		"unknown texture coordinate origin %q (want bottom-left or top-left)", s)
}

// Option configures a Packer.
type Option func(*Packer)

// WithLogger sets the logger for warnings and progress. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(p *Packer) {
		if l != nil {
			p.logger = l
		}
	}
}

// Packer is one packing session. It is not safe for concurrent use.
type Packer struct {
	loader Loader
	logger *log.Logger

	images []*Image
	names  map[string]struct{}
	sheets []*Sheet

	width, height int
	powerOfTwo    bool
	compact       bool
	caching       bool
	extrude       int
	origin        Origin
	background    pixel.Pixel

	compactFailed bool
}

// New returns a packer that decodes images with loader. Defaults: 1024x1024
// sheets, no power-of-two rounding, no compaction, caching on, no extrusion,
// bottom-left origin and a transparent background.
func New(loader Loader, opts ...Option) *Packer {
	p := &Packer{
		loader:     loader,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		names:      make(map[string]struct{}),
		width:      DefaultSheetWidth,
		height:     DefaultSheetHeight,
		caching:    true,
		origin:     BottomLeft,
		background: pixel.Transparent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// =============================================================================
// Settings
// =============================================================================

// SetSheetSize sets the target size for new sheets. Values below 1 become 1;
// with power-of-two enabled both axes are rounded up.
func (p *Packer) SetSheetSize(width, height int) {
	p.width, p.height = max(width, 1), max(height, 1)
	if p.powerOfTwo {
		p.width, p.height = nextPowerOfTwo(p.width), nextPowerOfTwo(p.height)
	}
}

// SheetSize returns the effective target sheet size.
func (p *Packer) SheetSize() (width, height int) { return p.width, p.height }

// SetPowerOfTwo toggles power-of-two sheet sizes and re-applies the current size.
func (p *Packer) SetPowerOfTwo(on bool) {
	p.powerOfTwo = on
	p.SetSheetSize(p.width, p.height)
}

// PowerOfTwo reports whether sheet sizes are rounded to powers of two.
func (p *Packer) PowerOfTwo() bool { return p.powerOfTwo }

// SetCompact toggles shrinking of the last sheet.
func (p *Packer) SetCompact(on bool) { p.compact = on }

// Compact reports whether the last sheet is shrunk.
func (p *Packer) Compact() bool { return p.compact }

// SetCaching toggles keeping decoded buffers resident. Turning caching off
// purges every registered image.
func (p *Packer) SetCaching(on bool) {
	p.caching = on
	if !on {
		p.purgeAll(nil)
	}
}

// Caching reports whether decoded buffers stay resident.
func (p *Packer) Caching() bool { return p.caching }

// SetExtrude sets the border added to images registered from now on.
// Negative values become 0.
func (p *Packer) SetExtrude(n int) { p.extrude = max(n, 0) }

// Extrude returns the border added to newly registered images.
func (p *Packer) Extrude() int { return p.extrude }

// SetOrigin sets the texture coordinate origin. Unknown values are ignored.
func (p *Packer) SetOrigin(o Origin) {
	if o == BottomLeft || o == TopLeft {
		p.origin = o
	}
}

// Origin returns the texture coordinate origin.
func (p *Packer) Origin() Origin { return p.origin }

// SetBackground sets the fill color of composed sheets.
func (p *Packer) SetBackground(c pixel.Pixel) { p.background = c }

// Background returns the fill color of composed sheets.
func (p *Packer) Background() pixel.Pixel { return p.background }

// =============================================================================
// Registry
// =============================================================================

// AddImage registers the image stored at name.
//
// Recoverable rejections return an error and leave the registry unchanged:
// a name seen before (ErrCodeDuplicateName), a load failure
// (ErrCodeInvalidImage) or a padded size of 1 pixel or less on either axis
// (ErrCodeImageTooSmall). A name whose pixels equal an already registered
// image is merged into it and returns nil. Errors for which errors.IsFatal
// reports true end the session.
func (p *Packer) AddImage(name string) error {
	if _, seen := p.names[name]; seen {
		p.logger.Warn("image already added", "image", name)
		return errors.New(errors.ErrCodeDuplicateName, "%s was already added", name)
	}

	img, err := newImage(name, p.extrude, p.loader)
	if err != nil {
		p.logger.Warn("unable to load image", "image", name, "err", err)
		return err
	}
	if img.width <= 1 || img.height <= 1 {
		p.logger.Warn("image too small", "image", name, "width", img.width, "height", img.height)
		return errors.New(errors.ErrCodeImageTooSmall,
			"%s is %dx%d after extrusion, need at least 2x2", name, img.width, img.height)
	}

	var original *Image
	for _, other := range p.images {
		same, err := img.EqualPixelData(other)
		if err != nil {
			return err
		}
		if same {
			original = other
			break
		}
	}

	p.names[name] = struct{}{}
	if original != nil {
		original.AddName(name)
		observability.Cache().OnDuplicate(name, original.Name())
		p.logger.Debug("merged duplicate image", "image", name, "original", original.Name())
	} else {
		p.images = append(p.images, img)
		p.logger.Debug("added image", "image", name,
			"width", img.sourceWidth, "height", img.sourceHeight)
	}

	if !p.caching {
		p.purgeAll(img)
	}
	return nil
}

// purgeAll purges every registered image except keep.
func (p *Packer) purgeAll(keep *Image) {
	for _, img := range p.images {
		if img != keep {
			img.Purge()
		}
	}
}

// Images returns the registered unique images in registration order.
func (p *Packer) Images() []*Image { return p.images }

// NumImages returns the number of registered unique images.
func (p *Packer) NumImages() int { return len(p.images) }

// ClearImages drops every registered image and, with them, all sheets.
func (p *Packer) ClearImages() {
	p.ClearSheets()
	p.images = nil
	p.names = make(map[string]struct{})
}

// ClearSheets drops the sheets of the last Pack and marks all images unpacked.
func (p *Packer) ClearSheets() {
	p.sheets = nil
	p.compactFailed = false
	for _, img := range p.images {
		img.packed = false
		img.x, img.y = 0, 0
		img.s0, img.s1, img.t0, img.t1 = 0, 0, 0, 0
	}
}

// =============================================================================
// Packing
// =============================================================================

// Pack distributes the registered images over as many sheets as needed,
// optionally compacts the last one, and computes texture coordinates.
// Any previous sheets are discarded first. Images that fit on no sheet are
// left unpacked and reported in the returned Stats.
func (p *Packer) Pack() Stats {
	p.ClearSheets()

	for {
		var pending []*Image
		for _, img := range p.images {
			if !img.packed {
				pending = append(pending, img)
			}
		}
		if len(pending) == 0 {
			break
		}
		s := NewSheet(p.width, p.height)
		if packSheet(s, pending) == 0 {
			break
		}
		p.sheets = append(p.sheets, s)
	}

	if p.compact && len(p.sheets) > 0 {
		last := p.sheets[len(p.sheets)-1]
		p.sheets = p.sheets[:len(p.sheets)-1]
		p.sheets = append(p.sheets, p.compactSheet(last.images))
	}

	p.computeTexCoords()

	stats := p.Stats()
	for _, img := range p.images {
		if !img.packed {
			p.logger.Warn("unable to pack image", "image", img.Name(),
				"size", fmt.Sprintf("%dx%d", img.width, img.height),
				"sheet", fmt.Sprintf("%dx%d", p.width, p.height))
		}
	}
	p.logger.Info("packed images", "packed", stats.Packed, "total", stats.Images, "sheets", stats.Sheets)
	return stats
}

// packSheet inserts images into s, tallest first and then widest first, and
// returns how many were placed. images is reordered in place.
func packSheet(s *Sheet, images []*Image) int {
	slices.SortStableFunc(images, func(a, b *Image) int { return b.height - a.height })
	slices.SortStableFunc(images, func(a, b *Image) int { return b.width - a.width })

	n := 0
	for _, img := range images {
		img.packed = s.Insert(img)
		if img.packed {
			n++
		}
	}
	return n
}

// computeTexCoords derives (s0, s1, t0, t1) for every placed image from its
// source rectangle, inset by half a texel.
func (p *Packer) computeTexCoords() {
	for _, s := range p.sheets {
		sw, sh := float32(s.width), float32(s.height)
		for _, img := range s.images {
			r := img.SourceRect()
			y := r.Min.Y
			if p.origin == BottomLeft {
				y = s.height - r.Min.Y - r.Dy()
			}
			img.s0 = (float32(r.Min.X) + 0.5) / sw
			img.s1 = (float32(r.Max.X) - 0.5) / sw
			img.t0 = (float32(y) + 0.5) / sh
			img.t1 = (float32(y+r.Dy()) - 0.5) / sh
		}
	}
}

// Sheets returns the sheets produced by the last Pack.
func (p *Packer) Sheets() []*Sheet { return p.sheets }

// NumSheets returns the number of sheets produced by the last Pack.
func (p *Packer) NumSheets() int { return len(p.sheets) }

// Compose renders sheet i with the session's background and caching policy.
func (p *Packer) Compose(i int) (*pixel.Buffer, error) {
	if i < 0 || i >= len(p.sheets) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sheet %d out of range [0, %d)", i, len(p.sheets))
	}
	return p.sheets[i].Compose(p.background, p.caching)
}

// =============================================================================
// Results
// =============================================================================

// Placement describes where one unique image ended up.
type Placement struct {
	Names []string
	Sheet int

	// Source rectangle in sheet pixels, top-left origin, extrusion excluded.
	X, Y, Width, Height int

	// Sheet position and size of the padded rectangle.
	PaddedX, PaddedY, PaddedWidth, PaddedHeight int

	S0, S1, T0, T1 float32
}

// Placements lists every packed image, sheet by sheet in insertion order.
func (p *Packer) Placements() []Placement {
	var out []Placement
	for i, s := range p.sheets {
		for _, img := range s.images {
			src, pad := img.SourceRect(), img.PaddedRect()
			out = append(out, Placement{
				Names:        slices.Clone(img.names),
				Sheet:        i,
				X:            src.Min.X,
				Y:            src.Min.Y,
				Width:        src.Dx(),
				Height:       src.Dy(),
				PaddedX:      pad.Min.X,
				PaddedY:      pad.Min.Y,
				PaddedWidth:  pad.Dx(),
				PaddedHeight: pad.Dy(),
				S0:           img.s0,
				S1:           img.s1,
				T0:           img.t0,
				T1:           img.t1,
			})
		}
	}
	return out
}

// Stats summarizes the last Pack.
type Stats struct {
	Images   int      // unique images registered
	Names    int      // names registered, duplicates included
	Packed   int      // unique images placed on a sheet
	Unpacked []string // first names of images placed nowhere
	Sheets   int

	// CompactFailed is set when compaction could not fit the last sheet's
	// images below the maximum size.
	CompactFailed bool
}

// Stats returns counts for the current registry and sheets.
func (p *Packer) Stats() Stats {
	st := Stats{
		Images:        len(p.images),
		Names:         len(p.names),
		Sheets:        len(p.sheets),
		CompactFailed: p.compactFailed,
	}
	for _, img := range p.images {
		if img.packed {
			st.Packed++
		} else {
			st.Unpacked = append(st.Unpacked, img.Name())
		}
	}
	return st
}
