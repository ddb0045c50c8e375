package atlas

import (
	"github.com/matzehuels/imagepack/pkg/pixel"
)

// Sheet is one output page: a fixed-size canvas with its partition tree and
// the images placed on it in insertion order.
type Sheet struct {
	width, height int
	root          *node
	images        []*Image
}

// NewSheet returns an empty sheet. Sizes below 1 are raised to 1.
func NewSheet(width, height int) *Sheet {
	width, height = max(width, 1), max(height, 1)
	return &Sheet{
		width:  width,
		height: height,
		root:   &node{width: width, height: height},
	}
}

// Width returns the sheet width in pixels.
func (s *Sheet) Width() int { return s.width }

// Height returns the sheet height in pixels.
func (s *Sheet) Height() int { return s.height }

// Images returns the images placed on the sheet in insertion order.
func (s *Sheet) Images() []*Image { return s.images }

// Insert places img on the sheet if a free region can hold its padded size.
func (s *Sheet) Insert(img *Image) bool {
	if !s.root.insert(img) {
		return false
	}
	s.images = append(s.images, img)
	return true
}

// Compose renders the sheet: a buffer filled with background onto which every
// placed image's padded pixels are copied at its position.
//
// Images that were purged are re-decoded. When caching is false, images that
// were not resident before the copy are purged again right after it, so at
// most one image buffer is alive beside the sheet.
func (s *Sheet) Compose(background pixel.Pixel, caching bool) (*pixel.Buffer, error) {
	out := pixel.New(s.width, s.height)
	out.Fill(background)

	err := s.root.walk(func(n *node) error {
		if n.img == nil {
			return nil
		}
		resident := n.img.HasData()
		buf, err := n.img.Pixels()
		if err != nil {
			return err
		}
		out.Blit(n.x, n.y, buf)
		if !caching && !resident {
			n.img.Purge()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
