package atlas

import (
	"github.com/matzehuels/imagepack/pkg/errors"
)

// compactSheet re-packs images into the smallest sheet, grown from the
// largest image one pixel at a time, that holds all of them, never exceeding
// the target size.
//
// The growth axis flips after every trial that placed at least one image and
// whenever the chosen axis is already at its maximum. If both axes reach the
// maximum without a fit, the search stops there and a warning is logged.
// Images that still do not fit are left unpacked.
func (p *Packer) compactSheet(images []*Image) *Sheet {
	limit := [2]int{p.width, p.height}
	size := [2]int{1, 1}
	for _, img := range images {
		size[0] = max(size[0], img.width)
		size[1] = max(size[1], img.height)
	}
	size[0] = clamp(size[0], 1, limit[0])
	size[1] = clamp(size[1], 1, limit[1])

	axis := 0
	fits := false
	for {
		placed := packSheet(NewSheet(size[0], size[1]), images)
		if placed == len(images) {
			fits = true
			break
		}
		if placed > 0 {
			axis ^= 1
		}
		if size[axis] >= limit[axis] {
			axis ^= 1
		}
		if size[axis] >= limit[axis] {
			break
		}
		size[axis]++
	}

	if !fits {
		p.compactFailed = true
		err := errors.New(errors.ErrCodeDoesNotFit,
			"%d images do not fit in a %dx%d sheet", len(images), limit[0], limit[1])
		p.logger.Warn("compaction failed, keeping full size", "err", err)
	}

	if p.powerOfTwo {
		size[0], size[1] = nextPowerOfTwo(size[0]), nextPowerOfTwo(size[1])
	}

	// A rounded-up sheet splits differently than the trial that fit. Grow it
	// until every image is placed again; images packed by Pack fit at the limit.
	s := NewSheet(size[0], size[1])
	for packSheet(s, images) < len(images) {
		if size == limit {
			break
		}
		axis = 0
		if size[0] >= limit[0] || (size[1] < limit[1] && size[1] < size[0]) {
			axis = 1
		}
		size[axis] = min(size[axis]*2, limit[axis])
		p.logger.Debug("rounded sheet lost images, growing", "width", size[0], "height", size[1])
		s = NewSheet(size[0], size[1])
	}
	p.logger.Debug("compacted last sheet", "width", s.width, "height", s.height, "images", len(s.images))
	return s
}
