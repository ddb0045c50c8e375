package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

// ParseBackground converts a sheet fill description to a pixel.
//
// s is "transparent", "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#'
// optional). Colors without an alpha part are opaque. A non-nil alpha in
// [0, 1] overrides the alpha of s.
func ParseBackground(s string, alpha *float64) (pixel.Pixel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" {
		if alpha == nil {
			return pixel.Transparent, nil
		}
		s = "#000000"
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	a := uint8(255)
	if len(s) == 9 {
		v, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid alpha in color %q", s)
		}
		a = uint8(v)
		s = s[:7]
	}

	if len(s) != 4 && len(s) != 7 {
		return 0, errors.New(errors.ErrCodeInvalidColor, "invalid color %q (want #rrggbb, #rrggbbaa or transparent)", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid color %q (want #rrggbb, #rrggbbaa or transparent)", s)
	}

	if alpha != nil {
		if *alpha < 0 || *alpha > 1 || math.IsNaN(*alpha) {
			return 0, errors.New(errors.ErrCodeInvalidColor, "background alpha must be in [0, 1], got %v", *alpha)
		}
		a = uint8(math.Round(*alpha * 255))
	}

	r, g, b := c.RGB255()
	return pixel.RGBA(r, g, b, a), nil
}
