package defs

import (
	"sort"

	"github.com/matzehuels/imagepack/pkg/atlas"
)

// Atlas is a serializable packing result.
type Atlas struct {
	Sheets []Sheet
	Meta   Meta
}

// Sheet is one output page and the frames placed on it.
type Sheet struct {
	Image  string
	Width  int
	Height int
	Frames []Frame
}

// Frame locates one image name on its sheet.
type Frame struct {
	Name string

	// Source rectangle in sheet pixels, top-left origin.
	X, Y, W, H int

	S0, S1, T0, T1 float32
}

// Meta describes how the atlas was produced.
type Meta struct {
	App     string `json:"app,omitempty"`
	Version string `json:"version,omitempty"`
	Origin  string `json:"origin,omitempty"`
	Extrude int    `json:"extrude"`
}

// FromPacker captures the sheets and placements of a packed session.
// sheetPaths[i] names the file of sheet i; missing entries are left empty.
func FromPacker(p *atlas.Packer, sheetPaths []string, meta Meta) *Atlas {
	a := &Atlas{Meta: meta}
	for i, s := range p.Sheets() {
		sh := Sheet{Width: s.Width(), Height: s.Height()}
		if i < len(sheetPaths) {
			sh.Image = sheetPaths[i]
		}
		a.Sheets = append(a.Sheets, sh)
	}
	for _, pl := range p.Placements() {
		sh := &a.Sheets[pl.Sheet]
		for _, name := range pl.Names {
			sh.Frames = append(sh.Frames, Frame{
				Name: name,
				X:    pl.X, Y: pl.Y, W: pl.Width, H: pl.Height,
				S0: pl.S0, S1: pl.S1, T0: pl.T0, T1: pl.T1,
			})
		}
	}
	return a
}

// NumFrames returns the number of frames over all sheets.
func (a *Atlas) NumFrames() int {
	n := 0
	for _, s := range a.Sheets {
		n += len(s.Frames)
	}
	return n
}

// Lookup finds a frame by name and returns it with its sheet index.
func (a *Atlas) Lookup(name string) (Frame, int, bool) {
	for i, s := range a.Sheets {
		for _, f := range s.Frames {
			if f.Name == name {
				return f, i, true
			}
		}
	}
	return Frame{}, -1, false
}

func sortFrames(frames []Frame) {
	sort.Slice(frames, func(i, j int) bool { return frames[i].Name < frames[j].Name })
}
