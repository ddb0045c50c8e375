package defs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/imagepack/pkg/errors"
)

type document struct {
	Textures []page           `json:"textures"`
	Frames   map[string]frame `json:"frames,omitempty"`
	Meta     *Meta            `json:"meta,omitempty"`
}

type page struct {
	Image  string           `json:"image"`
	Size   size             `json:"size"`
	Frames map[string]frame `json:"frames"`
}

type rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type size struct {
	W int `json:"w"`
	H int `json:"h"`
}

type uv struct {
	S0 float32 `json:"s0"`
	S1 float32 `json:"s1"`
	T0 float32 `json:"t0"`
	T1 float32 `json:"t1"`
}

type frame struct {
	Frame            rect `json:"frame"`
	Rotated          bool `json:"rotated"`
	Trimmed          bool `json:"trimmed"`
	SpriteSourceSize rect `json:"spriteSourceSize"`
	SourceSize       size `json:"sourceSize"`
	UV               *uv  `json:"uv,omitempty"`
}

// WriteJSON encodes a in the multi-page JSON format and writes it to w.
// Frames within a page are keyed by name, so output order is by name. Page
// images are written as base names, relative to the JSON file.
func WriteJSON(a *Atlas, w io.Writer) error {
	meta := a.Meta
	out := document{Textures: make([]page, len(a.Sheets)), Meta: &meta}
	for i, s := range a.Sheets {
		p := page{
			Image:  filepath.Base(s.Image),
			Size:   size{W: s.Width, H: s.Height},
			Frames: make(map[string]frame, len(s.Frames)),
		}
		for _, f := range s.Frames {
			p.Frames[f.Name] = frame{
				Frame:            rect{X: f.X, Y: f.Y, W: f.W, H: f.H},
				SpriteSourceSize: rect{W: f.W, H: f.H},
				SourceSize:       size{W: f.W, H: f.H},
				UV:               &uv{S0: f.S0, S1: f.S1, T0: f.T0, T1: f.T1},
			}
		}
		out.Textures[i] = p
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a to a JSON file at path.
func ExportJSON(a *Atlas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(a, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes an atlas from r. Both the multi-page "textures" layout
// and the single-page "frames" hash are accepted. Frames are returned
// sorted by name within each sheet. Frames without a "uv" object get zero
// texture coordinates. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Atlas, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode atlas JSON")
	}

	pages := doc.Textures
	switch {
	case pages != nil:
	case doc.Frames != nil:
		pages = []page{{Frames: doc.Frames}}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, `atlas JSON has neither "textures" nor "frames"`)
	}

	a := &Atlas{}
	if doc.Meta != nil {
		a.Meta = *doc.Meta
	}
	for _, p := range pages {
		s := Sheet{Image: p.Image, Width: p.Size.W, Height: p.Size.H}
		for name, f := range p.Frames {
			fr := Frame{Name: name, X: f.Frame.X, Y: f.Frame.Y, W: f.Frame.W, H: f.Frame.H}
			if f.UV != nil {
				fr.S0, fr.S1, fr.T0, fr.T1 = f.UV.S0, f.UV.S1, f.UV.T0, f.UV.T1
			}
			s.Frames = append(s.Frames, fr)
		}
		sortFrames(s.Frames)
		a.Sheets = append(a.Sheets, s)
	}
	return a, nil
}

// ImportJSON reads the JSON atlas file at path.
func ImportJSON(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
