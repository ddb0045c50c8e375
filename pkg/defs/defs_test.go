package defs

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/imagepack/pkg/atlas"
	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

func solid(w, h int, c pixel.Pixel) *pixel.Buffer {
	b := pixel.New(w, h)
	b.Fill(c)
	return b
}

// packed returns a session with hero (and its duplicate) plus a wall image
// on a single 64x64 top-left sheet.
func packed(t *testing.T) *atlas.Packer {
	t.Helper()
	images := map[string]*pixel.Buffer{
		"hero.png":  solid(16, 32, pixel.RGBA(255, 0, 0, 255)),
		"alias.png": solid(16, 32, pixel.RGBA(255, 0, 0, 255)),
		"wall.png":  solid(8, 8, pixel.RGBA(0, 255, 0, 255)),
	}
	p := atlas.New(atlas.LoaderFunc(func(path string) (*pixel.Buffer, error) {
		return images[path].Clone(), nil
	}))
	p.SetSheetSize(64, 64)
	p.SetOrigin(atlas.TopLeft)
	for _, n := range []string{"hero.png", "wall.png", "alias.png"} {
		if err := p.AddImage(n); err != nil {
			t.Fatalf("AddImage(%s): %v", n, err)
		}
	}
	p.Pack()
	return p
}

func TestFromPacker(t *testing.T) {
	a := FromPacker(packed(t), []string{"out/atlas0.png"}, Meta{App: "imagepack"})

	if len(a.Sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(a.Sheets))
	}
	if a.NumFrames() != 3 {
		t.Errorf("frames = %d, want 3 (one per name)", a.NumFrames())
	}
	hero, sheet, ok := a.Lookup("hero.png")
	alias, _, _ := a.Lookup("alias.png")
	if !ok || sheet != 0 {
		t.Fatalf("Lookup(hero.png) = %v, %d, %v", hero, sheet, ok)
	}
	if hero.X != alias.X || hero.Y != alias.Y || hero.W != 16 || hero.H != 32 {
		t.Errorf("hero %+v, alias %+v", hero, alias)
	}
	if _, _, ok := a.Lookup("missing.png"); ok {
		t.Error("Lookup(missing.png) should fail")
	}
}

func TestWriteText(t *testing.T) {
	a := &Atlas{Sheets: []Sheet{{
		Image: "out/atlas0.png", Width: 64, Height: 64,
		Frames: []Frame{
			{Name: "hero.png", X: 0, Y: 0, W: 16, H: 32, S0: 0.5 / 64, S1: 15.5 / 64, T0: 0.5 / 64, T1: 31.5 / 64},
			{Name: "alias.png", X: 0, Y: 0, W: 16, H: 32, S0: 0.5 / 64, S1: 15.5 / 64, T0: 0.5 / 64, T1: 31.5 / 64},
		},
	}}}

	var buf bytes.Buffer
	if err := WriteText(a, &buf); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"hero.png",
		"out/atlas0.png",
		"0 0 16 32",
		"0.007812 0.242188 0.007812 0.492188",
		"alias.png",
		"out/atlas0.png",
		"0 0 16 32",
		"0.007812 0.242188 0.007812 0.492188",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("WriteText =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a := FromPacker(packed(t), []string{"out/atlas0.png"}, Meta{App: "imagepack", Version: "1.0.0", Origin: "top-left", Extrude: 1})

	path := filepath.Join(t.TempDir(), "atlas.json")
	if err := ExportJSON(a, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Meta != a.Meta {
		t.Errorf("meta = %+v, want %+v", got.Meta, a.Meta)
	}
	if len(got.Sheets) != 1 || got.Sheets[0].Image != "atlas0.png" || got.Sheets[0].Width != 64 {
		t.Fatalf("sheets = %+v", got.Sheets)
	}
	if got.NumFrames() != a.NumFrames() {
		t.Fatalf("frames = %d, want %d", got.NumFrames(), a.NumFrames())
	}
	for _, s := range a.Sheets {
		for _, want := range s.Frames {
			f, _, ok := got.Lookup(want.Name)
			if !ok {
				t.Errorf("frame %s missing", want.Name)
				continue
			}
			if f != want {
				t.Errorf("frame %s = %+v, want %+v", want.Name, f, want)
			}
		}
	}

	// sorted by name on read
	names := got.Sheets[0].Frames
	if names[0].Name != "alias.png" || names[2].Name != "wall.png" {
		t.Errorf("frames not sorted: %v", names)
	}
}

func TestJSONPageImageIsRelative(t *testing.T) {
	a := FromPacker(packed(t), []string{"build/out/atlas0.png"}, Meta{App: "imagepack"})

	var js, text bytes.Buffer
	if err := WriteJSON(a, &js); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(a, &text); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(js.String(), `"image": "atlas0.png"`) || strings.Contains(js.String(), "build/out") {
		t.Errorf("JSON page image not relative to the JSON file:\n%s", js.String())
	}
	if !strings.Contains(text.String(), "\nbuild/out/atlas0.png\n") {
		t.Errorf(".defs lost the sheet path:\n%s", text.String())
	}
}

func TestReadJSONHashFormat(t *testing.T) {
	in := `{"frames": {"a.png": {"frame": {"x": 1, "y": 2, "w": 3, "h": 4}, "rotated": false, "trimmed": false}}}`
	a, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	f, sheet, ok := a.Lookup("a.png")
	if !ok || sheet != 0 || f.X != 1 || f.Y != 2 || f.W != 3 || f.H != 4 {
		t.Errorf("Lookup = %+v, %d, %v", f, sheet, ok)
	}
	if f.S0 != 0 || f.T1 != 0 {
		t.Errorf("missing uv should be zero, got %+v", f)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"textures": [`},
		{"no frames", `{"meta": {"app": "x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ReadJSON = %v, want INVALID_INPUT", err)
			}
		})
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteJSONEmptyAtlas(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&Atlas{}, &buf); err != nil {
		t.Fatal(err)
	}
	a, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(empty) = %v", err)
	}
	if len(a.Sheets) != 0 {
		t.Errorf("sheets = %d, want 0", len(a.Sheets))
	}
}
