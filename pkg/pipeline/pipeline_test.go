package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepack/pkg/codec"
	"github.com/matzehuels/imagepack/pkg/defs"
	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/observability"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"defs", false},
		{"json", false},
		{"png", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Inputs: []string{"sprites"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %s", opts.SheetSize())
	}
	if opts.Origin != DefaultOrigin || opts.Output != DefaultOutput {
		t.Errorf("origin %q, output %q", opts.Origin, opts.Output)
	}
	if !slices.Equal(opts.Formats, []string{FormatDefs}) {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Logger == nil || !opts.Caching() {
		t.Error("logger and caching defaults not applied")
	}

	// idempotent
	opts.Width = -1
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	alpha := 1.5
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no inputs", Options{}, errors.ErrCodeInvalidInput},
		{"bad size", Options{Inputs: []string{"a"}, Width: -3}, errors.ErrCodeInvalidSize},
		{"bad extrude", Options{Inputs: []string{"a"}, Extrude: -1}, errors.ErrCodeInvalidInput},
		{"bad origin", Options{Inputs: []string{"a"}, Origin: "center"}, errors.ErrCodeInvalidOrigin},
		{"bad format", Options{Inputs: []string{"a"}, Formats: []string{"xml"}}, errors.ErrCodeInvalidFormat},
		{"bad color", Options{Inputs: []string{"a"}, Background: "#zz0000"}, errors.ErrCodeInvalidColor},
		{"bad alpha", Options{Inputs: []string{"a"}, Background: "#ff0000", BackgroundAlpha: &alpha}, errors.ErrCodeInvalidColor},
		{"bad compression", Options{Inputs: []string{"a"}, Compression: "max"}, errors.ErrCodeInvalidInput},
		{"bad path", Options{Inputs: []string{"a\x00b"}}, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatsDeduplicated(t *testing.T) {
	opts := Options{Inputs: []string{"a"}, Formats: []string{"json", "defs", "json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(opts.Formats, []string{"json", "defs"}) {
		t.Errorf("formats = %v", opts.Formats)
	}
}

func TestParseBackground(t *testing.T) {
	half := 0.5
	zero := 0.0
	tests := []struct {
		in      string
		alpha   *float64
		want    pixel.Pixel
		wantErr bool
	}{
		{"transparent", nil, pixel.Transparent, false},
		{"", nil, pixel.Transparent, false},
		{"#ff0000", nil, pixel.RGBA(255, 0, 0, 255), false},
		{"00FF00", nil, pixel.RGBA(0, 255, 0, 255), false},
		{"#fff", nil, pixel.RGBA(255, 255, 255, 255), false},
		{"#33669980", nil, pixel.RGBA(0x33, 0x66, 0x99, 0x80), false},
		{"#ff0000", &half, pixel.RGBA(255, 0, 0, 128), false},
		{"#ff0000ff", &zero, pixel.RGBA(255, 0, 0, 0), false},
		{"transparent", &half, pixel.RGBA(0, 0, 0, 128), false},
		{"red", nil, 0, true},
		{"#12345", nil, 0, true},
		{"#ff0000zz", nil, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBackground(tt.in, tt.alpha)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackground(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackground(%q) = %08x, want %08x", tt.in, uint32(got), uint32(tt.want))
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		in         string
		dir, pre   string
		sheet, def string
	}{
		{"out/atlas", "out", "atlas", "out/atlas0.png", "out/atlas.defs"},
		{"out/", "out", "", "out/0.png", "out/.defs"},
		{"atlas", ".", "atlas", "atlas0.png", "atlas.defs"},
		{"/tmp/a/b", "/tmp/a", "b", "/tmp/a/b0.png", "/tmp/a/b.defs"},
	}
	for _, tt := range tests {
		dir, pre := OutputPaths(tt.in)
		if dir != tt.dir || pre != tt.pre {
			t.Errorf("OutputPaths(%q) = (%q, %q), want (%q, %q)", tt.in, dir, pre, tt.dir, tt.pre)
		}
		if got := SheetPath(dir, pre, 0); got != tt.sheet {
			t.Errorf("SheetPath = %q, want %q", got, tt.sheet)
		}
		if got := DefinitionsPath(dir, pre, FormatDefs); got != tt.def {
			t.Errorf("DefinitionsPath = %q, want %q", got, tt.def)
		}
	}
}

// writeImages creates PNG files under dir from name -> buffer.
func writeImages(t *testing.T, dir string, images map[string]*pixel.Buffer) {
	t.Helper()
	c := codec.New()
	for name, buf := range images {
		if err := c.Save(filepath.Join(dir, name), buf); err != nil {
			t.Fatal(err)
		}
	}
}

func solid(w, h int, c pixel.Pixel) *pixel.Buffer {
	b := pixel.New(w, h)
	b.Fill(c)
	return b
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, map[string]*pixel.Buffer{
		"b.png":     solid(2, 2, pixel.Missing),
		"a.png":     solid(2, 2, pixel.Missing),
		"sub/c.png": solid(2, 2, pixel.Missing),
	})
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		paths     []string
		recursive bool
		want      []string
	}{
		{"flat", []string{dir}, false, []string{"a.png", "b.png"}},
		{"recursive", []string{dir}, true, []string{"a.png", "b.png", "sub/c.png"}},
		{"explicit file", []string{notes}, false, []string{"notes.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindFiles(tt.paths, tt.recursive)
			if err != nil {
				t.Fatal(err)
			}
			var rel []string
			for _, f := range got {
				r, _ := filepath.Rel(dir, f)
				rel = append(rel, filepath.ToSlash(r))
			}
			if !slices.Equal(rel, tt.want) {
				t.Errorf("FindFiles = %v, want %v", rel, tt.want)
			}
		})
	}

	if _, err := FindFiles([]string{filepath.Join(dir, "missing")}, false); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input: %v, want FILE_NOT_FOUND", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	sheets []string
	defs   []string
}

func (h *recordingHooks) OnSheetWritten(_ context.Context, _ int, path string, _ time.Duration, _ error) {
	h.sheets = append(h.sheets, path)
}

func (h *recordingHooks) OnDefinitionsWritten(_ context.Context, path string, _ error) {
	h.defs = append(h.defs, path)
}

func setupSprites(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sprites")
	writeImages(t, dir, map[string]*pixel.Buffer{
		"hero.png":  solid(16, 16, pixel.RGBA(255, 0, 0, 255)),
		"copy.png":  solid(16, 16, pixel.RGBA(255, 0, 0, 255)),
		"wall.png":  solid(32, 8, pixel.RGBA(0, 0, 255, 255)),
		"giant.png": solid(100, 100, pixel.RGBA(0, 255, 0, 255)),
	})
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestExecute(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	sprites := setupSprites(t)
	out := filepath.Join(t.TempDir(), "out", "atlas")

	var logs bytes.Buffer
	runner := NewRunner(log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}))
	result, err := runner.Execute(context.Background(), Options{
		Inputs:  []string{sprites},
		Output:  out,
		Width:   64,
		Height:  64,
		Compact: true,
		Formats: []string{FormatDefs, FormatJSON},
		NoCache: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.Files != 5 {
		t.Errorf("files = %d, want 5", result.Stats.Files)
	}
	if len(result.Rejected) != 1 || filepath.Base(result.Rejected[0].Path) != "broken.png" {
		t.Errorf("rejected = %v", result.Rejected)
	}
	if result.Stats.Images != 3 || result.Stats.Names != 4 {
		t.Errorf("images = %d, names = %d, want 3 and 4", result.Stats.Images, result.Stats.Names)
	}
	if len(result.Stats.Unpacked) != 1 || filepath.Base(result.Stats.Unpacked[0]) != "giant.png" {
		t.Errorf("unpacked = %v", result.Stats.Unpacked)
	}
	if !strings.Contains(logs.String(), "unable to pack image") {
		t.Error("missing warning for unpacked image")
	}

	wantSheet := filepath.Join(filepath.Dir(out), "atlas0.png")
	if !slices.Equal(result.Sheets, []string{wantSheet}) || !slices.Equal(hooks.sheets, result.Sheets) {
		t.Fatalf("sheets = %v, hooks saw %v", result.Sheets, hooks.sheets)
	}
	sheet, err := codec.New().Load(wantSheet)
	if err != nil {
		t.Fatal(err)
	}
	// compacted: the hero/copy and wall images need 32 pixels of width
	if sheet.Width() > 64 || sheet.Width() < 32 {
		t.Errorf("sheet width = %d", sheet.Width())
	}

	if len(result.Definitions) != 2 || len(hooks.defs) != 2 {
		t.Fatalf("definitions = %v", result.Definitions)
	}
	text, err := os.ReadFile(filepath.Join(filepath.Dir(out), "atlas.defs"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(text)), "\n"); len(lines) != 3*4 {
		t.Errorf(".defs has %d lines, want 12", len(lines))
	}

	a, err := defs.ImportJSON(filepath.Join(filepath.Dir(out), "atlas.json"))
	if err != nil {
		t.Fatal(err)
	}
	hero, _, ok := a.Lookup(filepath.Join(sprites, "hero.png"))
	cp, _, _ := a.Lookup(filepath.Join(sprites, "copy.png"))
	if !ok || hero.X != cp.X || hero.Y != cp.Y {
		t.Errorf("hero %+v and copy %+v should share a rectangle", hero, cp)
	}
	if a.Meta.App != "imagepack" || a.Meta.Origin != DefaultOrigin {
		t.Errorf("meta = %+v", a.Meta)
	}
}

func TestExecuteDryRun(t *testing.T) {
	sprites := setupSprites(t)
	outDir := filepath.Join(t.TempDir(), "out")

	result, err := NewRunner(nil).Execute(context.Background(), Options{
		Inputs: []string{sprites},
		Output: outDir + "/",
		Width:  128,
		Height: 128,
		DryRun: true,
		Logger: log.NewWithOptions(&bytes.Buffer{}, log.Options{}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Sheets) != 1 || len(result.Definitions) != 0 {
		t.Errorf("sheets %v, definitions %v", result.Sheets, result.Definitions)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", outDir)
	}
}

func TestExecuteCancelled(t *testing.T) {
	sprites := setupSprites(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil).Execute(ctx, Options{
		Inputs: []string{sprites},
		Output: filepath.Join(t.TempDir(), "atlas"),
		Logger: log.NewWithOptions(&bytes.Buffer{}, log.Options{}),
	})
	if err != context.Canceled {
		t.Errorf("Execute = %v, want context.Canceled", err)
	}
}

func TestExecuteNoFiles(t *testing.T) {
	result, err := NewRunner(nil).Execute(context.Background(), Options{
		Inputs: []string{t.TempDir()},
		Logger: log.NewWithOptions(&bytes.Buffer{}, log.Options{}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.Files != 0 || len(result.Sheets) != 0 {
		t.Errorf("result = %+v", result)
	}
}
