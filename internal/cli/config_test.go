package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/imagepack/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imagepack.toml")
	writeFile(t, path, `
[pack]
image-size = "512x256"
power-of-two = true
extrude = 2
format = ["defs", "json"]
background-alpha = 0.5
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	pc := cfg.Pack
	if pc.ImageSize != "512x256" {
		t.Errorf("ImageSize = %q", pc.ImageSize)
	}
	if pc.PowerOfTwo == nil || !*pc.PowerOfTwo {
		t.Error("PowerOfTwo should be true")
	}
	if pc.Extrude == nil || *pc.Extrude != 2 {
		t.Errorf("Extrude = %v, want 2", pc.Extrude)
	}
	if !reflect.DeepEqual(pc.Format, []string{"defs", "json"}) {
		t.Errorf("Format = %v", pc.Format)
	}
	if pc.BackgroundAlpha == nil || *pc.BackgroundAlpha != 0.5 {
		t.Errorf("BackgroundAlpha = %v, want 0.5", pc.BackgroundAlpha)
	}
	if pc.Compact != nil {
		t.Error("unset keys should stay nil")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, "[pack]\nimage_size = \"1x1\"\n")
	broken := filepath.Join(dir, "broken.toml")
	writeFile(t, broken, "[pack\n")

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.toml"), errors.ErrCodeFileNotFound},
		{"unknown key", unknown, errors.ErrCodeInvalidInput},
		{"syntax", broken, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("loadConfig() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", configFileName)
	if err := initConfig(path, false); err != nil {
		t.Fatalf("initConfig() error: %v", err)
	}

	got, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(got, defaultConfig()) {
		t.Errorf("round trip = %+v, want %+v", got.Pack, defaultConfig().Pack)
	}
}

func TestInitConfigExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	writeFile(t, path, "# mine\n")

	if err := initConfig(path, false); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("initConfig() without force error = %v, want INVALID_PATH", err)
	}
	if err := initConfig(path, true); err != nil {
		t.Fatalf("initConfig() with force error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte("[pack]")) {
		t.Errorf("config not overwritten:\n%s", data)
	}
}

func TestResolveConfigDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, loaded, err := resolveConfig("")
	if err != nil || loaded != "" {
		t.Fatalf("resolveConfig() without file = %q, %v", loaded, err)
	}

	path, _ := configPath()
	if err := initConfig(path, false); err != nil {
		t.Fatal(err)
	}
	cfg, loaded, err := resolveConfig("")
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded = %q, want %q", loaded, path)
	}
	if cfg.Pack.Output != defaultConfig().Pack.Output {
		t.Errorf("Output = %q", cfg.Pack.Output)
	}
}

func TestPackConfigApply(t *testing.T) {
	pf := &packFlags{}
	var alpha float64
	fs := pflag.NewFlagSet("pack", pflag.ContinueOnError)
	addPackFlags(fs, pf, &alpha)
	if err := fs.Parse([]string{"-s", "512x512", "--format", "json"}); err != nil {
		t.Fatal(err)
	}

	two, yes, half := 2, true, 0.25
	PackConfig{
		ImageSize:       "1024x1024",
		Extrude:         &two,
		Compact:         &yes,
		Format:          []string{"defs"},
		Output:          "build/ui",
		BackgroundAlpha: &half,
	}.apply(fs, pf)

	if pf.imageSize != "512x512" {
		t.Errorf("explicit flag overridden: image-size = %q", pf.imageSize)
	}
	if pf.formats != "json" {
		t.Errorf("explicit flag overridden: format = %q", pf.formats)
	}
	if pf.extrude != 2 || !pf.compact || pf.output != "build/ui" {
		t.Errorf("config not applied: extrude=%d compact=%v output=%q", pf.extrude, pf.compact, pf.output)
	}
	if pf.backgroundAlpha == nil || *pf.backgroundAlpha != 0.25 {
		t.Errorf("backgroundAlpha = %v, want 0.25", pf.backgroundAlpha)
	}
	if pf.origin != "bottom-left" {
		t.Errorf("untouched flag changed: origin = %q", pf.origin)
	}
}
