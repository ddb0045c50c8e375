// Package pipeline runs a complete packing job for the imagepack tool.
//
// This package implements the discover → add → pack → write sequence that
// the CLI drives. By centralizing this logic, other front ends get the same
// defaults, validation, and output layout.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Discover: Expand input paths into image files (see [FindFiles])
//  2. Add: Register every file with an [atlas.Packer], skipping bad images
//  3. Pack: Distribute images over sheets and compute texture coordinates
//  4. Write: Compose and save one sheet at a time, then the definitions
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Inputs: []string{"sprites/"},
//	    Output: "out/atlas",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Sheets) // [out/atlas0.png]
//
// # Output Layout
//
// The output prefix is split into a directory and a file prefix, so
// "out/atlas" produces out/atlas0.png, out/atlas1.png, ... and out/atlas.defs.
// A prefix ending in a slash writes 0.png, 1.png, ... and .defs into that
// directory. See [OutputPaths].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepack/pkg/atlas"
	"github.com/matzehuels/imagepack/pkg/codec"
	"github.com/matzehuels/imagepack/pkg/defs"
	"github.com/matzehuels/imagepack/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultWidth is the default sheet width in pixels.
	DefaultWidth = 2048

	// DefaultHeight is the default sheet height in pixels.
	DefaultHeight = 2048

	// DefaultOutput is the default output prefix.
	DefaultOutput = "atlas"

	// DefaultOrigin is the default texture coordinate origin.
	DefaultOrigin = "bottom-left"

	// DefaultBackground is the default sheet fill.
	DefaultBackground = "transparent"

	// DefaultCompression is the default PNG compression.
	DefaultCompression = "default"
)

// Format constants for definition files.
const (
	FormatDefs = "defs"
	FormatJSON = "json"
)

// ValidFormats is the set of supported definition formats.
var ValidFormats = map[string]bool{
	FormatDefs: true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a packing run.
type Options struct {
	// Input options
	Inputs    []string `json:"inputs"`
	Recursive bool     `json:"recursive,omitempty"`

	// Packing options
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	PowerOfTwo bool   `json:"power_of_two,omitempty"`
	Compact    bool   `json:"compact,omitempty"`
	Extrude    int    `json:"extrude,omitempty"`
	NoCache    bool   `json:"no_cache,omitempty"`
	Origin     string `json:"origin,omitempty"` // "bottom-left" or "top-left"

	// Output options
	Output          string   `json:"output,omitempty"`
	Formats         []string `json:"formats,omitempty"`
	Background      string   `json:"background,omitempty"`       // "#rrggbb", "#rrggbbaa" or "transparent"
	BackgroundAlpha *float64 `json:"background_alpha,omitempty"` // overrides the alpha of Background
	Compression     string   `json:"compression,omitempty"`
	DryRun          bool     `json:"dry_run,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a packing run.
type Result struct {
	// Files are the discovered input files in registration order.
	Files []string

	// Rejected lists files that could not be added, with the reason.
	Rejected []Rejection

	// Sheets are the sheet image paths, one per sheet.
	Sheets []string

	// Definitions are the written definition file paths.
	Definitions []string

	// Atlas is the definitions content.
	Atlas *defs.Atlas

	// Stats contains counts and timings.
	Stats Stats
}

// Rejection records a file the packer refused.
type Rejection struct {
	Path string
	Err  error
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Files         int
	Images        int
	Names         int
	Packed        int
	Unpacked      []string
	Sheets        int
	CompactFailed bool

	DiscoverTime time.Duration
	AddTime      time.Duration
	PackTime     time.Duration
	WriteTime    time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a definition format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: defs, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one input path is required")
	}
	for _, in := range o.Inputs {
		if err := errors.ValidatePath(in); err != nil {
			return err
		}
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if err := errors.ValidateSheetSize(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateExtrude(o.Extrude); err != nil {
		return err
	}

	if o.Origin == "" {
		o.Origin = DefaultOrigin
	}
	if _, err := atlas.ParseOrigin(o.Origin); err != nil {
		return err
	}

	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if err := errors.ValidatePath(o.Output); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDefs}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = compactFormats(o.Formats)

	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if _, err := ParseBackground(o.Background, o.BackgroundAlpha); err != nil {
		return err
	}

	if o.Compression == "" {
		o.Compression = DefaultCompression
	}
	if _, err := codec.ParseCompression(o.Compression); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// compactFormats drops repeated formats, keeping first occurrences.
func compactFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// SheetSize returns the requested sheet size as "WxH".
func (o *Options) SheetSize() string {
	return fmt.Sprintf("%dx%d", o.Width, o.Height)
}

// Caching reports whether decoded images stay in memory between stages.
func (o *Options) Caching() bool { return !o.NoCache }
