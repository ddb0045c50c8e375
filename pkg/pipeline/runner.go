package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepack/pkg/atlas"
	"github.com/matzehuels/imagepack/pkg/buildinfo"
	"github.com/matzehuels/imagepack/pkg/codec"
	"github.com/matzehuels/imagepack/pkg/defs"
	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/observability"
)

// Runner executes packing runs.
//
// The Runner is stateless except for the logger - every Execute call builds
// its own packer and codec, so one Runner can serve several runs in sequence.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete discover → add → pack → write pipeline.
//
// Per-image failures are logged, collected in Result.Rejected and skipped.
// A source image that changes on disk during the run aborts it with an
// error for which errors.IsFatal reports true. Cancellation of ctx is checked
// between images and between sheets.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	hooks := observability.Pipeline()
	result := &Result{}

	// Stage 1: Discover
	start := time.Now()
	files, err := FindFiles(opts.Inputs, opts.Recursive)
	if err != nil {
		return nil, err
	}
	result.Files = files
	result.Stats.Files = len(files)
	result.Stats.DiscoverTime = time.Since(start)
	hooks.OnDiscoverComplete(ctx, len(files), result.Stats.DiscoverTime)
	logger.Info("files found", "count", len(files))
	if len(files) == 0 {
		return result, nil
	}

	// Stage 2: Add
	compression, _ := codec.ParseCompression(opts.Compression)
	cd := codec.New(
		codec.WithDryRun(opts.DryRun),
		codec.WithCompression(compression),
		codec.WithLogger(logger),
	)
	packer, err := r.newPacker(cd, opts)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := packer.AddImage(f); err != nil {
			if errors.IsFatal(err) {
				return nil, err
			}
			result.Rejected = append(result.Rejected, Rejection{Path: f, Err: err})
		}
	}
	result.Stats.AddTime = time.Since(start)
	hooks.OnAddComplete(ctx, len(files)-len(result.Rejected), len(result.Rejected), result.Stats.AddTime)
	logger.Debug("added images",
		"unique", packer.NumImages(),
		"rejected", len(result.Rejected),
		"duration", result.Stats.AddTime)
	if packer.NumImages() == 0 {
		logger.Warn("no images to pack")
		return result, nil
	}

	// Stage 3: Pack
	start = time.Now()
	hooks.OnPackStart(ctx, packer.NumImages())
	stats := packer.Pack()
	result.Stats.PackTime = time.Since(start)
	result.Stats.Images = stats.Images
	result.Stats.Names = stats.Names
	result.Stats.Packed = stats.Packed
	result.Stats.Unpacked = stats.Unpacked
	result.Stats.Sheets = stats.Sheets
	result.Stats.CompactFailed = stats.CompactFailed
	hooks.OnPackComplete(ctx, stats.Sheets, stats.Packed, len(stats.Unpacked), result.Stats.PackTime, nil)

	// Stage 4: Write
	start = time.Now()
	if err := r.write(ctx, packer, cd, opts, result); err != nil {
		return nil, err
	}
	result.Stats.WriteTime = time.Since(start)

	return result, nil
}

// newPacker builds a packer configured from validated options.
func (r *Runner) newPacker(loader atlas.Loader, opts Options) (*atlas.Packer, error) {
	origin, err := atlas.ParseOrigin(opts.Origin)
	if err != nil {
		return nil, err
	}
	bg, err := ParseBackground(opts.Background, opts.BackgroundAlpha)
	if err != nil {
		return nil, err
	}

	p := atlas.New(loader, atlas.WithLogger(opts.Logger))
	p.SetSheetSize(opts.Width, opts.Height)
	p.SetPowerOfTwo(opts.PowerOfTwo)
	p.SetCompact(opts.Compact)
	p.SetExtrude(opts.Extrude)
	p.SetCaching(opts.Caching())
	p.SetOrigin(origin)
	p.SetBackground(bg)
	return p, nil
}

// write composes and saves every sheet, one at a time, then the definitions.
func (r *Runner) write(ctx context.Context, p *atlas.Packer, cd *codec.Codec, opts Options, result *Result) error {
	logger := opts.Logger
	hooks := observability.Pipeline()
	dir, prefix := OutputPaths(opts.Output)
	logger.Debug("output", "dir", dir, "prefix", prefix)

	if !opts.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot create %s", dir)
		}
	}

	for i := range p.NumSheets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		path := SheetPath(dir, prefix, i)

		buf, err := p.Compose(i)
		if err == nil {
			err = cd.Save(path, buf)
		}
		hooks.OnSheetWritten(ctx, i, path, time.Since(start), err)
		if err != nil {
			return err
		}
		result.Sheets = append(result.Sheets, path)
		logger.Info("writing sheet", "path", path, "width", buf.Width(), "height", buf.Height())
	}

	result.Atlas = defs.FromPacker(p, result.Sheets, defs.Meta{
		App:     buildinfo.App,
		Version: buildinfo.Version,
		Origin:  opts.Origin,
		Extrude: opts.Extrude,
	})

	for _, format := range opts.Formats {
		path := DefinitionsPath(dir, prefix, format)
		logger.Info("writing definitions", "path", path)
		if opts.DryRun {
			continue
		}

		var err error
		switch format {
		case FormatDefs:
			err = defs.ExportText(result.Atlas, path)
		case FormatJSON:
			err = defs.ExportJSON(result.Atlas, path)
		}
		hooks.OnDefinitionsWritten(ctx, path, err)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write definitions")
		}
		result.Definitions = append(result.Definitions, path)
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
