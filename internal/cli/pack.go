package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/observability"
	"github.com/matzehuels/imagepack/pkg/pipeline"
)

// packFlags holds the raw flag values of the pack command.
type packFlags struct {
	output          string
	inputs          []string
	stdin           bool
	recursive       bool
	imageSize       string
	powerOfTwo      bool
	compact         bool
	extrude         int
	origin          string
	dryRun          bool
	noCache         bool
	formats         string
	background      string
	backgroundAlpha *float64
	compression     string
	config          string
}

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	pf := &packFlags{}
	var alpha float64

	cmd := &cobra.Command{
		Use:   "pack [inputs...]",
		Short: "Pack images into atlas sheets",
		Long: `Pack images into atlas sheets.

Every input is an image file or a directory of images. Images are packed
widest first onto sheets of the given size; when an image does not fit on any
existing sheet a new one is started. Identical images are stored once and
listed under every name.

For an output prefix "out/atlas" the sheets are written as out/atlas0.png,
out/atlas1.png, ... and the definitions as out/atlas.defs. A prefix ending
in a slash writes 0.png, 1.png, ... and .defs into that directory.

Defaults for every flag can be set in a TOML config file (see 'imagepack
config').`,
		Example: `  imagepack pack sprites/ -o out/atlas
  imagepack pack -r -s 1024x1024 -p -e 1 assets/ -o build/ui
  find . -name '*.png' | imagepack pack --stdin -c -o out/packed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("background-alpha") {
				pf.backgroundAlpha = &alpha
			}
			cfg, loaded, err := resolveConfig(pf.config)
			if err != nil {
				return err
			}
			if loaded != "" {
				loggerFromContext(cmd.Context()).Debug("loaded config", "path", loaded)
				cfg.Pack.apply(cmd.Flags(), pf)
			}

			pf.inputs = append(pf.inputs, args...)
			if pf.stdin {
				names, err := readInputs(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				pf.inputs = append(pf.inputs, names...)
			}

			opts, err := pf.options()
			if err != nil {
				return err
			}
			return c.runPack(cmd.Context(), opts)
		},
	}

	addPackFlags(cmd.Flags(), pf, &alpha)
	return cmd
}

// addPackFlags registers the pack flags on fs.
func addPackFlags(fs *pflag.FlagSet, pf *packFlags, alpha *float64) {
	defaultSize := fmt.Sprintf("%dx%d", pipeline.DefaultWidth, pipeline.DefaultHeight)

	// Input flags
	fs.StringSliceVarP(&pf.inputs, "input", "i", nil, "input file or directory (repeatable)")
	fs.BoolVar(&pf.stdin, "stdin", false, "read input paths from stdin, one per line")
	fs.BoolVarP(&pf.recursive, "recursive", "r", false, "descend into subdirectories")

	// Packing flags
	fs.StringVarP(&pf.imageSize, "image-size", "s", defaultSize, "maximum sheet size as WxH")
	fs.BoolVarP(&pf.powerOfTwo, "power-of-two", "p", false, "round sheet sizes up to powers of two")
	fs.BoolVarP(&pf.compact, "compact", "c", false, "shrink the last sheet to the smallest size that fits")
	fs.IntVarP(&pf.extrude, "extrude", "e", 0, "replicate image edges by N pixels")
	fs.StringVarP(&pf.origin, "tex-coord-origin", "t", pipeline.DefaultOrigin, "texture coordinate origin: bottom-left, top-left")
	fs.BoolVar(&pf.noCache, "no-cache", false, "keep at most one decoded image in memory")

	// Output flags
	fs.StringVarP(&pf.output, "output", "o", pipeline.DefaultOutput, "output prefix for sheets and definitions")
	fs.StringVar(&pf.formats, "format", pipeline.FormatDefs, "definition format(s): defs, json (comma-separated)")
	fs.StringVar(&pf.background, "background", pipeline.DefaultBackground, "sheet fill: transparent, #rrggbb or #rrggbbaa")
	fs.Float64Var(alpha, "background-alpha", 1, "override the background alpha (0 to 1)")
	fs.StringVar(&pf.compression, "compression", pipeline.DefaultCompression, "PNG compression: default, none, fast, best")
	fs.BoolVarP(&pf.dryRun, "dry-run", "d", false, "pack and report without writing files")
	fs.StringVar(&pf.config, "config", "", "TOML config file with flag defaults")
}

// options converts the flags into validated pipeline options.
func (pf *packFlags) options() (pipeline.Options, error) {
	w, h, err := errors.ParseSize(pf.imageSize)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Inputs:          pf.inputs,
		Recursive:       pf.recursive,
		Width:           w,
		Height:          h,
		PowerOfTwo:      pf.powerOfTwo,
		Compact:         pf.compact,
		Extrude:         pf.extrude,
		NoCache:         pf.noCache,
		Origin:          pf.origin,
		Output:          pf.output,
		Formats:         parseFormats(pf.formats),
		Background:      pf.background,
		BackgroundAlpha: pf.backgroundAlpha,
		Compression:     pf.compression,
		DryRun:          pf.dryRun,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// readInputs reads one path per line, skipping blank lines.
func readInputs(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

// =============================================================================
// Execution
// =============================================================================

// decodeCounter counts image decodes and purges through the cache hooks.
type decodeCounter struct {
	observability.NoopCacheHooks
	loads        atomic.Int64
	materialized atomic.Int64
	purged       atomic.Int64
	duplicates   atomic.Int64
}

func (d *decodeCounter) OnLoad(string, int)         { d.loads.Add(1) }
func (d *decodeCounter) OnMaterialize(string, int)  { d.materialized.Add(1) }
func (d *decodeCounter) OnPurge(string, int)        { d.purged.Add(1) }
func (d *decodeCounter) OnDuplicate(string, string) { d.duplicates.Add(1) }

// runPack executes the pipeline and prints a summary.
func (c *CLI) runPack(ctx context.Context, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	counter := &decodeCounter{}
	observability.SetCacheHooks(counter)
	defer observability.SetCacheHooks(observability.NoopCacheHooks{})

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Packing images...")
	spinner.Start()

	result, err := pipeline.NewRunner(logger).Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Packing failed")
		if errors.IsFatal(err) {
			printError("%s", errors.UserMessage(err))
			printDetail("Re-run imagepack after the source images stop changing")
		}
		return fmt.Errorf("pack: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Packed %d images", result.Stats.Packed))

	logger.Debug("cache activity",
		"loads", counter.loads.Load(),
		"re-decodes", counter.materialized.Load(),
		"purges", counter.purged.Load(),
		"duplicates", counter.duplicates.Load())

	printPackResult(result, opts)
	return nil
}

// printPackResult prints the lipgloss summary of a packing run.
func printPackResult(result *pipeline.Result, opts pipeline.Options) {
	st := result.Stats
	if st.Files == 0 {
		printWarning("No images found in %s", strings.Join(opts.Inputs, ", "))
		return
	}

	for _, r := range result.Rejected {
		printWarning("Skipped %s: %s", r.Path, errors.UserMessage(r.Err))
	}
	for _, name := range st.Unpacked {
		printWarning("Does not fit on a %s sheet: %s", opts.SheetSize(), name)
	}
	if st.CompactFailed {
		printWarning("Last sheet could not be compacted, kept at full size")
	}

	if st.Sheets == 0 {
		printError("Nothing was packed")
		return
	}

	printSuccess("Packed %d of %d images into %d sheets", st.Packed, st.Images, st.Sheets)
	printStats(st.Images, st.Names, st.Sheets, opts.Caching())
	printKeyValue("Sheet size", StyleNumber.Render(opts.SheetSize()))
	printKeyValue("Origin", opts.Origin)

	if opts.DryRun {
		printInfo("Dry run, no files written")
	}
	for _, path := range result.Sheets {
		printFile(path)
	}
	for _, path := range result.Definitions {
		printFile(path)
	}

	for _, path := range result.Definitions {
		if filepath.Ext(path) == ".json" {
			printNewline()
			printNextStep("Browse frames", "imagepack inspect "+path)
		}
	}
}
