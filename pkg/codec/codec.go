// Package codec decodes source images into pixel buffers and encodes
// composed sheets back to disk.
//
// Decoding goes through github.com/disintegration/imaging, which reads PNG,
// JPEG, GIF, BMP and TIFF; WebP decoding is registered from
// golang.org/x/image. Encoding picks the format from the file extension.
//
// A Codec satisfies atlas.Loader, so it can be handed straight to
// atlas.New.
package codec

import (
	stderrors "errors"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/pixel"
)

// formats lists the extensions Load accepts, sorted.
var formats = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// Formats returns the file extensions Load can decode, lower-case with a
// leading dot.
func Formats() []string { return slices.Clone(formats) }

// Supported reports whether path has an extension Load can decode.
func Supported(path string) bool {
	_, ok := slices.BinarySearch(formats, strings.ToLower(filepath.Ext(path)))
	return ok
}

// Codec loads and saves images. The zero value is not usable; call New.
type Codec struct {
	dryRun      bool
	compression png.CompressionLevel
	logger      *log.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithDryRun makes Save validate the target and log it without writing.
func WithDryRun(on bool) Option {
	return func(c *Codec) { c.dryRun = on }
}

// WithCompression sets the PNG compression level used by Save.
func WithCompression(level png.CompressionLevel) Option {
	return func(c *Codec) { c.compression = level }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Codec with default PNG compression.
func New(opts ...Option) *Codec {
	c := &Codec{
		compression: png.DefaultCompression,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DryRun reports whether Save skips writing.
func (c *Codec) DryRun() bool { return c.dryRun }

// Load decodes the image at path into a top-left-origin buffer.
func (c *Codec) Load(path string) (*pixel.Buffer, error) {
	img, err := imaging.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "cannot decode %s", path)
	}
	buf := pixel.FromImage(img)
	c.logger.Debug("decoded image", "path", path, "width", buf.Width(), "height", buf.Height())
	return buf, nil
}

// Save encodes buf to path, choosing the format from the extension. The
// parent directory is created if needed. In dry-run mode nothing is written.
func (c *Codec) Save(path string, buf *pixel.Buffer) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot encode %s", path)
	}
	if c.dryRun {
		c.logger.Info("dry run, skipping write", "path", path, "width", buf.Width(), "height", buf.Height())
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot create %s", dir)
		}
	}
	if err := imaging.Save(buf.NRGBA(), path, imaging.PNGCompressionLevel(c.compression)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot write %s", path)
	}
	c.logger.Debug("wrote image", "path", path)
	return nil
}

// ParseCompression maps "default", "none", "fast" and "best" to PNG levels.
func ParseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return png.DefaultCompression, errors.New(errors.ErrCodeInvalidInput,
		"unknown compression %q (want default, none, fast or best)", s)
}
