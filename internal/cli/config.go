package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/imagepack/pkg/errors"
	"github.com/matzehuels/imagepack/pkg/pipeline"
)

// =============================================================================
// Config File
// =============================================================================

// Config is the on-disk TOML configuration.
type Config struct {
	Pack PackConfig `toml:"pack"`
}

// PackConfig holds defaults for the pack command. Every field mirrors a flag
// of the same name; unset fields leave the flag default alone. Booleans and
// numbers are pointers so that an explicit false or 0 differs from unset.
type PackConfig struct {
	Output          string   `toml:"output,omitempty"`
	Recursive       *bool    `toml:"recursive"`
	ImageSize       string   `toml:"image-size,omitempty"`
	PowerOfTwo      *bool    `toml:"power-of-two"`
	Compact         *bool    `toml:"compact"`
	Extrude         *int     `toml:"extrude"`
	TexCoordOrigin  string   `toml:"tex-coord-origin,omitempty"`
	NoCache         *bool    `toml:"no-cache"`
	Format          []string `toml:"format,omitempty"`
	Background      string   `toml:"background,omitempty"`
	BackgroundAlpha *float64 `toml:"background-alpha"`
	Compression     string   `toml:"compression,omitempty"`
}

// defaultConfig returns a config populated with the pipeline defaults.
func defaultConfig() Config {
	f := false
	zero := 0
	return Config{Pack: PackConfig{
		Output:         pipeline.DefaultOutput,
		Recursive:      &f,
		ImageSize:      fmt.Sprintf("%dx%d", pipeline.DefaultWidth, pipeline.DefaultHeight),
		PowerOfTwo:     &f,
		Compact:        &f,
		Extrude:        &zero,
		TexCoordOrigin: pipeline.DefaultOrigin,
		NoCache:        &f,
		Format:         []string{pipeline.FormatDefs},
		Background:     pipeline.DefaultBackground,
		Compression:    pipeline.DefaultCompression,
	}}
}

// loadConfig decodes the TOML file at path. Unknown keys are rejected so
// that a misspelled option does not pass silently.
func loadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// writeConfig encodes cfg as TOML.
func writeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// resolveConfig loads the config named by explicit, or the default config
// file when explicit is empty and that file exists. The second result is the
// path that was loaded, empty when none was.
func resolveConfig(explicit string) (Config, string, error) {
	if explicit != "" {
		cfg, err := loadConfig(explicit)
		return cfg, explicit, err
	}
	path, err := configPath()
	if err != nil {
		return Config{}, "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, "", nil
	}
	cfg, err := loadConfig(path)
	return cfg, path, err
}

// apply copies config values into the flag variables of the pack command for
// every flag the user did not set explicitly.
func (pc PackConfig) apply(flags *pflag.FlagSet, pf *packFlags) {
	unset := func(name string) bool { return !flags.Changed(name) }

	if pc.Output != "" && unset("output") {
		pf.output = pc.Output
	}
	if pc.Recursive != nil && unset("recursive") {
		pf.recursive = *pc.Recursive
	}
	if pc.ImageSize != "" && unset("image-size") {
		pf.imageSize = pc.ImageSize
	}
	if pc.PowerOfTwo != nil && unset("power-of-two") {
		pf.powerOfTwo = *pc.PowerOfTwo
	}
	if pc.Compact != nil && unset("compact") {
		pf.compact = *pc.Compact
	}
	if pc.Extrude != nil && unset("extrude") {
		pf.extrude = *pc.Extrude
	}
	if pc.TexCoordOrigin != "" && unset("tex-coord-origin") {
		pf.origin = pc.TexCoordOrigin
	}
	if pc.NoCache != nil && unset("no-cache") {
		pf.noCache = *pc.NoCache
	}
	if len(pc.Format) > 0 && unset("format") {
		pf.formats = strings.Join(pc.Format, ",")
	}
	if pc.Background != "" && unset("background") {
		pf.background = pc.Background
	}
	if pc.BackgroundAlpha != nil && unset("background-alpha") {
		pf.backgroundAlpha = pc.BackgroundAlpha
	}
	if pc.Compression != "" && unset("compression") {
		pf.compression = pc.Compression
	}
}

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the imagepack config file",
		Long: `Manage the imagepack config file.

The config file is TOML with a [pack] table. Its keys are the long names of
the pack flags, and their values become the defaults of those flags:

  [pack]
  image-size = "1024x1024"
  power-of-two = true
  extrude = 1
  format = ["defs", "json"]

Flags given on the command line always win over the config file.`,
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if len(args) == 1 {
				path, err = args[0], nil
			}
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			if err := initConfig(path, force); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}

// initConfig writes the default config to path.
func initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := writeConfig(f, defaultConfig()); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loaded, err := resolveConfig(path)
			if err != nil {
				return err
			}
			if loaded == "" {
				cfg = defaultConfig()
				loggerFromContext(cmd.Context()).Debug("no config file, showing defaults")
			}
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "config file to show (default: the user config)")
	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
