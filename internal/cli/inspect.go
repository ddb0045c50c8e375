package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imagepack/pkg/defs"
)

// inspectCommand creates the inspect command for browsing JSON definitions.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [atlas.json]",
		Short: "Browse the frames of a JSON definitions file",
		Long: `Browse the frames of a JSON definitions file.

The file is the one written by 'imagepack pack --format json'. Files in the
TexturePacker hash layout are read as well. Each frame is listed with its
sheet, its pixel rectangle and its texture coordinates.

The list is interactive when stdout is a terminal. Use --plain to print the
whole table instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := defs.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load definitions %s: %w", args[0], err)
			}
			loggerFromContext(cmd.Context()).Debug("loaded definitions",
				"sheets", len(a.Sheets), "frames", a.NumFrames())

			if plain || !isTerminal(os.Stdout) {
				return printFrames(cmd.OutOrStdout(), a)
			}
			_, err = tea.NewProgram(NewFrameListModel(a, args[0]), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the frame table without the interactive view")
	return cmd
}

// printFrames writes every frame as one table.
func printFrames(w io.Writer, a *defs.Atlas) error {
	rows := frameRows(a)
	for i, sh := range a.Sheets {
		if _, err := fmt.Fprintf(w, "%s %s\n", StyleDim.Render(fmt.Sprintf("sheet %d", i)),
			StyleValue.Render(fmt.Sprintf("%s %dx%d, %d frames", sh.Image, sh.Width, sh.Height, len(sh.Frames)))); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, StyleWarning.Render("No frames"))
		return err
	}
	_, err := fmt.Fprintln(w, frameTable(rows, 0, len(rows), -1).Render())
	return err
}
