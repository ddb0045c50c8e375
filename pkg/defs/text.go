package defs

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteText writes a in the .defs text format to w.
func WriteText(a *Atlas, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range a.Sheets {
		for _, f := range s.Frames {
			fmt.Fprintf(bw, "%s\n%s\n", f.Name, s.Image)
			fmt.Fprintf(bw, "%d %d %d %d\n", f.X, f.Y, f.W, f.H)
			fmt.Fprintf(bw, "%f %f %f %f\n", f.S0, f.S1, f.T0, f.T1)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write defs: %w", err)
	}
	return nil
}

// ExportText writes a to a .defs file at path.
func ExportText(a *Atlas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteText(a, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
