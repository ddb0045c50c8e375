package pipeline

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/imagepack/pkg/codec"
	"github.com/matzehuels/imagepack/pkg/errors"
)

// FindFiles expands input paths into the list of files to pack.
//
// Regular files are taken as given, whatever their extension. Directories
// contribute the files directly inside them, in lexical order, and files in
// subdirectories only when recursive is set. Files found through a directory
// are skipped unless the codec supports their extension. A path that does
// not exist is an error.
func FindFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s does not exist", root)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot read input %s", root)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && codec.Supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot walk %s", root)
		}
	}
	return files, nil
}

// OutputPaths splits an output prefix into a directory and a file prefix.
// "out/atlas" yields ("out", "atlas"); "out/" yields ("out", "");
// "atlas" yields (".", "atlas").
func OutputPaths(output string) (dir, prefix string) {
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return filepath.Clean(output), ""
	}
	return filepath.Dir(output), filepath.Base(output)
}

// SheetPath returns the image path of sheet i.
func SheetPath(dir, prefix string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.png", prefix, i))
}

// DefinitionsPath returns the path of the definitions file in format.
func DefinitionsPath(dir, prefix, format string) string {
	return filepath.Join(dir, prefix+"."+format)
}
