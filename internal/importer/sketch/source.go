package sketch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cory-johannsen/veilrun/internal/importer"
)

// Ext is the file extension of sketch files.
const Ext = ".floor"

var _ importer.Source = (*Source)(nil)

// Source implements importer.Source for a flat directory of *.floor files.
type Source struct{}

// NewSource constructs a Source.
func NewSource() *Source { return &Source{} }

// Load parses and converts every sketch in sourceDir, in file name order.
//
// Precondition: sourceDir must be a readable directory.
// Postcondition: returns at least one FloorData or a non-nil error.
func (s *Source) Load(sourceDir string) ([]*importer.FloorData, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading sketch directory %s: %w", sourceDir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), Ext) {
			paths = append(paths, filepath.Join(sourceDir, e.Name()))
		}
	}
	sort.Strings(paths)

	var results []*importer.FloorData
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading sketch %s: %w", path, err)
		}
		sk, err := ParseSketch(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		fd, err := Convert(sk)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		results = append(results, fd)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", Ext, sourceDir)
	}
	return results, nil
}
