package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// Importer orchestrates content import from a Source to an output directory.
type Importer struct {
	source Source
	out    io.Writer
}

// New constructs an Importer backed by the given Source. Progress lines go to
// out; a nil out discards them.
//
// Precondition: source must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, out io.Writer) *Importer {
	if source == nil {
		panic("importer.New: precondition violated: source must be non-nil")
	}
	if out == nil {
		out = io.Discard
	}
	return &Importer{source: source, out: out}
}

// Run loads floors from sourceDir, validates each, and writes them as YAML
// files to outputDir. Each output file is named <depth>_<floor_id>.yaml so a
// directory listing follows the descent order.
//
// Precondition: sourceDir must satisfy the source's layout requirements;
// outputDir must exist or be creatable.
// Postcondition: one floor YAML per floor is written to outputDir, or an error
// is returned. Nothing is written when any floor fails validation.
func (imp *Importer) Run(sourceDir, outputDir string) error {
	overall := time.Now()

	t0 := time.Now()
	floors, err := imp.source.Load(sourceDir)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}
	fmt.Fprintf(imp.out, "load    %d floor(s) in %s\n", len(floors), time.Since(t0).Round(time.Millisecond))

	encoded := make([][]byte, len(floors))
	depths := make(map[int]string, len(floors))
	for i, fd := range floors {
		data, err := yaml.Marshal(fd)
		if err != nil {
			return fmt.Errorf("serialising floor %q: %w", fd.Floor.ID, err)
		}
		if _, err := world.LoadFloorFromBytes(data); err != nil {
			return fmt.Errorf("floor %q failed validation: %w", fd.Floor.ID, err)
		}
		if other, ok := depths[fd.Floor.Depth]; ok {
			return fmt.Errorf("floors %q and %q share depth %d", other, fd.Floor.ID, fd.Floor.Depth)
		}
		depths[fd.Floor.Depth] = fd.Floor.ID
		encoded[i] = data
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	for i, fd := range floors {
		t1 := time.Now()
		f := &fd.Floor
		outPath := filepath.Join(outputDir, FileName(f))
		if err := os.WriteFile(outPath, encoded[i], 0644); err != nil {
			return fmt.Errorf("writing floor %q to %s: %w", f.ID, outPath, err)
		}
		fmt.Fprintf(imp.out, "wrote   %s  (%dx%d, %d enemies, %d chests, %d nodes)  in %s\n",
			outPath, f.Width(), f.Height(), len(f.Enemies), len(f.Chests), len(f.Nodes),
			time.Since(t1).Round(time.Millisecond))
	}

	fmt.Fprintf(imp.out, "total   %s\n", time.Since(overall).Round(time.Millisecond))
	return nil
}

// FileName returns the output file name for f.
func FileName(f *world.Floor) string {
	return fmt.Sprintf("%02d_%s.yaml", f.Depth, f.ID)
}
