// Package sketch imports floors drawn as ASCII sketches.
//
// A sketch file holds a YAML header, a line containing only "---", and the
// grid:
//
//	name: Bone halls
//	depth: 2
//	level: 3
//	legend:
//	  s: skeleton
//	---
//	#########
//	#@..s..>#
//	#########
//
// Grid glyphs: '#' and ' ' are walls, '.' is open floor, '@' the start,
// '>' the exit, '$' a chest, '?' a secret chest, 'T' a tree, 'O' an ore
// vein and 'H' a herb patch. Any other glyph must be a legend key naming
// the enemy template spawned there.
package sketch

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Separator splits the header from the grid.
const Separator = "---"

// Header is the YAML block above the grid.
type Header struct {
	// ID defaults to the snake_case form of Name.
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Depth  int    `yaml:"depth"`
	Level  int    `yaml:"level"`
	Secret bool   `yaml:"secret"`
	// ChestBias applies to every chest on the floor.
	ChestBias string `yaml:"chest_bias"`
	// Legend maps single-character glyphs to enemy template IDs.
	Legend map[string]string `yaml:"legend"`
}

// Sketch is a parsed but not yet converted sketch file.
type Sketch struct {
	Header Header
	Grid   []string
}

// ParseSketch splits data into header and grid. Trailing blank grid lines are
// dropped; unknown header fields are rejected.
//
// Postcondition: returns a non-nil Sketch with a non-empty grid, or a non-nil
// error.
func ParseSketch(data []byte) (*Sketch, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	sep := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == Separator {
			sep = i
			break
		}
	}
	if sep < 0 {
		return nil, fmt.Errorf("parsing sketch: no %q line between header and grid", Separator)
	}

	var s Sketch
	header := strings.Join(lines[:sep], "\n")
	if strings.TrimSpace(header) != "" {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(header)))
		dec.KnownFields(true)
		if err := dec.Decode(&s.Header); err != nil {
			return nil, fmt.Errorf("parsing sketch header: %w", err)
		}
	}

	grid := lines[sep+1:]
	for len(grid) > 0 && strings.TrimSpace(grid[len(grid)-1]) == "" {
		grid = grid[:len(grid)-1]
	}
	if len(grid) == 0 {
		return nil, errors.New("parsing sketch: grid is empty")
	}
	s.Grid = grid
	return &s, nil
}
