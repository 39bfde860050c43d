package world

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlFloorFile is the top-level YAML structure for floor files.
type yamlFloorFile struct {
	Floor Floor `yaml:"floor"`
}

// LoadFloorFromFile reads and validates a single floor YAML file.
//
// Precondition: path must point to a valid YAML floor file.
// Postcondition: Returns a validated Floor or a non-nil error.
func LoadFloorFromFile(path string) (*Floor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading floor file %s: %w", path, err)
	}
	return LoadFloorFromBytes(data)
}

// LoadFloorFromBytes parses and validates a floor from YAML bytes. Unknown
// fields are rejected.
//
// Postcondition: Returns a validated Floor or a non-nil error.
func LoadFloorFromBytes(data []byte) (*Floor, error) {
	var file yamlFloorFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing floor YAML: %w", err)
	}
	f := &file.Floor
	for i, row := range f.Map {
		f.Map[i] = strings.TrimRight(row, " ")
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validating floor: %w", err)
	}
	return f, nil
}

// LoadFloorsFromDir loads all YAML files in a directory as floors.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated floors or the first error encountered.
func LoadFloorsFromDir(dir string) ([]*Floor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading floor directory %s: %w", dir, err)
	}

	var floors []*Floor
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		f, err := LoadFloorFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading floor from %s: %w", name, err)
		}
		floors = append(floors, f)
	}

	if len(floors) == 0 {
		return nil, fmt.Errorf("no floor files found in %s", dir)
	}
	return floors, nil
}
