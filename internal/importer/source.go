package importer

import "github.com/cory-johannsen/veilrun/internal/game/world"

// FloorData is the common intermediate format produced by all Source
// implementations. Its YAML layout matches the floor file schema exactly, so
// it can be marshalled directly and validated by world.LoadFloorFromBytes.
type FloorData struct {
	Floor world.Floor `yaml:"floor"`
}

// Source loads content from a format-specific source directory and produces
// FloorData ready to be written as floor YAML files.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns at least one FloorData, or a non-nil error.
type Source interface {
	Load(sourceDir string) ([]*FloorData, error)
}
