package sketch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/world"
	"github.com/cory-johannsen/veilrun/internal/importer"
)

// Reserved grid glyphs.
const (
	GlyphFloor       = '.'
	GlyphStart       = '@'
	GlyphExit        = '>'
	GlyphChest       = '$'
	GlyphSecretChest = '?'
)

// nodeGlyphs maps grid glyphs to harvest node kinds.
var nodeGlyphs = map[rune]string{
	'T': "tree",
	'O': "ore",
	'H': "herb",
}

func reserved(r rune) bool {
	switch r {
	case world.Wall, ' ', GlyphFloor, GlyphStart, GlyphExit, GlyphChest, GlyphSecretChest:
		return true
	}
	_, ok := nodeGlyphs[r]
	return ok
}

// Convert turns a parsed sketch into floor data. Markers become open floor in
// the output map. Chests are numbered <id>_chest_<n> and nodes <id>_<kind>_<n>
// in reading order. Every problem found is reported.
//
// Precondition: s must be non-nil.
// Postcondition: returns FloorData with exactly one start and one exit, or a
// non-nil error.
func Convert(s *Sketch) (*importer.FloorData, error) {
	if s == nil {
		panic("sketch.Convert: precondition violated: s must be non-nil")
	}
	h := s.Header
	id := h.ID
	if id == "" {
		id = importer.NameToID(h.Name)
	}
	var errs []error
	if id == "" {
		errs = append(errs, errors.New("floor needs an id or a name"))
	}
	bias := inventory.Rarity(h.ChestBias)
	if bias != "" && !bias.Valid() {
		errs = append(errs, fmt.Errorf("unknown chest_bias %q", h.ChestBias))
	}

	legend := make(map[rune]string, len(h.Legend))
	for key, template := range h.Legend {
		runes := []rune(key)
		switch {
		case len(runes) != 1:
			errs = append(errs, fmt.Errorf("legend key %q must be a single character", key))
		case reserved(runes[0]):
			errs = append(errs, fmt.Errorf("legend key %q is a reserved glyph", key))
		case strings.TrimSpace(template) == "":
			errs = append(errs, fmt.Errorf("legend key %q has no template", key))
		default:
			legend[runes[0]] = template
		}
	}

	fd := &importer.FloorData{Floor: world.Floor{
		ID:     id,
		Name:   h.Name,
		Depth:  h.Depth,
		Level:  h.Level,
		Secret: h.Secret,
		Map:    make([]string, len(s.Grid)),
	}}
	f := &fd.Floor
	var starts, exits int
	chests := 0
	nodes := make(map[string]int)

	for y, row := range s.Grid {
		var b strings.Builder
		for x, r := range []rune(row) {
			p := world.Point{X: x, Y: y}
			out := GlyphFloor
			switch r {
			case world.Wall, ' ', GlyphFloor:
				out = r
			case GlyphStart:
				starts++
				f.Start = p
			case GlyphExit:
				exits++
				f.Exit = p
			case GlyphChest, GlyphSecretChest:
				chests++
				f.Chests = append(f.Chests, world.ChestSpawn{
					ID:     fmt.Sprintf("%s_chest_%d", id, chests),
					Point:  p,
					Bias:   bias,
					Secret: r == GlyphSecretChest,
				})
			default:
				if kind, ok := nodeGlyphs[r]; ok {
					nodes[kind]++
					f.Nodes = append(f.Nodes, world.NodeSpawn{
						ID:    fmt.Sprintf("%s_%s_%d", id, kind, nodes[kind]),
						Node:  kind,
						Point: p,
					})
				} else if template, ok := legend[r]; ok {
					f.Enemies = append(f.Enemies, world.EnemySpawn{Template: template, Point: p})
				} else {
					errs = append(errs, fmt.Errorf("line %d col %d: unknown glyph %q", y+1, x+1, r))
					out = world.Wall
				}
			}
			b.WriteRune(out)
		}
		f.Map[y] = strings.TrimRight(b.String(), " ")
	}

	if starts != 1 {
		errs = append(errs, fmt.Errorf("grid needs exactly one start %q, found %d", GlyphStart, starts))
	}
	if exits != 1 {
		errs = append(errs, fmt.Errorf("grid needs exactly one exit %q, found %d", GlyphExit, exits))
	}
	if len(errs) > 0 {
		label := id
		if label == "" {
			label = "?"
		}
		return nil, fmt.Errorf("sketch %q: %w", label, errors.Join(errs...))
	}
	return fd, nil
}
