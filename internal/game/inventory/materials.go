package inventory

import (
	"fmt"
	"sort"
)

// MaterialDef names a crafting material.
type MaterialDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Materials counts crafting materials by id.
type Materials map[string]int

// Add increases the count of id by n. Non-positive n is ignored.
func (m Materials) Add(id string, n int) {
	if n <= 0 {
		return
	}
	m[id] += n
}

// Count returns how many of id are held.
func (m Materials) Count(id string) int { return m[id] }

// Has reports whether every requirement is covered.
func (m Materials) Has(req map[string]int) bool {
	for id, n := range req {
		if m[id] < n {
			return false
		}
	}
	return true
}

// Spend removes every requirement at once.
//
// Postcondition: on error m is unchanged.
func (m Materials) Spend(req map[string]int) error {
	for _, id := range sortedIDs(req) {
		if m[id] < req[id] {
			return fmt.Errorf("materials: need %d %s, have %d", req[id], id, m[id])
		}
	}
	for id, n := range req {
		m[id] -= n
		if m[id] == 0 {
			delete(m, id)
		}
	}
	return nil
}

func sortedIDs(req map[string]int) []string {
	out := make([]string, 0, len(req))
	for id := range req {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MaterialGain is one stack of material handed to the player.
type MaterialGain struct {
	Material string `json:"material"`
	Quantity int    `json:"quantity"`
}
