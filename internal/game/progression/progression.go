// Package progression tracks experience, levels and passive-tree unlocks.
package progression

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
)

// XP curve coefficients.
const (
	xpBase      = 120
	xpLinear    = 90
	xpQuadratic = 40
)

// Failure reasons reported by Unlock.
const (
	ReasonUnknownPassive  = "unknown passive"
	ReasonAlreadyUnlocked = "passive already unlocked"
	ReasonNoPoints        = "no passive points"
)

// XPForLevel returns the experience needed to advance from level to level+1.
//
// Postcondition: result >= 120 and strictly increases with level.
func XPForLevel(level int) int {
	n := max(level, 1) - 1
	return xpBase + n*xpLinear + n*n*xpQuadratic
}

// Track is the persistent progression state of one character.
//
// Invariant: Level >= 1; 0 <= XP < XPForLevel(Level) after every GrantXP.
type Track struct {
	Level         int      `json:"level"`
	XP            int      `json:"xp"`
	PassivePoints int      `json:"passivePoints"`
	Passives      []string `json:"passives"`
}

// NewTrack returns a level-1 track holding points unspent passive points.
func NewTrack(points int) *Track {
	return &Track{Level: 1, PassivePoints: max(0, points), Passives: []string{}}
}

// LevelUp reports what one GrantXP call changed.
type LevelUp struct {
	From int
	To   int
	// Skills are the skills whose unlock level was reached, in catalog order.
	Skills []*skill.Skill
}

// Gained reports whether at least one level was gained.
func (l LevelUp) Gained() bool { return l.To > l.From }

// GrantXP adds amount experience and levels up while the threshold is met.
// Each level grants one passive point. catalog may be nil.
//
// Precondition: amount >= 0.
// Postcondition: XP < XPForLevel(Level).
func (t *Track) GrantXP(amount int, catalog *skill.Catalog) LevelUp {
	if amount < 0 {
		panic("progression.Track.GrantXP: precondition violated: amount must be >= 0")
	}
	up := LevelUp{From: t.Level, To: t.Level}
	t.XP += amount
	for t.XP >= XPForLevel(t.Level) {
		t.XP -= XPForLevel(t.Level)
		t.Level++
		t.PassivePoints++
		if catalog != nil {
			up.Skills = append(up.Skills, catalog.UnlockedExactly(t.Level)...)
		}
	}
	up.To = t.Level
	return up
}

// HasPassive reports whether id is unlocked.
func (t *Track) HasPassive(id string) bool {
	return slices.Contains(t.Passives, id)
}

// PassiveTree looks up passives by id.
type PassiveTree interface {
	Passive(id string) (*ruleset.Passive, bool)
}

// Unlock spends one passive point on id. The returned reason is empty on
// success. Checks run in order: unknown, already unlocked, missing
// prerequisite, no points.
//
// Postcondition: on failure the track is unchanged.
func (t *Track) Unlock(tree PassiveTree, id string) (*ruleset.Passive, string) {
	p, ok := tree.Passive(id)
	if !ok {
		return nil, ReasonUnknownPassive
	}
	if t.HasPassive(id) {
		return nil, ReasonAlreadyUnlocked
	}
	if p.Requires != "" && !t.HasPassive(p.Requires) {
		return nil, fmt.Sprintf("requires %s", p.Requires)
	}
	if t.PassivePoints <= 0 {
		return nil, ReasonNoPoints
	}
	t.PassivePoints--
	t.Passives = append(t.Passives, id)
	return p, ""
}

// Progress is the run summary shown between floors and stored with history.
type Progress struct {
	FloorsCleared int    `json:"floorsCleared"`
	MythicFound   int    `json:"mythicFound"`
	Deaths        int    `json:"deaths"`
	Difficulty    string `json:"difficulty"`
	Class         string `json:"class"`
	Level         int    `json:"level"`
	Gold          int    `json:"gold"`
}
