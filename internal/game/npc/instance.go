package npc

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Instance is an enemy placed on a floor. Its vitals persist between
// encounters: a fight the player walks away from leaves the enemy wounded.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string `json:"id"`
	// TemplateID is the source template's ID.
	TemplateID string `json:"templateId"`
	// Name is copied from the template for display.
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Boss bool   `json:"boss"`
	// CurrentHP and CurrentMana are stored on the template's unscaled scale.
	CurrentHP   int  `json:"currentHp"`
	CurrentMana int  `json:"currentMana"`
	Alive       bool `json:"alive"`
}

// NewInstance creates a live instance of tmpl at (x, y).
//
// Precondition: tmpl must be non-nil.
// Postcondition: CurrentHP equals tmpl.Stats.MaxHP and the instance is alive.
func NewInstance(tmpl *Template, x, y int) *Instance {
	return &Instance{
		ID:          uuid.NewString(),
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		X:           x,
		Y:           y,
		Boss:        tmpl.Boss,
		CurrentHP:   tmpl.Stats.MaxHP,
		CurrentMana: tmpl.Stats.MaxMana,
		Alive:       true,
	}
}

// Ratios returns the persisted vitals as fractions of the template maxima:
// health clamped to [0.05, 1], mana to [0, 1].
func (i *Instance) Ratios(tmpl *Template) (hp, mana float64) {
	hp = stats.Clamp(float64(i.CurrentHP)/float64(max(1, tmpl.Stats.MaxHP)), 0.05, 1)
	mana = stats.Clamp(float64(i.CurrentMana)/float64(max(1, tmpl.Stats.MaxMana)), 0, 1)
	return hp, mana
}

// Persist stores the vitals an unfinished encounter left the enemy with.
//
// Postcondition: CurrentHP >= 1 and CurrentMana >= 0.
func (i *Instance) Persist(hp, mana int) {
	i.CurrentHP = max(1, hp)
	i.CurrentMana = max(0, mana)
}

// Kill marks the instance defeated.
func (i *Instance) Kill() {
	i.Alive = false
	i.CurrentHP = 0
	i.CurrentMana = 0
}

// IsDead reports whether the instance has been defeated.
func (i *Instance) IsDead() bool {
	return !i.Alive || i.CurrentHP <= 0
}

// HealthDescription returns a visible health state string for the encounter
// preview.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription(maxHP int) string {
	if i.IsDead() {
		return "dead"
	}
	return HealthDescription(i.CurrentHP, maxHP)
}

// HealthDescription names the wound band hp falls in out of maxHP.
//
// Postcondition: Returns a non-empty string.
func HealthDescription(hp, maxHP int) string {
	if hp <= 0 {
		return "dead"
	}
	pct := float64(hp) / float64(max(1, maxHP))
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
