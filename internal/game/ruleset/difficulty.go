package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// Difficulty is a profile of multipliers applied to enemies, status rolls,
// and rewards.
type Difficulty struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	EnemyHP      float64 `yaml:"enemy_hp" json:"enemyHp"`
	EnemyDamage  float64 `yaml:"enemy_damage" json:"enemyDamage"`
	EnemyArmor   float64 `yaml:"enemy_armor" json:"enemyArmor"`
	EnemyTactics float64 `yaml:"enemy_tactics" json:"enemyTactics"`
	PlayerStatus float64 `yaml:"player_status" json:"playerStatus"`
	EnemyStatus  float64 `yaml:"enemy_status" json:"enemyStatus"`
	XP           float64 `yaml:"xp" json:"xp"`
	Loot         float64 `yaml:"loot" json:"loot"`
	// Permadeath ends the run on the first defeat.
	Permadeath bool `yaml:"permadeath" json:"permadeath"`
}

// NormalDifficulty multiplies nothing.
var NormalDifficulty = &Difficulty{
	ID: "normal", Name: "Normal",
	EnemyHP: 1, EnemyDamage: 1, EnemyArmor: 1, EnemyTactics: 1,
	PlayerStatus: 1, EnemyStatus: 1, XP: 1, Loot: 1,
}

// Scaling returns the enemy part of the profile.
func (d *Difficulty) Scaling() stats.Scaling {
	return stats.Scaling{HP: d.EnemyHP, Damage: d.EnemyDamage, Armor: d.EnemyArmor, Tactics: d.EnemyTactics}
}

// StatusMultiplier returns the status chance multiplier for the attacking side.
func (d *Difficulty) StatusMultiplier(playerAttacking bool) float64 {
	if playerAttacking {
		return d.PlayerStatus
	}
	return d.EnemyStatus
}

// Validate checks that every multiplier is positive.
func (d *Difficulty) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	for name, v := range map[string]float64{
		"enemy_hp": d.EnemyHP, "enemy_damage": d.EnemyDamage, "enemy_armor": d.EnemyArmor,
		"enemy_tactics": d.EnemyTactics, "player_status": d.PlayerStatus, "enemy_status": d.EnemyStatus,
		"xp": d.XP, "loot": d.Loot,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("difficulty %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

type difficultyFile struct {
	Difficulties []*Difficulty `yaml:"difficulties"`
}

// LoadDifficulties reads the difficulty profiles from path.
//
// Postcondition: every returned profile passed Validate.
func LoadDifficulties(path string) ([]*Difficulty, error) {
	var f difficultyFile
	if err := readStrict(path, &f); err != nil {
		return nil, err
	}
	for _, d := range f.Difficulties {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Difficulties, nil
}
