package stats

// EnemyBase holds an enemy template's unscaled stats.
type EnemyBase struct {
	MaxHP          int     `yaml:"max_hp"`
	MaxMana        int     `yaml:"max_mana"`
	Attack         int     `yaml:"attack"`
	Defense        int     `yaml:"defense"`
	Speed          int     `yaml:"speed"`
	AP             int     `yaml:"ap"`
	CritChance     float64 `yaml:"crit_chance"`
	CritDamage     float64 `yaml:"crit_damage"`
	DodgeChance    float64 `yaml:"dodge_chance"`
	ParryChance    float64 `yaml:"parry_chance"`
	ParryReduction float64 `yaml:"parry_reduction"`
	ToppleChance   float64 `yaml:"topple_chance"`
	StatusResist   float64 `yaml:"status_resist"`
	LifeRegen      int     `yaml:"life_regen"`
	RangeMin       int     `yaml:"range_min"`
	RangeMax       int     `yaml:"range_max"`
}

// Scaling is the part of a difficulty profile applied to enemies.
type Scaling struct {
	HP      float64
	Damage  float64
	Armor   float64
	Tactics float64
}

// Identity scales nothing.
var Identity = Scaling{HP: 1, Damage: 1, Armor: 1, Tactics: 1}

// Enemy tactical defaults.
const (
	DefaultEnemyAP           = 4
	DefaultEnemyCritChance   = 0.06
	DefaultEnemyCritDamage   = 0.4
	DefaultEnemyDodgeChance  = 0.03
	DefaultEnemyParryChance  = 0.03
	DefaultEnemyToppleChance = 0.05
	DefaultEnemyStatusResist = 0.05
)

// ResolveEnemy derives an encounter's enemy stats once, from the template
// scaled by the difficulty profile.
//
// Postcondition: MaxHP == max(1, floor(base.MaxHP * s.HP)); tactical stats
// are multiplied by s.Tactics and clamped.
func ResolveEnemy(base EnemyBase, s Scaling) Block {
	b := Block{
		MaxHP:          max(1, floor(float64(base.MaxHP)*s.HP)),
		MaxMana:        max(0, base.MaxMana),
		Attack:         max(1, floor(float64(base.Attack)*s.Damage)),
		Defense:        max(0, floor(float64(base.Defense)*s.Armor)),
		Speed:          max(1, base.Speed),
		AP:             base.AP,
		CritChance:     Clamp(orDefault(base.CritChance, DefaultEnemyCritChance)*s.Tactics, 0.02, 0.5),
		CritDamage:     Clamp(orDefault(base.CritDamage, DefaultEnemyCritDamage)*s.Tactics, 0.2, 1.1),
		DodgeChance:    Clamp(orDefault(base.DodgeChance, DefaultEnemyDodgeChance)*s.Tactics, 0, 0.45),
		ParryChance:    Clamp(orDefault(base.ParryChance, DefaultEnemyParryChance)*s.Tactics, 0, 0.42),
		ParryReduction: orDefault(base.ParryReduction, DefaultParryReduction),
		ToppleChance:   Clamp(orDefault(base.ToppleChance, DefaultEnemyToppleChance)*s.Tactics, 0, 0.35),
		StatusResist:   Clamp(orDefault(base.StatusResist, DefaultEnemyStatusResist)*s.Tactics, 0, 0.7),
		LifeRegen:      max(0, base.LifeRegen),
		RangeMin:       max(1, base.RangeMin),
	}
	if b.AP <= 0 {
		b.AP = DefaultEnemyAP
	}
	b.RangeMax = max(base.RangeMax, b.RangeMin)
	return b
}
