package stats

import "math"

// Defaults applied when a class leaves a tactical stat unset.
const (
	DefaultAP             = 6
	DefaultDodgeChance    = 0.05
	DefaultParryChance    = 0.05
	DefaultCritDamage     = 0.45
	DefaultToppleChance   = 0.06
	DefaultStatusResist   = 0.03
	DefaultParryReduction = 0.45
	// MinManaRegen is the mana every player regains per turn regardless of gear.
	MinManaRegen = 4
)

// Base holds a class's level-1 stats as written in content.
type Base struct {
	MaxHP        int     `yaml:"max_hp" json:"maxHp"`
	MaxMana      int     `yaml:"max_mana" json:"maxMana"`
	Attack       int     `yaml:"attack" json:"attack"`
	Defense      int     `yaml:"defense" json:"defense"`
	Speed        int     `yaml:"speed" json:"speed"`
	AP           int     `yaml:"ap" json:"ap"`
	CritChance   float64 `yaml:"crit_chance" json:"critChance"`
	CritDamage   float64 `yaml:"crit_damage" json:"critDamage"`
	DodgeChance  float64 `yaml:"dodge_chance" json:"dodgeChance"`
	ParryChance  float64 `yaml:"parry_chance" json:"parryChance"`
	ToppleChance float64 `yaml:"topple_chance" json:"toppleChance"`
	StatusChance float64 `yaml:"status_chance" json:"statusChance"`
	StatusResist float64 `yaml:"status_resist" json:"statusResist"`
}

// Gear is what one equipped item contributes to the resolver.
type Gear struct {
	Attack  int
	Defense int
	Bonuses Bonuses
	// Weapon marks the piece whose range window becomes the attack range.
	Weapon   bool
	RangeMin int
	RangeMax int
}

// PlayerConfig is the full input to ResolvePlayer.
type PlayerConfig struct {
	Base     Base
	Level    int
	Gear     []Gear
	Passives []Bonuses
	Innate   Bonuses
	// HP and Mana are the current vitals, used by conditional modifiers.
	HP   int
	Mana int
}

// TotalBonuses merges innate, passive, and gear bonuses.
func (c PlayerConfig) TotalBonuses() Bonuses {
	sets := make([]Bonuses, 0, 1+len(c.Passives)+len(c.Gear))
	sets = append(sets, c.Innate)
	sets = append(sets, c.Passives...)
	for _, g := range c.Gear {
		sets = append(sets, g.Bonuses)
	}
	return Merge(sets...)
}

// Modifier is one stage of the player pipeline.
type Modifier struct {
	Name  string
	Apply func(b *Block, cfg PlayerConfig, bonus Bonuses)
}

// PlayerPipeline is the ordered list of stages ResolvePlayer runs after
// seeding the block from the class base.
var PlayerPipeline = []Modifier{
	{Name: "level", Apply: func(b *Block, cfg PlayerConfig, _ Bonuses) { ApplyLevel(b, cfg.Level) }},
	{Name: "gear", Apply: func(b *Block, cfg PlayerConfig, _ Bonuses) { ApplyGear(b, cfg.Gear) }},
	{Name: "bonuses", Apply: func(b *Block, _ PlayerConfig, bonus Bonuses) { ApplyBonuses(b, bonus) }},
	{Name: "conditional", Apply: func(b *Block, cfg PlayerConfig, bonus Bonuses) { ApplyConditional(b, bonus, cfg.HP, cfg.Mana) }},
	{Name: "clamp", Apply: func(b *Block, _ PlayerConfig, _ Bonuses) { ClampPlayer(b) }},
}

// ResolvePlayer derives the player's stat block. It has no side effects.
//
// Postcondition: every percentage-type stat is within its clamp range and
// MaxHP, Attack, Speed, AP >= 1.
func ResolvePlayer(cfg PlayerConfig) Block {
	bonus := cfg.TotalBonuses()
	b := FromBase(cfg.Base)
	for _, m := range PlayerPipeline {
		m.Apply(&b, cfg, bonus)
	}
	return b
}

// FromBase seeds a block from class stats, filling defaults for unset
// tactical stats and a melee range.
func FromBase(base Base) Block {
	b := Block{
		MaxHP:          base.MaxHP,
		MaxMana:        base.MaxMana,
		Attack:         base.Attack,
		Defense:        base.Defense,
		Speed:          base.Speed,
		AP:             base.AP,
		CritChance:     base.CritChance,
		CritDamage:     orDefault(base.CritDamage, DefaultCritDamage),
		DodgeChance:    orDefault(base.DodgeChance, DefaultDodgeChance),
		ParryChance:    orDefault(base.ParryChance, DefaultParryChance),
		ParryReduction: DefaultParryReduction,
		ToppleChance:   orDefault(base.ToppleChance, DefaultToppleChance),
		StatusChance:   base.StatusChance,
		StatusResist:   orDefault(base.StatusResist, DefaultStatusResist),
		RangeMin:       1,
		RangeMax:       1,
	}
	if b.AP <= 0 {
		b.AP = DefaultAP
	}
	return b
}

// ApplyLevel adds per-level growth. Level 1 adds nothing.
func ApplyLevel(b *Block, level int) {
	n := max(level, 1) - 1
	b.MaxHP += n * 11
	b.MaxMana += n * 8
	b.Attack += floor(float64(n) * 2.2)
	b.Defense += floor(float64(n) * 1.5)
	b.Speed += floor(float64(n) * 0.35)
	b.CritChance += float64(n) * 0.004
}

// ApplyGear adds equipped attack/defense and takes the weapon's range window.
func ApplyGear(b *Block, gear []Gear) {
	for _, g := range gear {
		b.Attack += g.Attack
		b.Defense += g.Defense
		if g.Weapon {
			b.RangeMin = max(g.RangeMin, 1)
			b.RangeMax = max(g.RangeMax, b.RangeMin)
		}
	}
}

// ApplyBonuses folds flat and percent bonus keys into the block.
func ApplyBonuses(b *Block, bonus Bonuses) {
	b.MaxHP += floor(bonus.Get(MaxHPFlat))
	b.MaxMana += floor(bonus.Get(MaxManaFlat))
	b.Attack += floor(bonus.Get(AttackFlat))
	b.Defense += floor(bonus.Get(DefenseFlat))
	b.Speed += floor(bonus.Get(SpeedFlat))
	b.AP += floor(bonus.Get(APFlat))

	b.CritChance += bonus.Get(CritChanceFlat)
	b.CritDamage += bonus.Get(CritDamageFlat)
	b.DodgeChance += bonus.Get(DodgeChanceFlat)
	b.ParryChance += bonus.Get(ParryChanceFlat)
	b.ToppleChance += bonus.Get(ToppleChanceFlat) + bonus.Get(StatusChanceFlat)
	b.StatusChance += bonus.Get(StatusChanceFlat)
	b.StatusResist += bonus.Get(StatusResistFlat)

	b.DamagePercent += bonus.Get(DamagePercent)
	b.DotPercent += bonus.Get(DotPercent)
	b.HealingDonePercent += bonus.Get(HealingDonePercent)
	b.HealingTakenPercent += bonus.Get(HealingTakenPercent)
	b.LifeStealPercent += bonus.Get(LifeStealPercent)
	b.BossDamagePercent += bonus.Get(BossDamagePercent)
	b.LongRangeDamagePercent += bonus.Get(LongRangeDamagePercent)

	b.ManaRegen += floor(bonus.Get(ManaRegenFlat))
	b.LifeRegen += floor(bonus.Get(LifeRegenFlat))
	b.GatherBonus += bonus.Get(GatherBonus)
	b.RangeBonus += floor(bonus.Get(RangeFlat))
	b.RangeMax += b.RangeBonus
}

// ApplyConditional applies modifiers that depend on current vitals:
// high health and high mana raise damage, low health raises defense.
func ApplyConditional(b *Block, bonus Bonuses, hp, mana int) {
	hpRatio := float64(hp) / float64(max(b.MaxHP, 1))
	if hpRatio > 0.7 {
		b.DamagePercent += bonus.Get(HighHPDamagePercent)
	}
	if hpRatio < 0.3 {
		b.Defense = floor(float64(b.Defense) * (1 + bonus.Get(LowHPDefensePercent)))
	}
	if b.MaxMana > 0 && float64(mana)/float64(b.MaxMana) > 0.5 {
		b.DamagePercent += bonus.Get(HighManaDamagePercent)
	}
}

// ClampPlayer bounds every stat to its sane range.
func ClampPlayer(b *Block) {
	b.MaxHP = max(b.MaxHP, 1)
	b.MaxMana = max(b.MaxMana, 0)
	b.Attack = max(b.Attack, 1)
	b.Defense = max(b.Defense, 0)
	b.Speed = max(b.Speed, 1)
	b.AP = max(b.AP, 1)

	b.CritChance = Clamp(b.CritChance, 0, 0.72)
	b.CritDamage = Clamp(b.CritDamage, 0.2, 1.25)
	b.DodgeChance = Clamp(b.DodgeChance, 0, 0.6)
	b.ParryChance = Clamp(b.ParryChance, 0, 0.55)
	b.ToppleChance = Clamp(b.ToppleChance, 0, 0.5)
	b.StatusChance = Clamp(b.StatusChance, 0, 0.35)
	b.StatusResist = Clamp(b.StatusResist, 0, 0.75)

	for _, p := range []*float64{
		&b.DamagePercent, &b.DotPercent, &b.HealingDonePercent, &b.HealingTakenPercent,
		&b.LifeStealPercent, &b.BossDamagePercent, &b.LongRangeDamagePercent,
	} {
		*p = Clamp(*p, 0, 3)
	}

	b.ManaRegen = max(b.ManaRegen, 0)
	b.LifeRegen = max(b.LifeRegen, 0)
	b.GatherBonus = Clamp(b.GatherBonus, 0, 3)
	b.RangeMin = max(b.RangeMin, 1)
	b.RangeMax = max(b.RangeMax, b.RangeMin)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

// floor truncates toward negative infinity, tolerating binary rounding just
// below an integer (100 * 1.28 must give 128).
func floor(v float64) int {
	return int(math.Floor(v + 1e-9))
}

// Floor is the rounding every balancing formula uses.
func Floor(v float64) int { return floor(v) }

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
