package stats

// Block is a derived stat snapshot. It is a value type and never mutated once
// returned by a resolver.
type Block struct {
	MaxHP   int `json:"maxHp"`
	MaxMana int `json:"maxMana"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	AP      int `json:"ap"`

	CritChance     float64 `json:"critChance"`
	CritDamage     float64 `json:"critDamage"`
	DodgeChance    float64 `json:"dodgeChance"`
	ParryChance    float64 `json:"parryChance"`
	ParryReduction float64 `json:"parryReduction"`
	ToppleChance   float64 `json:"toppleChance"`
	StatusChance   float64 `json:"statusChance"`
	StatusResist   float64 `json:"statusResist"`

	DamagePercent          float64 `json:"damagePercent"`
	DotPercent             float64 `json:"dotPercent"`
	HealingDonePercent     float64 `json:"healingDonePercent"`
	HealingTakenPercent    float64 `json:"healingTakenPercent"`
	LifeStealPercent       float64 `json:"lifeStealPercent"`
	BossDamagePercent      float64 `json:"bossDamagePercent"`
	LongRangeDamagePercent float64 `json:"longRangeDamagePercent"`

	ManaRegen int `json:"manaRegen"`
	LifeRegen int `json:"lifeRegen"`
	// GatherBonus is the fraction of extra material a harvest yields.
	GatherBonus float64 `json:"gatherBonus"`

	// RangeMin and RangeMax bound the distances a basic attack reaches.
	RangeMin int `json:"rangeMin"`
	RangeMax int `json:"rangeMax"`
	// RangeBonus extends the upper bound of skill range windows.
	RangeBonus int `json:"rangeBonus"`
}

// InRange reports whether distance lies in the block's weapon range.
func (b Block) InRange(distance int) bool {
	return distance >= b.RangeMin && distance <= b.RangeMax
}
