package progression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/veilrun/internal/game/progression"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/skill"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

type tree map[string]*ruleset.Passive

func (t tree) Passive(id string) (*ruleset.Passive, bool) {
	p, ok := t[id]
	return p, ok
}

func testTree() tree {
	return tree{
		"iron_skin": {ID: "iron_skin", Name: "Iron skin", Bonuses: stats.Bonuses{stats.DefenseFlat: 3}},
		"bulwark": {
			ID: "bulwark", Name: "Bulwark", Requires: "iron_skin",
			Bonuses: stats.Bonuses{stats.MaxHPFlat: 20},
		},
	}
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 120, progression.XPForLevel(1))
	assert.Equal(t, 250, progression.XPForLevel(2))
	assert.Equal(t, 460, progression.XPForLevel(3))
	assert.Equal(t, 120, progression.XPForLevel(0))
}

func TestXPForLevel_StrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := rapid.IntRange(1, 500).Draw(rt, "level")
		if progression.XPForLevel(l+1) <= progression.XPForLevel(l) {
			rt.Fatalf("xp curve not increasing at level %d", l)
		}
	})
}

func TestGrantXP_MultipleLevelsAndSkills(t *testing.T) {
	c := skill.NewCatalog()
	for _, s := range []*skill.Skill{
		{ID: "strike", Name: "Strike", UnlockLevel: 1, APCost: 2, Kind: skill.KindDamage},
		{ID: "cleave", Name: "Cleave", UnlockLevel: 2, APCost: 3, Kind: skill.KindDamage},
		{ID: "rally", Name: "Rally", UnlockLevel: 3, APCost: 2, Kind: skill.KindBuff},
		{ID: "ruin", Name: "Ruin", UnlockLevel: 5, APCost: 4, Kind: skill.KindDamage},
	} {
		require.NoError(t, c.Register(s))
	}
	tr := progression.NewTrack(1)

	up := tr.GrantXP(120+250+10, c)

	assert.True(t, up.Gained())
	assert.Equal(t, 1, up.From)
	assert.Equal(t, 3, up.To)
	assert.Equal(t, 3, tr.Level)
	assert.Equal(t, 10, tr.XP)
	assert.Equal(t, 3, tr.PassivePoints)
	require.Len(t, up.Skills, 2)
	assert.Equal(t, "cleave", up.Skills[0].ID)
	assert.Equal(t, "rally", up.Skills[1].ID)
}

func TestGrantXP_BelowThreshold(t *testing.T) {
	tr := progression.NewTrack(0)

	up := tr.GrantXP(119, nil)

	assert.False(t, up.Gained())
	assert.Equal(t, 1, tr.Level)
	assert.Equal(t, 119, tr.XP)
}

func TestGrantXP_KeepsRemainderBelowThreshold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := progression.NewTrack(0)
		total := 0
		for _, amt := range rapid.SliceOfN(rapid.IntRange(0, 2000), 1, 10).Draw(rt, "grants") {
			tr.GrantXP(amt, nil)
			total += amt
		}
		if tr.XP < 0 || tr.XP >= progression.XPForLevel(tr.Level) {
			rt.Fatalf("xp %d outside [0, %d)", tr.XP, progression.XPForLevel(tr.Level))
		}
		if tr.PassivePoints != tr.Level-1 {
			rt.Fatalf("points %d for level %d", tr.PassivePoints, tr.Level)
		}
		spent := 0
		for l := 1; l < tr.Level; l++ {
			spent += progression.XPForLevel(l)
		}
		if spent+tr.XP != total {
			rt.Fatalf("xp not conserved: %d+%d != %d", spent, tr.XP, total)
		}
	})
}

func TestGrantXP_PanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { progression.NewTrack(0).GrantXP(-1, nil) })
}

func TestUnlock_ReasonsInOrder(t *testing.T) {
	tr := progression.NewTrack(1)
	tt := testTree()

	_, reason := tr.Unlock(tt, "missing")
	assert.Equal(t, progression.ReasonUnknownPassive, reason)

	_, reason = tr.Unlock(tt, "bulwark")
	assert.Equal(t, "requires iron_skin", reason)
	assert.Equal(t, 1, tr.PassivePoints)

	p, reason := tr.Unlock(tt, "iron_skin")
	require.Empty(t, reason)
	assert.Equal(t, "iron_skin", p.ID)
	assert.Equal(t, 0, tr.PassivePoints)

	_, reason = tr.Unlock(tt, "iron_skin")
	assert.Equal(t, progression.ReasonAlreadyUnlocked, reason)

	_, reason = tr.Unlock(tt, "bulwark")
	assert.Equal(t, progression.ReasonNoPoints, reason)
	assert.Equal(t, []string{"iron_skin"}, tr.Passives)
}
