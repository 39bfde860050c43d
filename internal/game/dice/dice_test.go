package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
)

// constSource always returns v clamped into [0, n).
type constSource struct{ v int }

func (c constSource) Intn(n int) int {
	if c.v >= n {
		return n - 1
	}
	return c.v
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 200; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestBetween_Property(t *testing.T) {
	src := dice.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(-50, 50).Draw(rt, "hi")
		v := dice.Between(src, lo, hi)
		if hi < lo {
			lo, hi = hi, lo
		}
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestChance_Extremes(t *testing.T) {
	src := constSource{v: 0}
	assert.False(t, dice.Chance(src, 0))
	assert.False(t, dice.Chance(src, -1))
	assert.True(t, dice.Chance(src, 1))
	assert.True(t, dice.Chance(src, 0.5), "a zero draw is below any positive probability")
	assert.False(t, dice.Chance(constSource{v: 1 << 30}, 0.99))
}

func TestWeighted_SkipsNonPositive(t *testing.T) {
	src := dice.NewSeededSource(1)
	for i := 0; i < 500; i++ {
		idx := dice.Weighted(src, []int{0, 5, -3, 5})
		assert.Contains(t, []int{1, 3}, idx)
	}
	assert.Equal(t, -1, dice.Weighted(src, []int{0, 0}))
	assert.Equal(t, -1, dice.Weighted(src, nil))
}

func TestWeighted_ZeroDrawPicksFirstPositive(t *testing.T) {
	assert.Equal(t, 2, dice.Weighted(constSource{v: 0}, []int{0, 0, 3, 4}))
}

func TestParseRange(t *testing.T) {
	r, err := dice.ParseRange("2-4")
	require.NoError(t, err)
	assert.Equal(t, dice.Range{Min: 2, Max: 4}, r)
	assert.Equal(t, "2-4", r.String())

	r, err = dice.ParseRange("3")
	require.NoError(t, err)
	assert.Equal(t, dice.Range{Min: 3, Max: 3}, r)
	assert.Equal(t, "3", r.String())

	for _, bad := range []string{"", "a", "4-2", "-1", "1-x"} {
		_, err := dice.ParseRange(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRange_YAML(t *testing.T) {
	var doc struct {
		Qty   dice.Range `yaml:"qty"`
		Fixed dice.Range `yaml:"fixed"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("qty: 1-3\nfixed: 2\n"), &doc))
	assert.Equal(t, dice.Range{Min: 1, Max: 3}, doc.Qty)
	assert.Equal(t, dice.Range{Min: 2, Max: 2}, doc.Fixed)
}

func TestRange_Roll_Property(t *testing.T) {
	src := dice.NewSeededSource(99)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 20).Draw(rt, "lo")
		span := rapid.IntRange(0, 20).Draw(rt, "span")
		r := dice.Range{Min: lo, Max: lo + span}
		v := r.Roll(src)
		assert.GreaterOrEqual(rt, v, r.Min)
		assert.LessOrEqual(rt, v, r.Max)
	})
}

func TestLoggedRoller_LogsEachDraw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(constSource{v: 3}, zap.New(core))

	assert.Equal(t, 3, r.Intn(10))
	assert.Equal(t, 5, dice.Between(r, 2, 9))

	entries := logs.FilterMessage("dice draw").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(10), entries[0].ContextMap()["n"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["result"])
}

func TestNewLoggedRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zap.NewNop()) })
}
