package run_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/run"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

type memStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	history   []run.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string][]byte)}
}

func (s *memStore) SaveSnapshot(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) LoadSnapshot(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", run.ErrNoSnapshot, id)
	}
	return data, nil
}

func (s *memStore) ClearSnapshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return run.ErrNoSnapshot
	}
	delete(s.snapshots, id)
	return nil
}

func (s *memStore) AppendHistory(_ context.Context, e run.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, e)
	return nil
}

func TestSnapshot_RestoresMidCombat(t *testing.T) {
	c := newContent(t, []string{hallYAML}, bruteYAML)
	d := deps(c, maxSource{})
	r := newRun(t, d, "normal")
	mustOK(t, r.Move(world.East))
	mustOK(t, r.Move(world.East))
	require.True(t, r.InCombat())

	data, err := r.Snapshot()
	require.NoError(t, err)
	restored, err := run.Restore(data, d)
	require.NoError(t, err)

	assert.Equal(t, r.ID, restored.ID)
	assert.Equal(t, r.Position, restored.Position)
	assert.Equal(t, r.Player.Gold, restored.Player.Gold)
	assert.Len(t, restored.Player.Bag.Items, len(r.Player.Bag.Items))
	assert.Equal(t, r.Events(0), restored.Events(0))
	require.True(t, restored.InCombat())
	sess := restored.CombatView()
	assert.True(t, sess.Bound())
	assert.Equal(t, 500, sess.Enemy.HP)

	res := mustOK(t, restored.UseSkill("precise_shot"))
	assert.False(t, res.Ended)
	assert.Less(t, restored.CombatView().Enemy.HP, 500)
	assert.Equal(t, 500, r.CombatView().Enemy.HP, "the original is untouched")
}

func TestRestore_RejectsBadSnapshots(t *testing.T) {
	d := deps(newContent(t, []string{hallYAML}, ratYAML), maxSource{})
	cases := map[string]string{
		"garbage":        "{",
		"wrong version":  `{"version": 99, "run": {}}`,
		"missing player": `{"version": 1, "run": {"id": "x"}}`,
		"unknown floor":  `{"version": 1, "run": {"id": "x", "difficulty": "normal", "player": {"class": "archer", "progress": {"level": 1}}, "floor": {"floorId": "attic"}}}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run.Restore([]byte(data), d)
			assert.Error(t, err)
		})
	}
}

func TestManager_CreateGetRemove(t *testing.T) {
	m := run.NewManager(deps(newContent(t, []string{hallYAML}, ratYAML), maxSource{}), nil)

	r, err := m.Create("Vesna", "archer", "normal")
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = m.Create("Vesna", "jester", "normal")
	assert.Error(t, err)

	require.NoError(t, m.Remove(r.ID))
	_, err = m.Get(r.ID)
	assert.ErrorIs(t, err, run.ErrRunNotFound)
	assert.ErrorIs(t, m.Remove(r.ID), run.ErrRunNotFound)
	assert.Error(t, m.Save(context.Background(), r.ID), "no store")
}

func TestManager_SaveResumeFinish(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	d := deps(newContent(t, []string{hallYAML}, ratYAML), maxSource{})
	m := run.NewManager(d, store)

	r, err := m.Create("Vesna", "archer", "normal")
	require.NoError(t, err)
	mustOK(t, r.Move(world.East))
	require.NoError(t, m.Save(ctx, r.ID))
	require.NoError(t, m.Remove(r.ID))

	resumed, err := m.Resume(ctx, r.ID)
	require.NoError(t, err)
	assert.NotSame(t, r, resumed)
	assert.Equal(t, world.Point{X: 2, Y: 1}, resumed.Position)
	again, err := m.Resume(ctx, r.ID)
	require.NoError(t, err)
	assert.Same(t, resumed, again)

	entry, err := m.Finish(ctx, r.ID, "gave up")
	require.NoError(t, err)
	assert.Equal(t, run.OutcomeAbandoned, entry.Result)
	assert.Equal(t, "archer", entry.Class)
	assert.Equal(t, "gave up", entry.Note)
	assert.False(t, entry.EndedAt.IsZero())
	require.Len(t, store.history, 1)
	assert.Empty(t, store.snapshots)
	assert.Zero(t, m.Count())

	_, err = m.Resume(ctx, "missing")
	assert.ErrorIs(t, err, run.ErrNoSnapshot)
	_, err = m.Finish(ctx, "missing", "")
	assert.ErrorIs(t, err, run.ErrRunNotFound)
}

func TestRun_RandomPlayKeepsInvariants(t *testing.T) {
	c, err := run.LoadContent(contentDir)
	require.NoError(t, err)
	classes := c.Rules.Classes()

	rapid.Check(t, func(rt *rapid.T) {
		class := classes[rapid.IntRange(0, len(classes)-1).Draw(rt, "class")]
		difficulty := rapid.SampledFrom([]string{"normal", "hard", "hardcore"}).Draw(rt, "difficulty")
		seed := rapid.Uint64().Draw(rt, "seed")
		r, err := run.New("prop", "Tester", class.ID, difficulty, deps(c, dice.NewSeededSource(seed)))
		if err != nil {
			rt.Fatalf("new run: %v", err)
		}
		skills := r.Player.Skills(class).All()

		steps := rapid.IntRange(1, 80).Draw(rt, "steps")
		for i := range steps {
			switch rapid.IntRange(0, 8).Draw(rt, fmt.Sprintf("action%d", i)) {
			case 0, 1:
				r.Move(rapid.SampledFrom(world.StandardDirections).Draw(rt, "dir"))
			case 2:
				r.Attack()
			case 3:
				if len(skills) > 0 {
					r.UseSkill(skills[rapid.IntRange(0, len(skills)-1).Draw(rt, "skill")].ID)
				}
			case 4:
				r.EndTurn()
			case 5:
				r.Flee()
			case 6:
				r.Harvest()
				r.Descend()
			case 7:
				if cs := r.Player.Bag.Consumables; len(cs) > 0 {
					r.UseItem(cs[0].ID)
				}
			case 8:
				r.Buy("potion")
			}

			b := r.Stats()
			if r.Player.HP < 0 || r.Player.HP > b.MaxHP {
				rt.Fatalf("hp %d outside [0,%d]", r.Player.HP, b.MaxHP)
			}
			if r.Player.Mana < 0 || r.Player.Mana > b.MaxMana {
				rt.Fatalf("mana %d outside [0,%d]", r.Player.Mana, b.MaxMana)
			}
			if r.Player.Gold < 0 {
				rt.Fatalf("gold %d below zero", r.Player.Gold)
			}
			if r.Over() && r.InCombat() {
				rt.Fatalf("finished run still in combat")
			}
			if !r.CurrentFloor().Walkable(r.Position) {
				rt.Fatalf("player on unwalkable tile %v", r.Position)
			}
			if sess := r.CombatView(); sess != nil && sess.State.Resolved() {
				rt.Fatalf("resolved session %s left on the run", sess.State)
			}
		}
	})
}
