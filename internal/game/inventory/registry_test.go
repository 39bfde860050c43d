package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
)

const itemsYAML = `
materials:
  - id: herb
    name: Mist herb
  - id: resin
    name: Living resin
consumables:
  - id: major_potion
    name: Major potion
    price: 45
    heal: 80
  - id: clarity_orb
    name: Clarity orb
    price: 72
    cleanse: true
    shield: 42
`

func TestLoadRegistryFromBytes(t *testing.T) {
	reg, err := inventory.LoadRegistryFromBytes([]byte(itemsYAML))
	require.NoError(t, err)

	orb, ok := reg.Consumable("clarity_orb")
	require.True(t, ok)
	assert.Equal(t, inventory.DefaultShieldTurns, orb.ShieldTurns)
	assert.Len(t, reg.Consumables(), 2)
	assert.Equal(t, "major_potion", reg.Consumables()[0].ID)
	assert.Equal(t, "Mist herb", reg.MaterialName("herb"))
	assert.Equal(t, "bone_dust", reg.MaterialName("bone_dust"))
	assert.Len(t, reg.Materials(), 2)
}

func TestLoadRegistryFromBytes_RejectsUnknownField(t *testing.T) {
	_, err := inventory.LoadRegistryFromBytes([]byte("consumables:\n  - id: p\n    name: P\n    heal: 1\n    sparkle: true\n"))
	assert.Error(t, err)
}

func TestLoadRegistryFromBytes_RejectsDuplicates(t *testing.T) {
	_, err := inventory.LoadRegistryFromBytes([]byte("materials:\n  - {id: ore, name: Ore}\n  - {id: ore, name: Ore}\n"))
	assert.Error(t, err)
}

func TestLoadRegistry_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	if err := os.WriteFile(path, []byte(itemsYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err := inventory.LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Consumable("major_potion"); !ok {
		t.Fatal("expected major_potion to be registered")
	}

	if _, err := inventory.LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
