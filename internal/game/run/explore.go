package run

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// defaultChestBias is the rarity an unbiased chest leans toward.
const defaultChestBias = inventory.Rare

// Move steps the player one tile. Walking into a living enemy starts an
// encounter without moving; walking onto an unopened chest opens it.
//
// Postcondition: on success the player stands on a walkable tile or an
// encounter is in progress.
func (r *Run) Move(dir world.Direction) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	to, err := r.deps.Content.Floors.Navigate(r.floor.ID, r.Position, dir)
	if err != nil {
		return r.fail(err.Error())
	}
	if inst, ok := r.Floor.EnemyAt(to); ok {
		return r.startCombat(inst)
	}
	if p := r.floor.Portal; p != nil && r.Floor.PortalOpen && to == p.Point {
		return r.takePortal(p, to)
	}
	r.Position = to

	var events []string
	if c, ok := r.Floor.ChestAt(to); ok {
		events = append(events, r.openChest(c)...)
	}
	if n, ok := r.Floor.NodeAt(to); ok {
		events = append(events, fmt.Sprintf("A %s node is here (%d charges).", n.Kind, n.Charges))
	}
	if to == r.floor.Exit {
		if r.Floor.ExitOpen {
			events = append(events, "Stairs lead down.")
		} else {
			events = append(events, "A sealed gate bars the way down.")
		}
	}
	return r.ok(events...)
}

// Return is the floor state a portal was taken from and the tile to resume on.
type Return struct {
	Floor    *world.State `json:"floor"`
	Position world.Point  `json:"position"`
}

// takePortal moves the player onto the portal's target floor. The floor left
// behind is kept as it was; portals taken from a hidden floor keep the
// original return point.
func (r *Run) takePortal(p *world.Portal, at world.Point) ActionResult {
	target, ok := r.deps.Content.Floors.Floor(p.Target)
	if !ok {
		r.logger.Warn("portal target missing", zap.String("floor", r.floor.ID), zap.String("target", p.Target))
		return r.fail("the passage has collapsed")
	}
	ret := &Return{Floor: r.Floor, Position: at}
	if err := r.enterFloor(target, r.deps); err != nil {
		r.logger.Warn("portal failed", zap.String("target", p.Target), zap.Error(err))
		return r.fail(fmt.Sprintf("cannot enter %s", target.Name))
	}
	if r.Return == nil {
		r.Return = ret
	}
	r.logger.Info("portal taken", zap.String("floor", target.ID))
	return r.ok(fmt.Sprintf("You step through the hidden passage into %s.", target.Name))
}

// openChest rolls the chest's loot into the bag. Secret floors and secret
// chests pay out an extra item.
func (r *Run) openChest(c *world.Chest) []string {
	c.Opened = true
	count := 1
	if r.floor.Secret || c.Secret {
		count = secretChestItems
	}
	bias := c.Bias
	if bias == "" {
		bias = defaultChestBias
	}
	d := r.lootDrop(false, "Chest")
	d.Bias = bias
	payout := r.gen.OpenChest(d, count)

	names := make([]string, 0, len(payout.Items))
	for _, it := range payout.Items {
		r.gainItem(it)
		names = append(names, fmt.Sprintf("%s (%s)", it.Name, it.Rarity))
	}
	r.Player.Gold += payout.Gold
	r.Player.Bag.Materials.Add(payout.Material.Material, payout.Material.Quantity)
	r.logger.Info("chest opened", zap.String("chest", c.ID), zap.Strings("items", names), zap.Int("gold", payout.Gold))
	return []string{
		fmt.Sprintf("You open a chest: %s.", strings.Join(names, ", ")),
		fmt.Sprintf("Inside: %d gold and %s.", payout.Gold, r.materialLine(payout.Material)),
	}
}

// Harvest gathers one charge from the node under the player.
func (r *Run) Harvest() ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	n, ok := r.Floor.NodeAt(r.Position)
	if !ok {
		return r.fail(ReasonNothingHere)
	}
	def, ok := r.deps.Content.Loot.Node(n.Kind)
	if !ok {
		r.logger.Warn("harvest node kind missing", zap.String("node", n.ID), zap.String("kind", n.Kind))
		return r.fail(ReasonNothingHere)
	}
	n.Charges--
	gains := r.gen.Harvest(def, r.Player.Stats(r.class).GatherBonus)
	if len(gains) == 0 {
		return r.ok(fmt.Sprintf("The %s yields nothing.", def.Name))
	}
	lines := make([]string, 0, len(gains))
	for _, g := range gains {
		r.Player.Bag.Materials.Add(g.Material, g.Quantity)
		lines = append(lines, r.materialLine(g))
	}
	return r.ok(fmt.Sprintf("You harvest the %s: %s.", def.Name, strings.Join(lines, ", ")))
}

// Descend takes the open exit to the next floor. On a floor reached through
// a portal the exit leads back to where the portal was taken. Leaving the
// deepest floor wins the run.
func (r *Run) Descend() ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	if r.Position != r.floor.Exit {
		return r.fail(ReasonNotAtExit)
	}
	if !r.Floor.ExitOpen {
		return r.fail(ReasonExitSealed)
	}
	if r.Return != nil {
		return r.leaveHidden()
	}
	r.Counters.FloorsCleared++
	next, ok := r.deps.Content.Floors.Next(r.floor.ID)
	if !ok {
		r.Outcome = OutcomeVictory
		r.logger.Info("run won", zap.Int("level", r.Player.Level()), zap.Int("deaths", r.Counters.Deaths))
		return r.ok("You climb out of the depths. The run is won.")
	}
	if err := r.enterFloor(next, r.deps); err != nil {
		r.Counters.FloorsCleared--
		r.logger.Warn("descend failed", zap.String("floor", next.ID), zap.Error(err))
		return r.fail(fmt.Sprintf("cannot enter %s", next.Name))
	}
	r.logger.Info("floor entered", zap.String("floor", next.ID), zap.Int("depth", next.Depth))
	return r.ok(fmt.Sprintf("You descend to %s.", next.Name))
}

// leaveHidden restores the floor the portal was taken from.
func (r *Run) leaveHidden() ActionResult {
	ret := r.Return
	back, ok := r.deps.Content.Floors.Floor(ret.Floor.FloorID)
	if !ok {
		r.logger.Warn("return floor missing", zap.String("floor", ret.Floor.FloorID))
		return r.fail(fmt.Sprintf("cannot return to %s", ret.Floor.FloorID))
	}
	left := r.floor
	r.Counters.FloorsCleared++
	r.Floor, r.floor, r.Position, r.Return = ret.Floor, back, ret.Position, nil
	r.logger.Info("hidden floor cleared", zap.String("hidden", left.ID), zap.String("floor", back.ID))
	return r.ok(fmt.Sprintf("You leave %s and return to %s.", left.Name, back.Name))
}
