package run

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
)

// consumableValue is what a merchant later pays for one bought unit.
func consumableValue(price int) int {
	return max(1, stats.Floor(float64(price)*consumableSellRate))
}

// Buy purchases one unit of the consumable defID at its list price.
func (r *Run) Buy(defID string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	def, ok := r.deps.Content.Items.Consumable(defID)
	if !ok {
		return r.fail(ReasonUnknownItem)
	}
	if r.Player.Gold < def.Price {
		return r.fail(ReasonNotEnoughGold)
	}
	r.Player.Gold -= def.Price
	r.Player.Bag.AddConsumable(def, inventory.Common, 1, consumableValue(def.Price))
	return r.ok(fmt.Sprintf("You buy a %s for %d gold.", def.Name, def.Price))
}

// Sell sells the bag item or one unit of the consumable stack with id.
func (r *Run) Sell(id string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	if it, ok := r.Player.Bag.Item(id); ok {
		price := it.SellPrice()
		if _, err := r.Player.Bag.RemoveItem(id); err != nil {
			return r.fail(ReasonUnknownItem)
		}
		r.Player.Gold += price
		return r.ok(fmt.Sprintf("You sell %s for %d gold.", it.Name, price))
	}
	unit, err := r.Player.Bag.TakeConsumable(id)
	if err != nil {
		return r.fail(ReasonUnknownItem)
	}
	r.Player.Gold += unit.Value
	return r.ok(fmt.Sprintf("You sell a %s for %d gold.", unit.Name, unit.Value))
}

// VisitHealer pays HealerPrice to restore HP and mana.
func (r *Run) VisitHealer() ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	b := r.Player.Stats(r.class)
	if r.Player.HP >= b.MaxHP && r.Player.Mana >= b.MaxMana {
		return r.fail(ReasonAlreadyHealthy)
	}
	if r.Player.Gold < HealerPrice {
		return r.fail(ReasonNotEnoughGold)
	}
	r.Player.Gold -= HealerPrice
	r.Player.Restore(r.class)
	return r.ok(fmt.Sprintf("The healer restores you for %d gold.", HealerPrice))
}

// Craft spends materials on recipeID.
func (r *Run) Craft(recipeID string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	recipe, ok := r.deps.Content.Loot.Recipe(recipeID)
	if !ok {
		return r.fail(ReasonUnknownRecipe)
	}
	crafted, err := r.gen.Craft(recipe, r.Player.Bag.Materials, r.Player.Level())
	if err != nil {
		return r.fail(ReasonMissingMats)
	}
	if crafted.Item != nil {
		r.gainItem(crafted.Item)
		return r.ok(fmt.Sprintf("You craft %s (%s).", crafted.Item.Name, crafted.Rarity))
	}
	def, ok := r.deps.Content.Items.Consumable(crafted.Consumable.ID)
	if !ok {
		r.logger.Warn("recipe yields unknown consumable", zap.String("recipe", recipe.ID))
		return r.fail(ReasonUnknownItem)
	}
	r.Player.Bag.AddConsumable(def, crafted.Rarity, crafted.Consumable.Quantity, crafted.Value)
	return r.ok(fmt.Sprintf("You craft %d %s.", crafted.Consumable.Quantity, def.Name))
}

// Equip equips the bag item id; the displaced item returns to the bag.
func (r *Run) Equip(id string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	it, err := r.Player.Equip(r.class, id)
	if err != nil {
		return r.fail(ReasonUnknownItem)
	}
	return r.ok(fmt.Sprintf("You equip %s.", it.Name))
}

// Unequip moves the item in slot back to the bag.
func (r *Run) Unequip(slot inventory.Slot) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	it, err := r.Player.Unequip(r.class, slot)
	if err != nil {
		return r.fail(err.Error())
	}
	return r.ok(fmt.Sprintf("You unequip %s.", it.Name))
}

// UseItem uses one unit of the consumable stack id. In combat it costs AP
// and resolves through the session. Outside combat heal and mana apply now
// while timed effects wait for the next encounter.
func (r *Run) UseItem(id string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Outcome != "" {
		return r.fail(ReasonRunOver)
	}
	stack, ok := r.Player.Bag.Consumable(id)
	if !ok {
		return r.fail(ReasonUnknownItem)
	}
	def, ok := r.deps.Content.Items.Consumable(stack.DefID)
	if !ok {
		r.logger.Warn("consumable definition missing", zap.String("def", stack.DefID))
		return r.fail(ReasonUnknownItem)
	}

	if r.Combat != nil {
		res := r.Combat.UseConsumable(def)
		if res.OK {
			if _, err := r.Player.Bag.TakeConsumable(id); err != nil {
				r.logger.Warn("consumable vanished mid-use", zap.String("stack", id), zap.Error(err))
			}
		}
		return r.settle(res)
	}

	if _, err := r.Player.Bag.TakeConsumable(id); err != nil {
		return r.fail(ReasonUnknownItem)
	}
	b := r.Player.Stats(r.class)
	events := []string{fmt.Sprintf("You use a %s.", def.Name)}
	if def.Heal > 0 {
		r.Player.HP = stats.ClampInt(r.Player.HP+def.Heal, 0, b.MaxHP)
	}
	if def.Mana > 0 {
		r.Player.Mana = stats.ClampInt(r.Player.Mana+def.Mana, 0, b.MaxMana)
	}
	if timed := def.TimedEffects(); len(timed) > 0 {
		r.Player.Prepared = append(r.Player.Prepared, timed...)
		events = append(events, "Its effects will carry into your next fight.")
	}
	return r.ok(events...)
}

// UnlockPassive spends a passive point on id.
func (r *Run) UnlockPassive(id string) ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.available(); !ok {
		return res
	}
	p, reason := r.Player.Progress.Unlock(r.class, id)
	if reason != "" {
		return r.fail(reason)
	}
	r.Player.ClampVitals(r.class)
	return r.ok(fmt.Sprintf("You learn %s.", p.Name))
}

// CombatView returns the live session for display, or nil outside combat.
// Callers must not mutate it.
func (r *Run) CombatView() *combat.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Combat
}
