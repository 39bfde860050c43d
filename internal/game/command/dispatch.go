package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/inventory"
	"github.com/cory-johannsen/veilrun/internal/game/run"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// DefaultLogLines is how many events the log command shows.
const DefaultLogLines = 10

// categoryOrder is the display order of help sections.
var categoryOrder = []string{
	CategoryMovement, CategoryCombat, CategoryItems,
	CategoryTown, CategoryCharacter, CategorySystem,
}

// Actor is the part of a run the dispatcher drives. *run.Run implements it.
type Actor interface {
	Move(dir world.Direction) run.ActionResult
	Harvest() run.ActionResult
	Descend() run.ActionResult
	Attack() run.ActionResult
	UseSkill(id string) run.ActionResult
	Reposition(dir combat.Direction) run.ActionResult
	Flee() run.ActionResult
	EndTurn() run.ActionResult
	UseItem(id string) run.ActionResult
	Equip(id string) run.ActionResult
	Unequip(slot inventory.Slot) run.ActionResult
	Buy(defID string) run.ActionResult
	Sell(id string) run.ActionResult
	VisitHealer() run.ActionResult
	Craft(recipeID string) run.ActionResult
	UnlockPassive(id string) run.ActionResult
	Abandon() run.ActionResult
	Status() run.Status
	Inventory() run.InventoryView
	Events(n int) []string
}

var _ Actor = (*run.Run)(nil)

// Dispatcher executes text commands against an Actor.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher creates a Dispatcher over reg. A nil reg uses DefaultRegistry.
func NewDispatcher(reg *Registry) *Dispatcher {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Dispatcher{reg: reg}
}

// Registry returns the dispatcher's command registry.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Execute parses line and performs it. Informational commands (status,
// inventory, log, help) report through Events without touching the run log.
//
// Postcondition: a blank line succeeds with no events; an unknown command or
// missing argument fails with a reason and changes nothing.
func (d *Dispatcher) Execute(a Actor, line string) run.ActionResult {
	p := Parse(line)
	if p.Command == "" {
		return run.ActionResult{OK: true}
	}
	cmd, ok := d.reg.Resolve(p.Command)
	if !ok {
		return run.ActionResult{Reason: fmt.Sprintf("unknown command %q", p.Command)}
	}
	if len(p.Args) < cmd.Args {
		return run.ActionResult{Reason: "usage: " + strings.TrimSpace(cmd.Name+" "+cmd.Usage)}
	}
	arg := ""
	if len(p.Args) > 0 {
		arg = p.Args[0]
	}

	switch cmd.Handler {
	case HandlerMove:
		return a.Move(world.Direction(cmd.Name))
	case HandlerHarvest:
		return a.Harvest()
	case HandlerDescend:
		return a.Descend()
	case HandlerAttack:
		return a.Attack()
	case HandlerCast:
		return a.UseSkill(arg)
	case HandlerCloser:
		return a.Reposition(combat.Closer)
	case HandlerAway:
		return a.Reposition(combat.Away)
	case HandlerFlee:
		return a.Flee()
	case HandlerEndTurn:
		return a.EndTurn()
	case HandlerUse:
		return a.UseItem(arg)
	case HandlerEquip:
		return a.Equip(arg)
	case HandlerUnequip:
		slot := inventory.Slot(strings.ToLower(arg))
		if !slot.Valid() {
			return run.ActionResult{Reason: fmt.Sprintf("no such slot %q", arg)}
		}
		return a.Unequip(slot)
	case HandlerBuy:
		return a.Buy(arg)
	case HandlerSell:
		return a.Sell(arg)
	case HandlerHeal:
		return a.VisitHealer()
	case HandlerCraft:
		return a.Craft(arg)
	case HandlerLearn:
		return a.UnlockPassive(arg)
	case HandlerAbandon:
		return a.Abandon()
	case HandlerStatus:
		return info(StatusLines(a.Status()))
	case HandlerInventory:
		return info(InventoryLines(a.Inventory()))
	case HandlerLog:
		return info(a.Events(DefaultLogLines))
	case HandlerHelp:
		return info(d.helpLines())
	}
	return run.ActionResult{Reason: fmt.Sprintf("command %q has no action", cmd.Name)}
}

func info(lines []string) run.ActionResult {
	return run.ActionResult{OK: true, Events: lines}
}

// StatusLines renders a run status as display lines.
func StatusLines(st run.Status) []string {
	lines := []string{
		fmt.Sprintf("%s the %s, level %d (%d/%d xp), %d passive point(s), %s",
			st.Name, st.Class, st.Level, st.XP, st.XPNext, st.PassivePoints, st.Difficulty),
		fmt.Sprintf("HP %d/%d  Mana %d/%d  Gold %d", st.HP, st.MaxHP, st.Mana, st.MaxMana, st.Gold),
	}
	where := fmt.Sprintf("%s at (%d,%d)", st.Floor, st.Position.X, st.Position.Y)
	if st.AtExit {
		if st.ExitOpen {
			where += ", by the stairs down"
		} else {
			where += ", by the sealed gate"
		}
	}
	lines = append(lines, where)
	if c := st.Combat; c != nil {
		lines = append(lines,
			fmt.Sprintf("Fighting %s (%d/%d HP, %s) at distance %d, turn %d, %s",
				c.Enemy, c.EnemyHP, c.EnemyMaxHP, c.Condition, c.Distance, c.Turn, c.State),
			fmt.Sprintf("AP %d  Flee %.0f%%  Ready: %s", c.AP, c.FleeChance*100, orNone(c.Ready)),
		)
	}
	if st.Outcome != "" {
		lines = append(lines, "Run over: "+string(st.Outcome))
	}
	return lines
}

// InventoryLines renders the player's belongings as display lines.
func InventoryLines(v run.InventoryView) []string {
	var lines []string
	for _, slot := range inventory.Slots {
		it, ok := v.Equipped[slot]
		if !ok {
			lines = append(lines, fmt.Sprintf("%-8s (empty)", slot))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-8s %s", slot, itemLine(it)))
	}
	for _, it := range v.Items {
		lines = append(lines, "bag      "+itemLine(it))
	}
	for _, st := range v.Consumables {
		lines = append(lines, fmt.Sprintf("stack    %s x%d [%s] (%s)", st.Name, st.Quantity, st.ID, st.Rarity))
	}
	for _, m := range v.Materials {
		lines = append(lines, fmt.Sprintf("material %s x%d", m.Name, m.Count))
	}
	return lines
}

func itemLine(it inventory.Item) string {
	return fmt.Sprintf("%s [%s] (%s, atk %d, def %d, %dg)", it.Name, it.ID, it.Rarity, it.Attack, it.Defense, it.Value)
}

func orNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

func (d *Dispatcher) helpLines() []string {
	groups := d.reg.CommandsByCategory()
	var lines []string
	for _, cat := range categoryOrder {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, cat+":")
		for _, c := range cmds {
			name := strings.TrimSpace(c.Name + " " + c.Usage)
			if len(c.Aliases) > 0 {
				name += " (" + strings.Join(c.Aliases, ", ") + ")"
			}
			lines = append(lines, fmt.Sprintf("  %-28s %s", name, c.Help))
		}
	}
	return lines
}
