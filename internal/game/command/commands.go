// Package command turns text lines into run actions: a registry of named
// commands with aliases, a line parser, and a dispatcher that drives a run.
package command

// Categories for organizing commands.
const (
	CategoryMovement  = "movement"
	CategoryCombat    = "combat"
	CategoryItems     = "items"
	CategoryTown      = "town"
	CategoryCharacter = "character"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to run actions.
const (
	HandlerMove      = "move"
	HandlerHarvest   = "harvest"
	HandlerDescend   = "descend"
	HandlerAttack    = "attack"
	HandlerCast      = "cast"
	HandlerCloser    = "closer"
	HandlerAway      = "away"
	HandlerFlee      = "flee"
	HandlerEndTurn   = "end"
	HandlerUse       = "use"
	HandlerEquip     = "equip"
	HandlerUnequip   = "unequip"
	HandlerInventory = "inventory"
	HandlerBuy       = "buy"
	HandlerSell      = "sell"
	HandlerHeal      = "heal"
	HandlerCraft     = "craft"
	HandlerLearn     = "learn"
	HandlerStatus    = "status"
	HandlerLog       = "log"
	HandlerHelp      = "help"
	HandlerAbandon   = "abandon"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage names the arguments, e.g. "<skill>". Empty for bare commands.
	Usage string
	// Args is the number of required arguments.
	Args int
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps the command to a run action.
	Handler string
}

// BuiltinCommands returns every command a run understands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "north", Aliases: []string{"n"}, Help: "Step north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Step south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Step east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Step west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "harvest", Aliases: []string{"gather"}, Help: "Harvest the node you stand on", Category: CategoryMovement, Handler: HandlerHarvest},
		{Name: "descend", Aliases: []string{"down", "d"}, Help: "Take the stairs at the exit", Category: CategoryMovement, Handler: HandlerDescend},

		{Name: "attack", Aliases: []string{"a", "hit"}, Help: "Basic weapon attack", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "cast", Aliases: []string{"c", "skill"}, Usage: "<skill>", Args: 1, Help: "Use a skill", Category: CategoryCombat, Handler: HandlerCast},
		{Name: "closer", Aliases: []string{"advance"}, Help: "Close one step on the enemy", Category: CategoryCombat, Handler: HandlerCloser},
		{Name: "away", Aliases: []string{"retreat", "back"}, Help: "Back off one step", Category: CategoryCombat, Handler: HandlerAway},
		{Name: "flee", Aliases: []string{"run"}, Help: "Try to escape the fight", Category: CategoryCombat, Handler: HandlerFlee},
		{Name: "end", Aliases: []string{"pass", "wait"}, Help: "End your turn", Category: CategoryCombat, Handler: HandlerEndTurn},

		{Name: "use", Aliases: []string{"u", "drink"}, Usage: "<stack>", Args: 1, Help: "Use a consumable", Category: CategoryItems, Handler: HandlerUse},
		{Name: "equip", Aliases: []string{"wield", "wear"}, Usage: "<item>", Args: 1, Help: "Equip an item from the bag", Category: CategoryItems, Handler: HandlerEquip},
		{Name: "unequip", Aliases: []string{"remove"}, Usage: "<slot>", Args: 1, Help: "Return a slot's item to the bag", Category: CategoryItems, Handler: HandlerUnequip},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Help: "List equipment and bag", Category: CategoryItems, Handler: HandlerInventory},

		{Name: "buy", Usage: "<consumable>", Args: 1, Help: "Buy a consumable", Category: CategoryTown, Handler: HandlerBuy},
		{Name: "sell", Usage: "<item|stack>", Args: 1, Help: "Sell an item or one unit of a stack", Category: CategoryTown, Handler: HandlerSell},
		{Name: "heal", Aliases: []string{"healer"}, Help: "Pay the healer", Category: CategoryTown, Handler: HandlerHeal},
		{Name: "craft", Usage: "<recipe>", Args: 1, Help: "Craft a recipe", Category: CategoryTown, Handler: HandlerCraft},

		{Name: "learn", Aliases: []string{"unlock"}, Usage: "<passive>", Args: 1, Help: "Spend a passive point", Category: CategoryCharacter, Handler: HandlerLearn},
		{Name: "status", Aliases: []string{"st", "stats"}, Help: "Show vitals and position", Category: CategoryCharacter, Handler: HandlerStatus},

		{Name: "log", Aliases: []string{"events"}, Help: "Show recent events", Category: CategorySystem, Handler: HandlerLog},
		{Name: "help", Aliases: []string{"h", "?"}, Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "abandon", Aliases: []string{"quit"}, Help: "Give up the run", Category: CategorySystem, Handler: HandlerAbandon},
	}
}
