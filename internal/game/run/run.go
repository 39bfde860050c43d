package run

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/character"
	"github.com/cory-johannsen/veilrun/internal/game/combat"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/loot"
	"github.com/cory-johannsen/veilrun/internal/game/progression"
	"github.com/cory-johannsen/veilrun/internal/game/ruleset"
	"github.com/cory-johannsen/veilrun/internal/game/stats"
	"github.com/cory-johannsen/veilrun/internal/game/world"
)

// Outcome is how a run ended; empty while it is still in progress.
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeDeath     Outcome = "death"
	OutcomeAbandoned Outcome = "abandoned"
)

// Failure reasons reported to the player.
const (
	ReasonRunOver        = "the run is over"
	ReasonInCombat       = "not while in combat"
	ReasonNoCombat       = "not in combat"
	ReasonNotEnemyTurn   = "not the enemy's turn"
	ReasonUnknownEnemy   = "that enemy cannot be fought"
	ReasonNothingHere    = "nothing to harvest here"
	ReasonNotAtExit      = "you are not at the exit"
	ReasonExitSealed     = "the way down is sealed"
	ReasonUnknownItem    = "no such item"
	ReasonUnknownRecipe  = "unknown recipe"
	ReasonMissingMats    = "missing materials"
	ReasonNotEnoughGold  = "not enough gold"
	ReasonAlreadyHealthy = "already at full health and mana"
)

// Economy tunables.
const (
	HealerPrice        = 55
	DefeatGoldPenalty  = 0.2
	consumableSellRate = 0.55
	bossLootDrops      = 2
	secretChestItems   = 2
)

// ErrRunNotFound is returned by Manager lookups that miss.
var ErrRunNotFound = errors.New("run not found")

// Deps is the runtime context a run resolves against. It is bound at New and
// rebound by Restore.
type Deps struct {
	Content *Content
	Source  dice.Source
	// Planner drives enemy turns; nil selects ai.NewPolicy(nil, Logger).
	Planner combat.Planner
	// LogCapacity bounds the event log; 0 selects DefaultLogCapacity.
	LogCapacity int
	Logger      *zap.Logger
}

// ActionResult reports the outcome of one player action.
type ActionResult struct {
	OK     bool
	Reason string
	// Ended is true when the action concluded an encounter.
	Ended bool
	// Events are the log lines the action produced, oldest first.
	Events []string
}

// Counters are the run-wide tallies shown in the progress summary.
type Counters struct {
	FloorsCleared int `json:"floorsCleared"`
	MythicFound   int `json:"mythicFound"`
	Deaths        int `json:"deaths"`
}

// Rewards summarises the most recent encounter victory.
type Rewards struct {
	Enemy     string   `json:"enemy"`
	XP        int      `json:"xp"`
	Gold      int      `json:"gold"`
	Items     []string `json:"items"`
	Materials []string `json:"materials"`
	LevelUp   bool     `json:"levelUp"`
}

// Run is the aggregate state of one descent. It owns at most one combat
// session, and combat state changes only through that session's entry
// points. All exported methods are safe for concurrent use; they serialise
// on the run's mutex.
type Run struct {
	ID         string            `json:"id"`
	Difficulty string            `json:"difficulty"`
	Player     *character.Player `json:"player"`
	Floor      *world.State      `json:"floor"`
	Position   world.Point       `json:"position"`
	Combat     *combat.Session   `json:"combat"`
	Counters   Counters          `json:"counters"`
	Outcome    Outcome           `json:"outcome,omitempty"`
	Log        *EventLog         `json:"log"`
	Last       *Rewards          `json:"lastRewards,omitempty"`
	// Return is set while the player is on a floor reached through a portal.
	Return *Return `json:"return,omitempty"`

	mu     sync.Mutex
	deps   Deps
	class  *ruleset.Class
	diff   *ruleset.Difficulty
	floor  *world.Floor
	gen    *loot.Generator
	logger *zap.Logger
}

// New starts a run on the shallowest floor with a freshly built player.
//
// Precondition: deps.Content and deps.Source must be non-nil.
// Postcondition: Returns a run positioned at the first floor's start, or an
// error wrapping ruleset.ErrUnknownClass / ErrUnknownDifficulty.
func New(id, name, classID, difficultyID string, deps Deps) (*Run, error) {
	if deps.Content == nil || deps.Source == nil {
		panic("run.New: precondition violated: content and source must be non-nil")
	}
	class, err := deps.Content.Rules.Class(classID)
	if err != nil {
		return nil, err
	}
	diff, err := deps.Content.Rules.Difficulty(difficultyID)
	if err != nil {
		return nil, err
	}
	player, err := character.Build(name, class, deps.Content.Items)
	if err != nil {
		return nil, fmt.Errorf("building player: %w", err)
	}

	r := &Run{
		ID:         id,
		Difficulty: diff.ID,
		Player:     player,
		Log:        NewEventLog(deps.LogCapacity),
	}
	first := deps.Content.Floors.First()
	if err := r.enterFloor(first, deps); err != nil {
		return nil, err
	}
	if err := r.bind(deps); err != nil {
		return nil, err
	}
	r.Log.Append(fmt.Sprintf("%s the %s enters %s.", player.Name, class.Name, first.Name))
	r.logger.Info("run started",
		zap.String("run", r.ID),
		zap.String("class", class.ID),
		zap.String("difficulty", diff.ID),
	)
	return r, nil
}

// enterFloor spawns f and places the player on its start tile.
func (r *Run) enterFloor(f *world.Floor, deps Deps) error {
	state, err := world.Spawn(f, deps.Content.Enemies, deps.Content.nodeCharges)
	if err != nil {
		return fmt.Errorf("spawning floor: %w", err)
	}
	r.Floor = state
	r.floor = f
	r.Position = f.Start
	return nil
}

// bind resolves the run's identifiers against deps and rebinds any restored
// combat session.
func (r *Run) bind(deps Deps) error {
	content := deps.Content
	class, err := content.Rules.Class(r.Player.Class)
	if err != nil {
		return err
	}
	diff, err := content.Rules.Difficulty(r.Difficulty)
	if err != nil {
		return err
	}
	f, ok := content.Floors.Floor(r.Floor.FloorID)
	if !ok {
		return fmt.Errorf("floor %q not found", r.Floor.FloorID)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	r.deps = deps
	r.class = class
	r.diff = diff
	r.floor = f
	r.gen = loot.NewGenerator(content.Loot, content.Rules.Rarity(), deps.Source)
	r.logger = deps.Logger.With(zap.String("run", r.ID))
	if r.Log == nil {
		r.Log = NewEventLog(deps.LogCapacity)
	}
	if deps.LogCapacity > 0 {
		r.Log.Capacity = deps.LogCapacity
	}
	if r.Combat != nil {
		tmpl, err := content.Enemies.Get(r.Combat.TemplateID)
		if err != nil {
			return fmt.Errorf("restoring combat: %w", err)
		}
		r.Combat.Bind(r.combatEnv(tmpl))
	}
	return nil
}

// Over reports whether the run has ended.
func (r *Run) Over() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Outcome != ""
}

// InCombat reports whether an encounter is in progress.
func (r *Run) InCombat() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Combat != nil
}

// Class returns the player's class.
func (r *Run) Class() *ruleset.Class { return r.class }

// CurrentFloor returns the static floor the player is on.
func (r *Run) CurrentFloor() *world.Floor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.floor
}

// Stats returns the player's derived stats at current vitals.
func (r *Run) Stats() stats.Block {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Player.Stats(r.class)
}

// Progress returns the run summary.
func (r *Run) Progress() progression.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress()
}

func (r *Run) progress() progression.Progress {
	return progression.Progress{
		FloorsCleared: r.Counters.FloorsCleared,
		MythicFound:   r.Counters.MythicFound,
		Deaths:        r.Counters.Deaths,
		Difficulty:    r.diff.ID,
		Class:         r.class.ID,
		Level:         r.Player.Level(),
		Gold:          r.Player.Gold,
	}
}

// LastRewards returns the summary of the most recent victory, if any.
func (r *Run) LastRewards() (Rewards, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Last == nil {
		return Rewards{}, false
	}
	return *r.Last, true
}

// Events returns up to n of the newest log entries.
func (r *Run) Events(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Log.Tail(n)
}

// Abandon ends a run in progress.
func (r *Run) Abandon() ActionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Outcome != "" {
		return r.fail(ReasonRunOver)
	}
	r.Outcome = OutcomeAbandoned
	r.logger.Info("run abandoned")
	return r.ok("You abandon the descent.")
}

// available reports the standard out-of-combat guards.
func (r *Run) available() (ActionResult, bool) {
	if r.Outcome != "" {
		return r.fail(ReasonRunOver), false
	}
	if r.Combat != nil {
		return r.fail(ReasonInCombat), false
	}
	return ActionResult{}, true
}

func (r *Run) fail(reason string) ActionResult {
	return ActionResult{Reason: reason}
}

func (r *Run) ok(events ...string) ActionResult {
	r.Log.Append(events...)
	return ActionResult{OK: true, Events: events}
}

func (r *Run) lootLevel() int {
	return max(r.Player.Level(), r.floor.Level)
}

func (r *Run) lootDrop(boss bool, source string) loot.Drop {
	return loot.Drop{
		Level:          r.lootLevel(),
		LootMultiplier: r.diff.Loot,
		Boss:           boss,
		Source:         source,
	}
}
