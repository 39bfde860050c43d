package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/command"
	"github.com/cory-johannsen/veilrun/internal/game/run"
)

// DefaultMaxActions caps an autopilot run that never resolves.
const DefaultMaxActions = 2000

// Summary reports how a played run ended.
type Summary struct {
	RunID   string
	Actions int
	// Capped is true when the run was abandoned for hitting the action cap.
	Capped  bool
	Status  run.Status
}

// Player drives runs through a command dispatcher.
type Player struct {
	dispatcher *command.Dispatcher
	logger     *zap.Logger
	maxActions int
}

// NewPlayer creates a Player. maxActions < 1 selects DefaultMaxActions.
//
// Precondition: d and logger must be non-nil.
func NewPlayer(d *command.Dispatcher, logger *zap.Logger, maxActions int) *Player {
	if d == nil || logger == nil {
		panic("sim.NewPlayer: precondition violated: dispatcher and logger must be non-nil")
	}
	if maxActions < 1 {
		maxActions = DefaultMaxActions
	}
	return &Player{dispatcher: d, logger: logger, maxActions: maxActions}
}

// Autoplay steps r with the autopilot until it ends, the action cap is hit or
// ctx is done.
//
// Postcondition: on a nil error the run is over.
func (p *Player) Autoplay(ctx context.Context, r *run.Run) (Summary, error) {
	sum := Summary{RunID: r.ID}
	for !r.Over() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if sum.Actions >= p.maxActions {
			r.Abandon()
			sum.Capped = true
			p.logger.Warn("autopilot hit the action cap",
				zap.String("run", r.ID),
				zap.Int("actions", sum.Actions),
			)
			break
		}
		for _, line := range Candidates(r) {
			res := p.dispatcher.Execute(r, line)
			if res.OK {
				p.logger.Debug("autopilot",
					zap.String("run", r.ID),
					zap.String("command", line),
					zap.Strings("events", res.Events),
				)
				break
			}
		}
		sum.Actions++
	}
	sum.Status = r.Status()
	return sum, nil
}

// Replay executes each line of script against r and echoes the command and
// its events to out. Execution stops at the end of input, when the run is
// over, or when ctx is done.
func (p *Player) Replay(ctx context.Context, r *run.Run, script io.Reader, out io.Writer) (Summary, error) {
	sum := Summary{RunID: r.ID}
	sc := bufio.NewScanner(script)
	for sc.Scan() && !r.Over() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		line := sc.Text()
		if command.Parse(line).Command == "" {
			continue
		}
		res := p.dispatcher.Execute(r, line)
		sum.Actions++
		fmt.Fprintf(out, "> %s\n", line)
		if !res.OK {
			fmt.Fprintf(out, "  ! %s\n", res.Reason)
		}
		for _, e := range res.Events {
			fmt.Fprintf(out, "  %s\n", e)
		}
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("reading script: %w", err)
	}
	sum.Status = r.Status()
	return sum, nil
}
