// Package main provides a headless runner that plays dungeon runs with the
// autopilot or from a command script.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/config"
	"github.com/cory-johannsen/veilrun/internal/game/ai"
	"github.com/cory-johannsen/veilrun/internal/game/command"
	"github.com/cory-johannsen/veilrun/internal/game/dice"
	"github.com/cory-johannsen/veilrun/internal/game/run"
	"github.com/cory-johannsen/veilrun/internal/lifecycle"
	"github.com/cory-johannsen/veilrun/internal/observability"
	"github.com/cory-johannsen/veilrun/internal/scripting"
	"github.com/cory-johannsen/veilrun/internal/sim"
	"github.com/cory-johannsen/veilrun/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	runs := flag.Int("runs", 1, "number of autopilot runs played concurrently")
	class := flag.String("class", "", "class ID; empty = game.default_class")
	difficulty := flag.String("difficulty", "", "difficulty ID; empty = game.default_difficulty")
	name := flag.String("name", "Wanderer", "character name")
	script := flag.String("script", "", "play one run from a command file instead of the autopilot; - reads stdin")
	maxActions := flag.Int("max-actions", sim.DefaultMaxActions, "autopilot action cap per run")
	persist := flag.Bool("persist", false, "record finished runs in the database")
	history := flag.Int("history", 0, "print this many recent history entries and exit (implies -persist)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *class == "" {
		*class = cfg.Game.DefaultClass
	}
	if *difficulty == "" {
		*difficulty = cfg.Game.DefaultDifficulty
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var repo *postgres.RunRepository
	if *persist || *history > 0 {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database health check", zap.Error(err))
		}
		if err := pool.CheckSchema(ctx); err != nil {
			logger.Fatal("checking database schema", zap.Error(err))
		}
		repo = postgres.NewRunRepository(pool.DB())
	}
	if *history > 0 {
		printHistory(ctx, repo, *history, logger)
		return
	}

	contentStart := time.Now()
	content, err := run.LoadContent(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Content.Dir),
		zap.Int("classes", len(content.Rules.Classes())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	newManager := func(i int) (*run.Manager, func()) {
		var src dice.Source
		if cfg.Game.Seed == 0 {
			src = dice.NewCryptoSource()
		} else {
			src = dice.NewSeededSource(cfg.Game.Seed + uint64(i))
		}
		roller := dice.NewLoggedRoller(src, logger)
		scripts := scripting.NewManager(roller, logger)
		if cfg.Game.ScriptDir != "" {
			if err := scripts.LoadGlobal(cfg.Game.ScriptDir, cfg.Game.InstructionLimit); err != nil {
				logger.Fatal("loading AI scripts", zap.Error(err))
			}
		}
		var store run.Store
		if repo != nil {
			store = repo
		}
		deps := run.Deps{
			Content:     content,
			Source:      roller,
			Planner:     ai.NewPolicy(scripts, logger),
			LogCapacity: cfg.Game.EventLogCapacity,
			Logger:      logger,
		}
		return run.NewManager(deps, store), scripts.Close
	}
	player := sim.NewPlayer(command.NewDispatcher(nil), logger, *maxActions)

	if *script != "" {
		var in io.Reader = os.Stdin
		if *script != "-" {
			f, err := os.Open(*script)
			if err != nil {
				logger.Fatal("opening script", zap.Error(err))
			}
			defer f.Close()
			in = f
		}
		mgr, closeScripts := newManager(0)
		defer closeScripts()
		r, err := mgr.Create(*name, *class, *difficulty)
		if err != nil {
			logger.Fatal("starting run", zap.Error(err))
		}
		sum, err := player.Replay(ctx, r, in, os.Stdout)
		if err != nil {
			logger.Fatal("replaying script", zap.Error(err))
		}
		finish(ctx, mgr, sum, "script", logger)
		return
	}

	lc := lifecycle.New(logger)
	for i := range *runs {
		mgr, closeScripts := newManager(i)
		defer closeScripts()
		runName := *name
		if *runs > 1 {
			runName = fmt.Sprintf("%s %d", *name, i+1)
		}
		lc.Add(fmt.Sprintf("run-%d", i+1), &lifecycle.FuncService{
			StartFn: func(ctx context.Context) error {
				r, err := mgr.Create(runName, *class, *difficulty)
				if err != nil {
					return err
				}
				sum, err := player.Autoplay(ctx, r)
				if err != nil {
					return err
				}
				finish(ctx, mgr, sum, "autopilot", logger)
				return nil
			},
		})
	}
	if err := lc.Run(ctx); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	logger.Info("simulation complete",
		zap.Int("runs", *runs),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// finish prints the summary and closes the run through its manager, which
// records history when a store is attached.
func finish(ctx context.Context, mgr *run.Manager, sum sim.Summary, note string, logger *zap.Logger) {
	fmt.Println(sim.Describe(sum.Status))
	if sum.Capped {
		note += ", capped"
	}
	if _, err := mgr.Finish(ctx, sum.RunID, note); err != nil {
		logger.Error("finishing run", zap.String("run", sum.RunID), zap.Error(err))
	}
}

func printHistory(ctx context.Context, repo *postgres.RunRepository, limit int, logger *zap.Logger) {
	entries, err := repo.ListHistory(ctx, limit)
	if err != nil {
		logger.Fatal("listing history", zap.Error(err))
	}
	for _, e := range entries {
		fmt.Printf("%s  %-9s  %-8s  %-8s  level %-2d  %s\n",
			e.EndedAt.Format(time.DateTime), e.Result, e.Class, e.Difficulty, e.Level, e.Note)
	}
}
