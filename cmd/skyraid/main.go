package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/persist"
	"github.com/skyraid/server/internal/scripting"
	"github.com/skyraid/server/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name, profile string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Skyraid  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       flock defense simulation core       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(profile: %s)\033[0m\n\n", name, profile)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/skyraid.toml"
	if p := os.Getenv("SKYRAID_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.Profile)

	// 3. Connect to PostgreSQL and run migrations (optional)
	var snapRepo *persist.SnapshotRepo
	var scoreRepo *persist.HighscoreRepo
	if cfg.Database.Enabled {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("migrations applied")
		fmt.Println()

		snapRepo = persist.NewSnapshotRepo(db)
		scoreRepo = persist.NewHighscoreRepo(db)
	}

	// 4. Load data tables
	printSection("data tables")

	waves, err := data.LoadWaveTable("data/waves.yaml")
	if err != nil {
		log.Warn("wave table missing, using built-in quotas", zap.Error(err))
		waves = data.DefaultWaveTable()
	}
	printStat("wave quotas", waves.Count())

	patterns, err := data.LoadPatternTable("data/patterns.yaml")
	if err != nil {
		log.Warn("pattern table missing, using built-in curves", zap.Error(err))
		patterns = data.DefaultPatternTable()
	}
	printStat("flight patterns", patterns.Count())

	// 5. Load Lua rule scripts
	scripts, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	printOK("rule scripts loaded")
	fmt.Println()

	// 6. Assemble the engine
	var engine *sim.Engine
	done := make(chan struct{})
	opts := sim.EngineOptions{
		Waves:        waves,
		Patterns:     patterns,
		Planner:      luaPlanner{scripts},
		LaunchCostFn: scripts.LaunchCost,
		Callbacks: sim.Callbacks{
			OnScoreUpdate: func(score, combo, mult int) {
				log.Debug("score",
					zap.Int("score", score),
					zap.Int("combo", combo),
					zap.Int("multiplier", mult))
			},
			OnWaveUpdate: func(index int) {
				log.Info("wave", zap.Int("index", index))
			},
			OnEnergyStatus: func(critical bool) {
				log.Warn("energy status changed", zap.Bool("critical", critical))
			},
			OnGameOver: func() {
				// Record the run and clear the resumable snapshot.
				if scoreRepo != nil {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					snap := engine.Snapshot()
					if err := scoreRepo.Record(ctx, &persist.HighscoreRow{
						Profile: snap.Profile,
						Score:   snap.Score,
						Wave:    snap.Wave,
					}); err != nil {
						log.Error("highscore record failed", zap.Error(err))
					}
					if err := snapRepo.Delete(ctx, snap.Profile); err != nil {
						log.Error("snapshot delete failed", zap.Error(err))
					}
					cancel()
				}
				close(done)
			},
		},
	}
	if snapRepo != nil {
		opts.Snapshots = snapRepo
	}

	engine = sim.NewEngine(cfg, log, opts)

	// 7. Resume a saved run when one exists
	if snapRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		snap, err := snapRepo.Load(ctx, cfg.Server.Profile)
		cancel()
		if err != nil {
			log.Warn("snapshot load failed", zap.Error(err))
		} else if snap != nil {
			engine.Restore(snap)
		}
	}

	printReady(fmt.Sprintf("simulating at %v per tick", cfg.Sim.TickRate))
	fmt.Println()

	// 8. Game loop with signal shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			engine.Tick(cfg.Sim.TickRate)
		case <-done:
			log.Info("run finished")
			return nil
		case sig := <-sigCh:
			log.Info("shutting down", zap.String("signal", sig.String()))
			if snapRepo != nil && !engine.GameOver() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := snapRepo.Save(ctx, engine.Snapshot()); err != nil {
					log.Error("final snapshot save failed", zap.Error(err))
				}
				cancel()
			}
			return nil
		}
	}
}

// luaPlanner adapts the scripting engine to the simulation's planner
// interface.
type luaPlanner struct {
	scripts *scripting.Engine
}

func (p luaPlanner) PlanWave(index int, fallback sim.WavePlan) sim.WavePlan {
	plan := p.scripts.WavePlanFor(index, scripting.WavePlan{
		Quota: fallback.Quota,
		Speed: fallback.Speed,
	})
	return sim.WavePlan{Quota: plan.Quota, Speed: plan.Speed}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
