package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/kiln/ecs"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (optional)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sim.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	w := ecs.NewWorld(ecs.WithLogger(logger))
	ecs.PutResource(w.Resources(), &Bounds{
		Width:  cfg.Sim.WorldWidth,
		Height: cfg.Sim.WorldHeight,
	})

	w.AddSystem(&MovementSystem{})
	w.AddSystem(&LifetimeSystem{})
	w.AddSystem(&ReportSystem{logger: logger})

	logger.Info("populating world", zap.Int("entities", cfg.Sim.Entities))
	rng := rand.New(rand.NewSource(1))
	bounds, _ := ecs.GetResource[Bounds](w.Resources())
	for i := 0; i < cfg.Sim.Entities; i++ {
		entity := w.CreateEntity()
		for _, component := range randomComponents(rng, bounds) {
			if err := w.AddComponent(entity, component); err != nil {
				logger.Fatal("populate failed", zap.Error(err))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Sim.Duration)
	defer cancel()

	logger.Info("running simulation",
		zap.Duration("duration", cfg.Sim.Duration),
		zap.Duration("tick_interval", cfg.Sim.TickInterval))
	w.Run(ctx, cfg.Sim.TickInterval)

	printStats(logger, w.Stats())
}

func buildLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func printStats(logger *zap.Logger, stats *ecs.SchedulerStats) {
	logger.Info("simulation finished",
		zap.Int("systems", stats.SystemCount),
		zap.Int64("total_executions", stats.TotalExecutions))
	for _, sys := range stats.Systems {
		logger.Info("system stats",
			zap.String("system", sys.Name),
			zap.Int("priority", sys.Priority),
			zap.Int64("executions", sys.ExecutionCount),
			zap.Duration("min", sys.MinDuration),
			zap.Duration("max", sys.MaxDuration),
			zap.Duration("avg", sys.AvgDuration))
	}
}
