package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gridwalk/gridwalk/internal/config"
	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/data"
	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/render"
	"github.com/gridwalk/gridwalk/internal/rng"
	"github.com/gridwalk/gridwalk/internal/scripting"
	"github.com/gridwalk/gridwalk/internal/system"
	"github.com/gridwalk/gridwalk/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var (
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("  ── %s %s", title, strings.Repeat("─", lineLen))))
}

func printStat(label string, value any) {
	v := fmt.Sprint(value)
	dotsLen := 42 - len(label) - len(v)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, dimStyle.Render(strings.Repeat("·", dotsLen)), okStyle.Render(v))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", okStyle.Render("✓"), msg)
}

// ── Simulation ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/gridwalk.toml"
	if p := os.Getenv("GRIDWALK_CONFIG"); p != "" {
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

	sim, err := newSimulation(cfg, log, os.Stdout)
	if err != nil {
		return err
	}
	defer sim.Close()

	// 3. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	tickRate := cfg.Simulation.TickRate.Duration
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	printSection("running")
	printOK(fmt.Sprintf("tick loop started (tick: %s)", tickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			sim.runner.Tick(tickRate)
			if limit := cfg.Simulation.MaxTicks; limit > 0 && sim.runner.Ticks() >= limit {
				logSummary(log, sim.runner.Ticks(), sim.report.Stats())
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			logSummary(log, sim.runner.Ticks(), sim.report.Stats())
			return nil
		}
	}
}

// simulation is the wired tick pipeline for one map.
type simulation struct {
	state  *world.State
	engine *scripting.Engine
	runner *coresys.Runner
	report *system.ReportSystem
}

func (s *simulation) Close() { s.engine.Close() }

func newSimulation(cfg *config.Config, log *zap.Logger, out io.Writer) (*simulation, error) {
	// Load the map
	printSection("map")
	grids, err := data.LoadGridList(cfg.Map.List)
	if err != nil {
		return nil, fmt.Errorf("load grid list: %w", err)
	}
	printStat("maps loaded", grids.Count())

	info := grids.Get(cfg.Map.Name)
	if info == nil {
		return nil, fmt.Errorf("map %q not in %s (have %s)", cfg.Map.Name, cfg.Map.List, strings.Join(grids.Names(), ", "))
	}

	random := rng.New(cfg.Simulation.Seed)
	idx := grid.NewIndex(info, random, log)
	if err := idx.Initialize(); err != nil {
		var cfgErr *grid.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("map %s needs square cells, got %gx%g: %w", info.Name, cfgErr.SizeX, cfgErr.SizeY, err)
		}
		return nil, fmt.Errorf("map %s: %w", info.Name, err)
	}
	if err := info.ApplyTerrain(idx.Tiles()); err != nil {
		log.Warn("terrain partially applied", zap.Error(err))
	}
	sx, sy := idx.Size()
	printStat("map", info.Name)
	printStat("extents", fmt.Sprintf("%dx%d", sx, sy))
	printStat("seed", random.Seed())

	// Create ECS world and spawn agents
	printSection("agents")
	bus := event.NewBus()
	ecsWorld := ecs.NewWorld()
	worldState := world.NewState(idx, bus, ecsWorld, movement.Params{
		Speed:          cfg.Movement.Speed,
		ArrivalEpsilon: cfg.Movement.ArrivalEpsilon,
	}, log)
	for _, sp := range cfg.Agents.Spawn {
		cell := grid.Cell{X: sp.X, Y: sp.Y}
		if _, err := worldState.Spawn(sp.Name, cell); err != nil {
			return nil, fmt.Errorf("spawn agents: %w", err)
		}
		printStat(sp.Name, cell)
	}

	// Load scripts
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, worldState, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	printOK("lua scripts loaded from " + cfg.Scripting.Dir)

	// Create systems and register with runner
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(engine, worldState, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewMovementSystem(worldState, bus, log))
	report := system.NewReportSystem(worldState, bus, log)
	runner.Register(report)
	runner.Register(system.NewSnapshotSystem(worldState, render.NewSnapshotter(nil), out, cfg.Simulation.SnapshotEvery))
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	return &simulation{
		state:  worldState,
		engine: engine,
		runner: runner,
		report: report,
	}, nil
}

func logSummary(log *zap.Logger, ticks uint64, st system.Stats) {
	log.Info("simulation stopped",
		zap.Uint64("ticks", ticks),
		zap.Int("moves_queued", st.Queued),
		zap.Int("moves_arrived", st.Arrived),
		zap.Int("cell_changes", st.CellChanges),
		zap.Int("teleports", st.Teleports),
		zap.Int("tick_failures", st.Failures),
	)
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
