// Package game drives a flock simulation at a fixed step, either headless or
// behind the raylib viewer, and feeds telemetry from it.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/flock"
	"github.com/pthm-cable/shoal/inspector"
	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/telemetry"
	"github.com/pthm-cable/shoal/ui"
)

// maxStepsPerUpdate bounds the speed keys.
const maxStepsPerUpdate = 10

// Options configures a game instance.
type Options struct {
	Seed           int64
	LogStats       bool    // Log window and perf stats via slog
	StatsWindowSec float64 // Stats window size in simulation seconds
	SnapshotDir    string  // Save a snapshot here on every bookmark
	OutputDir      string  // CSV logs and effective config
	RestorePath    string  // Start from this snapshot instead of spawning
	Headless       bool
	StepsPerUpdate int     // Ticks per Update call
	DT             float64 // Seconds per tick; 0 uses the config value
}

// Game holds the simulation, its telemetry and, when not headless, the viewer.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	sim   *flock.Simulation
	scene *flock.Scene

	tick           int32
	dt             float64
	paused         bool
	stepsPerUpdate int

	// Telemetry
	rngSeed          int64
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	sample           telemetry.Sample
	lastStats        *telemetry.WindowStats
	lastPerf         telemetry.PerfStats
	logStats         bool
	snapshotDir      string

	// Viewer
	camera          *camera.Camera
	water           *renderer.WaterBackground
	agentRenderer   *renderer.AgentRenderer
	terrainRenderer *renderer.TerrainRenderer
	inspector       *inspector.Inspector
	uiOverlays      *ui.OverlayRegistry
	controls        *ui.ControlsPanel
	tuning          *ui.TuningPanel
	hud             *ui.HUD
	perfPanel       *ui.PerfPanel
	schoolPanel     *ui.SchoolPanel
	showPerf        bool
	screenWidth     float32
	screenHeight    float32
}

// NewGameWithOptions creates a game from the global config. Errors opening
// outputs or restoring a snapshot are logged and the game continues without
// them.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	logger := slog.Default()

	dt := opts.DT
	if dt <= 0 {
		dt = cfg.Physics.DT
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	var snap *telemetry.Snapshot
	if opts.RestorePath != "" {
		var err error
		snap, err = telemetry.LoadSnapshot(opts.RestorePath)
		if err != nil {
			logger.Error("failed to load snapshot", "path", opts.RestorePath, "error", err)
		} else {
			opts.Seed = snap.RNGSeed
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	g := &Game{
		cfg:              cfg,
		logger:           logger,
		dt:               dt,
		stepsPerUpdate:   steps,
		rngSeed:          opts.Seed,
		collector:        telemetry.NewCollector(window, dt),
		perfCollector:    perf,
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}

	g.sim = flock.New(cfg, flock.Options{Logger: logger, Rand: rng, Perf: perf})
	g.scene = flock.NewScene(cfg, logger)
	g.scene.Apply(g.sim)

	if snap != nil {
		if err := g.sim.Restore(snap); err != nil {
			logger.Error("failed to restore snapshot", "error", err)
		} else {
			g.tick = snap.Tick
			g.collector.StartAt(snap.Tick)
		}
	}
	if g.sim.Len() == 0 {
		g.collector.RecordSpawn(g.sim.SpawnTypes())
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			logger.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				logger.Error("failed to write config", "error", err)
			}
		}
	}

	if !opts.Headless {
		g.initViewer()
	}
	return g
}

// initViewer sets up the camera, renderers and panels. Requires an open
// raylib window.
func (g *Game) initViewer() {
	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)

	g.camera = camera.New(float64(g.screenWidth), float64(g.screenHeight), g.cfg.Flock.SchoolWidth)
	g.water = renderer.NewWaterBackground()
	g.agentRenderer = renderer.NewAgentRenderer(g.cfg.Flock.AgentSize)
	g.terrainRenderer = renderer.NewTerrainRenderer()
	switch {
	case g.scene.Mesh != nil:
		g.terrainRenderer.SetMesh(g.scene.Mesh)
	case g.scene.Terrain != nil:
		g.terrainRenderer.SetTerrain(g.scene.Terrain)
	}

	g.inspector = inspector.NewInspector(int32(g.screenWidth), int32(g.screenHeight), g.cfg.Flock.AgentSize)
	g.uiOverlays = ui.NewOverlayRegistry()
	g.controls = ui.NewControlsPanel(10, 130, 220)
	g.tuning = ui.NewTuningPanel(240, 130, 300)
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(0, 0)
	g.schoolPanel = ui.NewSchoolPanel(0, 0)
	g.placePanels()
}

// placePanels anchors the bottom panels above the key legend.
func (g *Game) placePanels() {
	w, h := int32(g.screenWidth), int32(g.screenHeight)
	g.perfPanel.SetPosition(w-ui.PerfLayout.Width-10, h-g.perfPanel.Height()-legendHeight)
	g.schoolPanel.SetPosition(10, h-g.schoolPanel.Height()-legendHeight)
}

// Update handles input and runs the configured number of ticks.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	for range g.stepsPerUpdate {
		g.step()
	}
	if g.uiOverlays.IsEnabled(ui.OverlayFollow) {
		g.camera.Follow(g.sim.AveragePosition(), followStrength)
	}
}

// UpdateHeadless runs the configured number of ticks without input.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.step()
	}
}

// step runs a single fixed tick and flushes telemetry when a window closes.
func (g *Game) step() {
	g.sim.Tick(g.dt)
	g.tick++
	g.collector.RecordRecompute(g.sim.Recomputed())
	g.flushTelemetry()
}

// Tick returns the number of ticks run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *flock.Simulation {
	return g.sim
}

// Unload flushes and closes outputs.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			g.logger.Error("failed to close output manager", "error", err)
		}
	}
}
