// Command shoalterm runs a school headless and draws it in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/flock"
	"github.com/pthm-cable/shoal/systems"
)

type viewer struct {
	screen tcell.Screen
	sim    *flock.Simulation
	cfg    *config.Config
	view   view

	width, height int
	dt            float64
	paused        bool
	follow        bool
	ticks         int
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	dt := flag.Float64("dt", 0, "Seconds per tick (0 = use config)")
	fps := flag.Int("fps", 30, "Redraws per second")
	logPath := flag.String("log", "", "Write logs to this file (default discards them)")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	// The terminal is owned by tcell, so logs never go to stdout
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if *dt <= 0 {
		*dt = cfg.Physics.DT
	}

	sim := flock.New(cfg, flock.Options{Logger: logger, Rand: rand.New(rand.NewSource(*seed))})
	flock.NewScene(cfg, logger).Apply(sim)
	sim.SpawnTypes()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &viewer{
		screen: screen,
		sim:    sim,
		cfg:    cfg,
		dt:     *dt,
		follow: true,
	}
	v.width, v.height = screen.Size()
	v.view.RowUnits = cfg.Flock.SchoolWidth * 1.5 / float64(max(v.height-2, 1))

	v.run(time.Second / time.Duration(max(*fps, 1)))
}

func (v *viewer) run(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(v.screen, events, done)

	for {
		select {
		case ev := <-events:
			if !v.handleInput(ev) {
				return
			}

		case <-ticker.C:
			if !v.paused {
				// Keep simulated time in step with the wall clock
				for elapsed := 0.0; elapsed < frame.Seconds(); elapsed += v.dt {
					v.sim.Tick(v.dt)
					v.ticks++
				}
			}
			if v.follow {
				v.view.Center = v.sim.AveragePosition()
			}
			v.draw()
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done
// is closed.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.follow = false
			v.view.pan(-4, 0)
		case tcell.KeyRight:
			v.follow = false
			v.view.pan(4, 0)
		case tcell.KeyUp:
			v.follow = false
			v.view.pan(0, 2)
		case tcell.KeyDown:
			v.follow = false
			v.view.pan(0, -2)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case '+', '=':
				v.view.zoom(1.25)
			case '-':
				v.view.zoom(0.8)
			case 'f':
				v.follow = !v.follow
			case 's':
				v.view.Side = !v.view.Side
			}
		}

	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.width, v.height-1 // Last row is the status line

	half := v.cfg.Derived.HalfWidth
	var depthLo, depthHi float64
	if v.view.Side {
		depthLo, depthHi = v.view.Center.Z-half, v.view.Center.Z+half
	} else {
		depthLo, depthHi = v.view.Center.Y-half, v.view.Center.Y+half
	}

	if v.view.Side {
		v.drawBoundaries(w, h)
	}

	for a := range v.sim.Agents() {
		col, row, ok := v.view.project(a.Position, w, h)
		if !ok {
			continue
		}
		style := v.view.depthStyle(a.Position, depthLo, depthHi)
		if a.Type > 0 {
			style = style.Bold(true)
		}
		v.screen.SetContent(col, row, v.view.headingGlyph(a.Forward), nil, style)
	}

	for _, l := range v.sim.Lures() {
		col, row, ok := v.view.project(l.Position, w, h)
		if !ok {
			continue
		}
		glyph, color := '+', tcell.ColorGreen
		if l.CurrentWeight() < 0 {
			glyph, color = '-', tcell.ColorRed
		}
		if !l.Enabled {
			color = tcell.ColorGray
		}
		v.screen.SetContent(col, row, glyph, nil, tcell.StyleDefault.Foreground(color).Reverse(true))
	}

	mode := "top"
	if v.view.Side {
		mode = "side"
	}
	status := fmt.Sprintf(" agents %d | t %.1fs | chunk %d/%d | %s view | [space] pause [arrows] pan [+/-] zoom [f] follow [s] side [q] quit",
		v.sim.Len(), v.sim.Now(), v.sim.Scheduler().ChunkSize(), v.sim.Scheduler().ChunkMax(), mode)
	if v.paused {
		status = " PAUSED" + status
	}
	for i, r := range []rune(status) {
		if i >= w {
			break
		}
		v.screen.SetContent(i, h, r, nil, tcell.StyleDefault.Reverse(true))
	}

	v.screen.Show()
}

// drawBoundaries draws the floor and ceiling heights at each column in the
// side view.
func (v *viewer) drawBoundaries(w, h int) {
	floor, ceiling := v.sim.Boundaries()
	for _, b := range []*systems.BoundaryRule{floor, ceiling} {
		if b == nil || !b.Valid() {
			continue
		}
		glyph := '▔'
		if b.Direction() == systems.Floor {
			glyph = '▁'
		}
		for col := range w {
			x := v.view.Center.X + (float64(col)-float64(w)/2)*v.view.RowUnits/cellAspect
			p := r3.Vec{X: x, Z: v.view.Center.Z}
			p.Y = b.HeightAt(p)
			if _, row, ok := v.view.project(p, w, h); ok {
				v.screen.SetContent(col, row, glyph, nil, tcell.StyleDefault.Foreground(tcell.ColorOlive))
			}
		}
	}
}
