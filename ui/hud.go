package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/telemetry"
)

// HUDData is the status shown in the top left corner.
type HUDData struct {
	Title        string
	Agents       int
	Tick         int32
	SimTime      float64
	Speed        int
	FPS          int32
	Paused       bool
	ChunkSize    int
	ChunkMax     int
	Passes       int
	Recomputed   int
	Polarization float64
	Stray        int
}

// HUD draws the status lines and the key legend.
type HUD struct {
	painter *Painter
}

// NewHUD creates a HUD.
func NewHUD() *HUD {
	return &HUD{painter: NewPainter()}
}

// Draw renders d.
func (h *HUD) Draw(d HUDData) {
	rl.DrawText(d.Title, 10, 10, 20, rl.White)

	lines := []string{
		fmt.Sprintf("Agents: %d | Aligned: %.2f | Stray: %d", d.Agents, d.Polarization, d.Stray),
		fmt.Sprintf("Tick: %d | Time: %.1fs | Speed: %dx | FPS: %d", d.Tick, d.SimTime, d.Speed, d.FPS),
		fmt.Sprintf("Chunk: %d/%d | Recomputed: %d | Passes: %d", d.ChunkSize, d.ChunkMax, d.Recomputed, d.Passes),
	}
	y := int32(35)
	for _, l := range lines {
		rl.DrawText(l, 10, y, 16, h.painter.Theme.Label)
		y += 20
	}

	if d.Paused {
		rl.DrawText("PAUSED", 10, y, 16, rl.Yellow)
	}
}

// DrawLegend draws the key legend along the bottom edge.
func (h *HUD) DrawLegend(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-25, 14, h.painter.Theme.Muted)
}

type perf = telemetry.PerfStats

func phaseRow(name string) Row[perf] {
	return Row[perf]{
		Label: name,
		Kind:  RowMeter,
		Max:   100,
		Value: func(s perf) float64 { return s.PhasePct[name] },
	}
}

func micros(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

// PerfLayout shows tick timing and the share of each phase.
var PerfLayout = func() Layout[perf] {
	phases := Section[perf]{Title: "Phase %"}
	for _, name := range telemetry.Phases {
		phases.Rows = append(phases.Rows, phaseRow(name))
	}
	return Layout[perf]{
		Title: "Tick Performance",
		Width: 250,
		Sections: []Section[perf]{
			{
				Rows: []Row[perf]{
					{Label: "Avg", Text: func(s perf) string { return micros(s.AvgTickDuration) }},
					{Label: "Max", Text: func(s perf) string { return micros(s.MaxTickDuration) }},
					{Label: "Ticks/s", Format: "%.0f", Value: func(s perf) float64 { return s.TicksPerSecond }},
				},
			},
			phases,
		},
	}
}()

// PerfPanel renders the latest PerfStats.
type PerfPanel struct {
	painter *Painter
	x, y    int32
}

// NewPerfPanel creates a perf panel at the given position.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{painter: NewPainter(), x: x, y: y}
}

// SetPosition moves the panel.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Height returns the panel's drawn height.
func (p *PerfPanel) Height() int32 {
	t := p.painter.Theme
	return int32(PerfLayout.Lines())*(t.LineHeight+2) + t.Padding*2
}

// Draw renders s.
func (p *PerfPanel) Draw(s telemetry.PerfStats) {
	t := p.painter.Theme
	p.painter.Panel(p.x, p.y, PerfLayout.Width, p.Height())
	x := p.x + t.Padding
	y := p.painter.Title(x, p.y+t.Padding, PerfLayout.Title)
	DrawLayout(p.painter, x, y, PerfLayout, s)
}
