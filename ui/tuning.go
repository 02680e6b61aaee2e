package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/systems"
)

// weightSlider describes one steering weight slider.
type weightSlider struct {
	label string
	max   float32
	field func(*systems.Weights) *float64
}

var weightSliders = []weightSlider{
	{"Self", 10, func(w *systems.Weights) *float64 { return &w.Self }},
	{"Repulsion", 10, func(w *systems.Weights) *float64 { return &w.Repulsion }},
	{"Orientation", 10, func(w *systems.Weights) *float64 { return &w.Orientation }},
	{"Attraction", 10, func(w *systems.Weights) *float64 { return &w.Attraction }},
}

// TuningPanel shows raygui sliders for the steering weights and toggles for
// each lure.
type TuningPanel struct {
	painter  *Painter
	x, y     int32
	width    int32
	height   int32 // As of the last Draw
	visible  bool
}

// NewTuningPanel creates a tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		painter:  NewPainter(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *TuningPanel) IsVisible() bool {
	return p.visible
}

// SetPosition updates the panel position.
func (p *TuningPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Bounds returns the screen area covered by the last drawn panel.
func (p *TuningPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.height)}
}

// Draw renders the panel. It returns the edited weights and whether any
// slider moved; lure Enabled flags are changed in place.
func (p *TuningPanel) Draw(w systems.Weights, lures []*systems.Lure) (systems.Weights, bool) {
	if !p.visible {
		return w, false
	}
	pt := p.painter
	padding := pt.Theme.Padding
	rowHeight := int32(26)
	sliderW := float32(p.width - padding*2 - 60)

	height := padding*3 + pt.Theme.LineHeight*2 + rowHeight*int32(len(weightSliders)+len(lures))
	p.height = height
	pt.Panel(p.x, p.y, p.width, height)

	y := pt.Title(p.x+padding, p.y+padding, "Steering Weights")

	changed := false
	for _, s := range weightSliders {
		v := s.field(&w)
		rl.DrawText(s.label, p.x+padding, y, pt.Theme.FontSize, pt.Theme.Label)
		bounds := rl.Rectangle{X: float32(p.x + padding + 80), Y: float32(y), Width: sliderW - 80, Height: 14}
		nv := gui.SliderBar(bounds, "", fmt.Sprintf("%.2f", *v), float32(*v), 0, s.max)
		if float64(nv) != *v {
			*v = float64(nv)
			changed = true
		}
		y += rowHeight
	}

	if len(lures) > 0 {
		y = pt.Header(p.x+padding, y+4, "Lures")
		for _, l := range lures {
			bounds := rl.Rectangle{X: float32(p.x + padding), Y: float32(y), Width: 14, Height: 14}
			label := fmt.Sprintf("%s (w %.1f)", l.Name, l.CurrentWeight())
			l.Enabled = gui.CheckBox(bounds, label, l.Enabled)
			y += rowHeight
		}
	}
	return w, changed
}
