package ui

import (
	"fmt"

	"github.com/pthm-cable/shoal/telemetry"
)

type stats = *telemetry.WindowStats

// SchoolLayout lists the rows of the school statistics panel.
var SchoolLayout = Layout[stats]{
	Title: "School",
	Width: 240,
	Sections: []Section[stats]{
		{
			Title: "Shape",
			Rows: []Row[stats]{
				{Label: "Aligned", Kind: RowMeter, Value: func(s stats) float64 { return s.Polarization }},
				{Label: "Spread", Format: "%.1f", Value: func(s stats) float64 { return s.SpreadMean }},
				{Label: "P90", Format: "%.1f", Value: func(s stats) float64 { return s.SpreadP90 }},
				{Label: "Depth", Text: func(s stats) string {
					return fmt.Sprintf("%.1f +- %.1f", s.DepthMean, s.DepthStd)
				}},
				{Label: "Speed", Value: func(s stats) float64 { return s.SpeedMean }},
			},
		},
		{
			Title: "Boundaries",
			Rows: []Row[stats]{
				{Label: "Outside", Kind: RowMeter, Value: func(s stats) float64 { return s.BreachFraction }},
				{Label: "Stray", Format: "%.0f", Value: func(s stats) float64 { return float64(s.Stray) }},
			},
		},
		{
			Title:   "Octree",
			Visible: func(s stats) bool { return s.OctreeNodes > 0 },
			Rows: []Row[stats]{
				{Label: "Nodes", Format: "%.0f", Value: func(s stats) float64 { return float64(s.OctreeNodes) }},
				{Label: "Depth", Format: "%.0f", Value: func(s stats) float64 { return float64(s.OctreeDepth) }},
			},
		},
	},
}

// SchoolPanel renders the latest window's statistics.
type SchoolPanel struct {
	painter *Painter
	x, y    int32
}

// NewSchoolPanel creates a school panel at the given position.
func NewSchoolPanel(x, y int32) *SchoolPanel {
	return &SchoolPanel{painter: NewPainter(), x: x, y: y}
}

// SetPosition moves the panel.
func (p *SchoolPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Height returns the panel's drawn height.
func (p *SchoolPanel) Height() int32 {
	t := p.painter.Theme
	return int32(SchoolLayout.Lines())*(t.LineHeight+2) + t.Padding*2
}

// Draw renders the panel. s is nil until the first window closes.
func (p *SchoolPanel) Draw(s *telemetry.WindowStats) {
	t := p.painter.Theme
	p.painter.Panel(p.x, p.y, SchoolLayout.Width, p.Height())

	x := p.x + t.Padding
	y := p.painter.Title(x, p.y+t.Padding, SchoolLayout.Title)
	if s == nil {
		p.painter.Note(x, y, "waiting for first window")
		return
	}
	DrawLayout(p.painter, x, y, SchoolLayout, s)
}
