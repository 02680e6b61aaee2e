package ui

// ControlsPanel lists the overlay toggles grouped by category.
type ControlsPanel struct {
	painter *Painter
	x, y    int32
	width   int32
	visible bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{painter: NewPainter(), x: x, y: y, width: width}
}

// Toggle flips visibility and returns the new state.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible reports whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the toggles in reg.
func (c *ControlsPanel) Draw(reg *OverlayRegistry) {
	if !c.visible {
		return
	}
	p := c.painter
	t := p.Theme

	groups := reg.Categories()
	lines := 1
	for _, g := range groups {
		lines += len(reg.InCategory(g)) + 1
	}
	p.Panel(c.x, c.y, c.width, int32(lines)*t.LineHeight+t.Padding*2+int32(len(groups))*4+4)

	x := c.x + t.Padding
	y := p.Title(x, c.y+t.Padding, "Overlays")
	for _, g := range groups {
		y = p.Header(x, y, categoryTitle(g))
		for _, o := range reg.InCategory(g) {
			y = p.Toggle(x, y, o.Name, o.KeyLabel, reg.IsEnabled(o.ID), c.width-t.Padding*2)
		}
		y += 4
	}
}

func categoryTitle(c string) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return c
}
