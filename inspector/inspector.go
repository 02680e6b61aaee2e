// Package inspector shows the components and steering breakdown of a
// selected agent.
package inspector

import (
	"fmt"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/flock"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

type section struct {
	title  string
	fields []Field
}

// Inspector manages agent selection and panel rendering.
type Inspector struct {
	selected     ecs.Entity
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32

	// PickRadius is the smallest ray distance that still selects an agent.
	PickRadius float64
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32, pickRadius float64) *Inspector {
	ins := &Inspector{PickRadius: pickRadius}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize moves the panel to the right edge of the new screen.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// HandleInput selects the agent under the mouse on left click and clears the
// selection on right click. It reports whether the click was
// consumed by the panel.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, cam *camera.Camera, sim *flock.Simulation) bool {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		ins.Deselect()
		return false
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return false
	}

	mx, my := int32(mouseX), int32(mouseY)
	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
			ins.Deselect()
			return true
		}
		if mx >= ins.panelX && mx <= ins.panelX+PanelWidth && my >= ins.panelY {
			return true
		}
	}

	origin, dir := cam.ScreenRay(float64(mouseX), float64(mouseY))
	radius := max(ins.PickRadius, cam.Distance*0.01)
	a, ok := camera.Pick(origin, dir, sim.Agents(), func(a flock.AgentState) r3.Vec { return a.Position }, radius)
	if ok {
		ins.Select(a.Entity)
	}
	return false
}

// Select marks e as the inspected agent.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected agent, if any.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the inspector panel if an agent is selected. A selection whose
// agent has been removed is cleared.
func (ins *Inspector) Draw(sim *flock.Simulation) {
	if !ins.hasSelected {
		return
	}
	pos, head, motion, slot, ok := sim.Components(ins.selected)
	if !ok {
		ins.Deselect()
		return
	}
	terms, _ := sim.Explain(ins.selected)

	steering := append(ExtractFields(terms), Field{
		Name:  "Direction",
		Value: terms.Direction(),
		Hint:  Hint{Widget: WidgetVec, Format: "%.2f"},
	})

	sections := []section{
		{title: "STATE", fields: slices.Concat(ExtractFields(pos), ExtractFields(head), ExtractFields(motion), ExtractFields(slot))},
		{title: "STEERING", fields: steering},
	}

	panelHeight := calculatePanelHeight(sections)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  Type: %d", ins.selected.ID(), slot.Type), x, y, 14, ColorHeaderText)
	y += 22

	for _, sec := range sections {
		rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
		y += 8
		ins.drawSectionHeader(x, y, sec.title)
		y += 20
		for _, f := range sec.fields {
			y += DrawField(x, y, f)
		}
		y += 4
	}
}

func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

func calculatePanelHeight(sections []section) int32 {
	height := int32(HeaderHeight + PanelPadding)
	height += 22 // ID line
	for _, sec := range sections {
		height += 8 + 20 + 4
		for _, f := range sec.fields {
			height += FieldHeight(f)
		}
	}
	return height + PanelPadding
}
