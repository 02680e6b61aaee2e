package inspector

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ColorTrack   = rl.Color{R: 24, G: 38, B: 48, A: 255}
	ColorFill    = rl.Color{R: 80, G: 170, B: 200, A: 255}
	ColorFillHot = rl.Color{R: 210, G: 120, B: 90, A: 255}
	ColorText    = rl.Color{R: 225, G: 230, B: 235, A: 255}
	ColorTextDim = rl.Color{R: 140, G: 155, B: 165, A: 255}
	ColorOn      = rl.Color{R: 90, G: 210, B: 150, A: 255}
	ColorOff     = rl.Color{R: 70, G: 80, B: 90, A: 255}
	ColorAxes    = [3]rl.Color{
		{R: 220, G: 90, B: 90, A: 255},
		{R: 90, G: 200, B: 90, A: 255},
		{R: 90, G: 140, B: 230, A: 255},
	}
)

const (
	fontSize   = 14
	valueX     = 90
	rowHeight  = 18
	vecHeight  = 32
	barWidth   = 120
	gaugeWidth = 72
)

// FieldHeight returns the vertical space DrawField uses for f.
func FieldHeight(f Field) int32 {
	if _, ok := f.Value.(r3.Vec); ok && f.Hint.Widget == WidgetVec {
		return vecHeight
	}
	return rowHeight
}

// DrawField draws f at (x, y) and returns the height used. Values that do
// not suit the hinted widget fall back to a label.
func DrawField(x, y int32, f Field) int32 {
	rl.DrawText(f.Name, x, y, fontSize, ColorTextDim)
	vx := x + valueX

	switch f.Hint.Widget {
	case WidgetVec:
		if v, ok := f.Value.(r3.Vec); ok {
			rl.DrawText(FormatValue(v, f.Hint.Format), vx, y, fontSize, ColorText)
			drawAxes(vx, y+16, v)
			return vecHeight
		}
	case WidgetBar:
		if n, ok := Number(f.Value); ok {
			drawBar(vx, y, n, f.Hint)
			return rowHeight
		}
	case WidgetBool:
		if b, ok := f.Value.(bool); ok {
			drawSwitch(vx, y, b)
			return rowHeight
		}
	}
	rl.DrawText(FormatValue(f.Value, f.Hint.Format), vx, y, fontSize, ColorText)
	return rowHeight
}

func drawBar(x, y int32, n float64, h Hint) {
	full := h.Max
	if full <= 0 {
		full = 1
	}
	frac := min(max(n/full, 0), 1)
	color := ColorFill
	if frac > 0.8 {
		color = ColorFillHot
	}
	rl.DrawRectangle(x, y+2, barWidth, 12, ColorTrack)
	rl.DrawRectangle(x, y+2, int32(barWidth*frac), 12, color)
	rl.DrawText(FormatValue(n, h.Format), x+barWidth+6, y, fontSize, ColorTextDim)
}

// drawAxes draws one signed bar per component, scaled by the largest.
func drawAxes(x, y int32, v r3.Vec) {
	comps := [3]float64{v.X, v.Y, v.Z}
	scale := max(math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z))
	mid := x + gaugeWidth/2
	for i, c := range comps {
		row := y + int32(i)*4
		rl.DrawRectangle(x, row, gaugeWidth, 3, ColorTrack)
		if scale == 0 {
			continue
		}
		w := int32(gaugeWidth / 2 * c / scale)
		if w < 0 {
			rl.DrawRectangle(mid+w, row, -w, 3, ColorAxes[i])
		} else {
			rl.DrawRectangle(mid, row, w, 3, ColorAxes[i])
		}
	}
}

func drawSwitch(x, y int32, on bool) {
	color, text := ColorOff, "off"
	if on {
		color, text = ColorOn, "on"
	}
	rl.DrawRectangle(x, y+1, 12, 12, color)
	rl.DrawText(text, x+18, y, fontSize, color)
}
