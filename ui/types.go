// Package ui draws the viewer's 2D panels. Panels that show statistics are
// described by typed layouts so new rows only need a getter.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// RowKind selects how a row is drawn.
type RowKind int

const (
	RowText  RowKind = iota // Label and formatted value
	RowMeter                // Label and a bar filled to Value/Max
)

// Row is one labelled line of a panel section.
type Row[T any] struct {
	Label  string
	Kind   RowKind
	Format string  // Printf format for Value; ignored when Text is set
	Max    float64 // Full scale for meters; 0 means 1
	Value  func(T) float64
	Text   func(T) string
}

// Section groups rows under a header.
type Section[T any] struct {
	Title   string
	Rows    []Row[T]
	Visible func(T) bool // Nil means always shown
}

// Layout is a titled panel of sections.
type Layout[T any] struct {
	Title    string
	Width    int32
	Sections []Section[T]
}

// Lines returns the number of text lines the layout needs, counting the
// title and each section header.
func (l Layout[T]) Lines() int {
	n := 1
	for _, s := range l.Sections {
		n += len(s.Rows) + 1
	}
	return n
}

// Theme holds shared colours and metrics.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	Label         rl.Color
	Value         rl.Color
	Muted         rl.Color
	MeterBg       rl.Color
	MeterFill     rl.Color
	MeterHot      rl.Color
	ToggleOn      rl.Color
	ToggleOff     rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	MeterHeight    int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the dark underwater theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 8, G: 22, B: 34, A: 230},
		PanelBorder:   rl.Color{R: 40, G: 80, B: 100, A: 255},
		SectionHeader: rl.Color{R: 120, G: 210, B: 220, A: 255},
		Label:         rl.LightGray,
		Value:         rl.RayWhite,
		Muted:         rl.Color{R: 130, G: 150, B: 160, A: 255},
		MeterBg:       rl.Color{R: 20, G: 40, B: 52, A: 255},
		MeterFill:     rl.Color{R: 70, G: 160, B: 200, A: 255},
		MeterHot:      rl.Color{R: 220, G: 110, B: 90, A: 255},
		ToggleOn:      rl.Color{R: 90, G: 210, B: 150, A: 255},
		ToggleOff:     rl.Color{R: 60, G: 75, B: 85, A: 255},

		Padding:        10,
		LineHeight:     16,
		LabelWidth:     70,
		MeterHeight:    10,
		FontSize:       12,
		HeaderFontSize: 14,
		TitleFontSize:  16,
	}
}
