package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetVec
	WidgetBool
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label": WidgetLabel,
	"bar":   WidgetBar,
	"vec":   WidgetVec,
	"bool":  WidgetBool,
	"skip":  WidgetSkip,
}

var vecType = reflect.TypeFor[r3.Vec]()

// Hint is a parsed `inspect` struct tag.
//
//	`inspect:"vec,fmt:%.2f"`
//	`inspect:"bar,max:8"`
//	`inspect:"skip"`
type Hint struct {
	Widget Widget
	Format string
	Max    float64 // Full scale for bars; 0 means 1
}

// ParseTag parses an inspect tag. Unknown widgets and options are ignored.
func ParseTag(tag string) Hint {
	var h Hint
	if tag == "" {
		return h
	}
	name, opts, _ := strings.Cut(tag, ",")
	h.Widget = widgetNames[strings.TrimSpace(name)]
	for opt := range strings.SplitSeq(opts, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(opt), ":")
		if !ok {
			continue
		}
		switch k {
		case "fmt":
			h.Format = v
		case "max":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				h.Max = f
			}
		}
	}
	return h
}

// Field is one exported struct field ready to draw.
type Field struct {
	Name  string
	Value any
	Hint  Hint
}

// ExtractFields lists the exported fields of a struct or struct pointer.
// An embedded field is named after the outer type so Position{r3.Vec} reads
// as "Position".
func ExtractFields(v any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	var fields []Field
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		h := ParseTag(sf.Tag.Get("inspect"))
		if h.Widget == WidgetSkip {
			continue
		}
		fv := rv.Field(i)
		if h.Widget == WidgetAuto {
			h.Widget = detectWidget(fv.Type())
		}
		name := sf.Name
		if sf.Anonymous {
			name = rt.Name()
		}
		fields = append(fields, Field{Name: name, Value: fv.Interface(), Hint: h})
	}
	return fields
}

func detectWidget(t reflect.Type) Widget {
	switch {
	case t == vecType:
		return WidgetVec
	case t.Kind() == reflect.Bool:
		return WidgetBool
	default:
		return WidgetLabel
	}
}

// FormatValue renders value with format, or with a default for its kind.
// Vectors apply format to each component.
func FormatValue(value any, format string) string {
	if v, ok := value.(r3.Vec); ok {
		if format == "" {
			format = "%.2f"
		}
		return fmt.Sprintf("("+format+", "+format+", "+format+")", v.X, v.Y, v.Z)
	}
	if format != "" {
		return fmt.Sprintf(format, value)
	}
	if f, ok := value.(float64); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	if f, ok := value.(float32); ok {
		return strconv.FormatFloat(float64(f), 'f', 2, 32)
	}
	return fmt.Sprint(value)
}

// Number converts any numeric value to float64. Vectors report their length.
func Number(value any) (float64, bool) {
	if v, ok := value.(r3.Vec); ok {
		return r3.Norm(v), true
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanFloat():
		return rv.Float(), true
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	}
	return 0, false
}
