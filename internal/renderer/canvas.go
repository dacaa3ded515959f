package renderer

import "errors"

// ErrUnknownHandle is returned when a drawable does not exist on the canvas.
var ErrUnknownHandle = errors.New("unknown drawable handle")

// Handle identifies a drawable owned by a Canvas. Zero means "no drawable".
type Handle uint64

// Kind is the drawable type passed to Canvas.Create.
type Kind string

const (
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindTriangle Kind = "triangle"
	KindText     Kind = "text"
	KindGroup    Kind = "group"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
)

// Drawable property names.
const (
	PropLeft        = "left"
	PropTop         = "top"
	PropScaleX      = "scaleX"
	PropScaleY      = "scaleY"
	PropAngle       = "angle"
	PropOpacity     = "opacity"
	PropFill        = "fill"
	PropStroke      = "stroke"
	PropStrokeWidth = "strokeWidth"
	PropCharSpacing = "charSpacing"
	PropLineHeight  = "lineHeight"
	PropVisible     = "visible"
	PropText        = "text"
	PropFontFamily  = "fontFamily"
	PropFontSize    = "fontSize"
	PropFontWeight  = "fontWeight"
	PropVolume      = "volume"
)

// VisualProps is the property set captured as defaults for visual layers.
var VisualProps = []string{
	PropLeft, PropTop, PropScaleX, PropScaleY, PropAngle,
	PropOpacity, PropFill, PropStroke, PropStrokeWidth,
}

// TextProps extends VisualProps for text drawables.
var TextProps = append(append([]string(nil), VisualProps...), PropCharSpacing, PropLineHeight)

// Props is a property bag for Create.
type Props map[string]any

// Font describes the face used for width measurement.
type Font struct {
	Family string
	Size   float64
	Weight string
}

// Canvas is the scene-graph collaborator. The engine never draws pixels; it
// pushes property values here and asks for a repaint once per pass.
type Canvas interface {
	Create(kind Kind, props Props) (Handle, error)
	Set(h Handle, prop string, v any) error
	Get(h Handle, prop string) (any, bool)
	MeasureTextWidth(text string, f Font) float64
	RequestRender()
	Remove(h Handle) error
}

// Float reads a numeric property, accepting the common numeric types.
func Float(c Canvas, h Handle, prop string) (float64, bool) {
	v, ok := c.Get(h, prop)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// ToFloat converts numeric property values to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
