package view

import "math"

const (
	MinScale         = 0.1
	MaxScale         = 8.0
	DefaultZoomStep  = 0.2
	DefaultWrapperW  = 1280.0
	DefaultWrapperH  = 800.0
	ContentPadding   = 48.0
	initialViewScale = 1.0
)

// ViewportState is the serialisable pan/zoom transform.
type ViewportState struct {
	Scale         float64 `json:"scale"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	WrapperWidth  float64 `json:"wrapper_width"`
	WrapperHeight float64 `json:"wrapper_height"`
	ContentWidth  float64 `json:"content_width"`
	ContentHeight float64 `json:"content_height"`
}

// Viewport tracks how the diagram is positioned inside its wrapper.
// X and Y translate the content's top-left corner in wrapper pixels.
// It never looks at the mind map itself.
type Viewport struct {
	state ViewportState
}

// NewViewport creates a viewport with the content centred at scale 1.
func NewViewport(wrapperW, wrapperH, contentW, contentH float64) *Viewport {
	if wrapperW <= 0 {
		wrapperW = DefaultWrapperW
	}
	if wrapperH <= 0 {
		wrapperH = DefaultWrapperH
	}
	v := &Viewport{state: ViewportState{
		WrapperWidth:  wrapperW,
		WrapperHeight: wrapperH,
		ContentWidth:  contentW,
		ContentHeight: contentH,
	}}
	v.Reset()
	return v
}

// State returns a copy of the current transform.
func (v *Viewport) State() ViewportState {
	return v.state
}

// Reset returns to the initial centred view.
func (v *Viewport) Reset() {
	v.state.Scale = initialViewScale
	v.centre()
}

func (v *Viewport) centre() {
	s := &v.state
	s.X = (s.WrapperWidth - s.ContentWidth*s.Scale) / 2
	s.Y = (s.WrapperHeight - s.ContentHeight*s.Scale) / 2
}

// ZoomIn multiplies the scale by e^step around the wrapper centre.
func (v *Viewport) ZoomIn(step float64) {
	if step <= 0 {
		step = DefaultZoomStep
	}
	v.ZoomAt(math.Exp(step), v.state.WrapperWidth/2, v.state.WrapperHeight/2)
}

// ZoomOut multiplies the scale by e^-step around the wrapper centre.
func (v *Viewport) ZoomOut(step float64) {
	if step <= 0 {
		step = DefaultZoomStep
	}
	v.ZoomAt(math.Exp(-step), v.state.WrapperWidth/2, v.state.WrapperHeight/2)
}

// ZoomAt scales by factor keeping the content point under (px, py) fixed.
// The resulting scale is clamped to [MinScale, MaxScale].
func (v *Viewport) ZoomAt(factor, px, py float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	s := &v.state
	next := clamp(s.Scale*factor, MinScale, MaxScale)
	if next == s.Scale {
		return
	}

	cx := (px - s.X) / s.Scale
	cy := (py - s.Y) / s.Scale
	s.Scale = next
	s.X = px - cx*next
	s.Y = py - cy*next
}

// Pan moves the content by (dx, dy) wrapper pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.state.X += dx
	v.state.Y += dy
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
