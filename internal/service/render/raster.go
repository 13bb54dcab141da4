package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"

	"infinitism/internal/service/layout"
)

const (
	DefaultPixelRatio = 3.0
	DefaultPadding    = 48.0
	DefaultBackground = "#0D1117"

	// labelBaseline matches the SVG dy="0.31em" label offset.
	labelBaseline = 0.31
)

// RasterOptions controls raster output.
type RasterOptions struct {
	PixelRatio float64 // device pixels per layout unit
	Padding    float64 // layout units around the diagram
	Background string  // opaque background colour
}

// DefaultRasterOptions returns the export defaults.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		PixelRatio: DefaultPixelRatio,
		Padding:    DefaultPadding,
		Background: DefaultBackground,
	}
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.PixelRatio <= 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

var (
	fontOnce sync.Once
	fontErr  error
	labelTTF *truetype.Font
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		labelTTF, fontErr = truetype.Parse(gomedium.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", fontErr)
	}
	return truetype.NewFace(labelTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RasterSize returns the pixel dimensions Rasterize produces.
func RasterSize(l *layout.Layout, opts RasterOptions) (int, int) {
	opts = opts.withDefaults()
	w := int(math.Ceil((l.Width + 2*opts.Padding) * opts.PixelRatio))
	h := int(math.Ceil((l.Height + 2*opts.Padding) * opts.PixelRatio))
	return w, h
}

// Rasterize draws the laid-out diagram, not any viewport, onto an opaque image.
func Rasterize(l *layout.Layout, opts RasterOptions) (image.Image, error) {
	dc, err := draw(l, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// PNG writes the rasterised diagram as a PNG image.
func PNG(w io.Writer, l *layout.Layout, opts RasterOptions) error {
	dc, err := draw(l, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func draw(l *layout.Layout, opts RasterOptions) (*gg.Context, error) {
	if l == nil {
		return nil, fmt.Errorf("render: nil layout")
	}
	opts = opts.withDefaults()

	bg, err := parseColor(opts.Background, 1)
	if err != nil {
		return nil, err
	}
	face, err := labelFace(layout.FontSize * opts.PixelRatio)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	width, height := RasterSize(l, opts)
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()

	// glyphs ignore the context matrix, so points are mapped to device pixels here
	ratio := opts.PixelRatio
	px := func(x, y float64) (float64, float64) {
		return (x - l.ViewBox.MinX + opts.Padding) * ratio,
			(y - l.ViewBox.MinY + opts.Padding) * ratio
	}

	linkColor, _ := parseColor(layout.LinkColor, layout.LinkOpacity)
	dc.SetColor(linkColor)
	dc.SetLineWidth(layout.LinkWidth * ratio)
	for _, link := range l.Links {
		sx, sy := px(link.Source.Y, link.Source.X)
		tx, ty := px(link.Target.Y, link.Target.X)
		mx := (sx + tx) / 2
		dc.MoveTo(sx, sy)
		dc.CubicTo(mx, sy, mx, ty, tx, ty)
		dc.Stroke()
	}

	dc.SetFontFace(face)
	labelColor, _ := parseColor(layout.LabelColor, 1)
	for _, n := range l.Nodes {
		b := n.Box
		x, y := px(n.Y+b.X, n.X+b.Y)

		fill, err := parseColor(b.Fill, 1)
		if err != nil {
			fill, _ = parseColor(layout.NodeFill, 1)
		}
		stroke, _ := parseColor(b.Stroke, 1)

		dc.DrawRoundedRectangle(x, y, b.Width*ratio, b.Height*ratio, b.Radius*ratio)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(layout.BoxStrokeSize * ratio)
		dc.Stroke()

		ax := 0.0
		if b.Anchor == layout.AnchorEnd {
			ax = 1
		}
		tx, ty := px(n.Y+b.TextX, n.X)
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(n.Label, tx, ty+labelBaseline*layout.FontSize*ratio, ax, 0)
	}

	return dc, nil
}

// parseColor accepts #rgb, #rrggbb and the named colour "white".
func parseColor(s string, alpha float64) (color.Color, error) {
	a := uint8(math.Round(alpha * 255))
	if strings.EqualFold(s, "white") {
		return color.NRGBA{R: 255, G: 255, B: 255, A: a}, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if ok && len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if !ok || len(hex) != 6 {
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: a}, nil
}
