// Package render draws a computed layout as SVG or as a raster image.
// Every call redraws the whole diagram.
package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"infinitism/internal/service/layout"
)

// SVG writes the layout as a standalone SVG document.
func SVG(w io.Writer, l *layout.Layout) error {
	if l == nil {
		return fmt.Errorf("render: nil layout")
	}

	canvas := svg.New(w)
	vb := l.ViewBox
	canvas.Start(
		int(math.Ceil(l.Width)),
		int(math.Ceil(l.Height)),
		fmt.Sprintf(`viewBox="%s %s %s %s"`, num(vb.MinX), num(vb.MinY), num(vb.Width), num(vb.Height)),
		fmt.Sprintf(`style="font: %spx %s"`, num(layout.FontSize), layout.FontFamily),
	)

	canvas.Group(
		`fill="none"`,
		attr("stroke", layout.LinkColor),
		attr("stroke-opacity", num(layout.LinkOpacity)),
		attr("stroke-width", num(layout.LinkWidth)),
	)
	for _, link := range l.Links {
		canvas.Path(link.Path())
	}
	canvas.Gend()

	canvas.Group()
	for _, n := range l.Nodes {
		drawNodeSVG(canvas, n)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func drawNodeSVG(canvas *svg.SVG, n *layout.Node) {
	b := n.Box

	canvas.Group(
		attr("transform", fmt.Sprintf("translate(%s,%s)", num(n.Y), num(n.X))),
		attr("data-node-id", n.ID),
		attr("data-depth", strconv.Itoa(n.Depth)),
		`style="cursor: pointer"`,
	)
	if n.Description != "" {
		canvas.Title(n.Description)
	}
	canvas.Roundrect(int(b.X), int(b.Y), int(b.Width), int(b.Height), int(b.Radius), int(b.Radius),
		attr("fill", b.Fill),
		attr("stroke", b.Stroke),
		attr("stroke-width", num(layout.BoxStrokeSize)),
	)
	canvas.Text(int(b.TextX), 0, n.Label,
		`dy="0.31em"`,
		attr("text-anchor", string(b.Anchor)),
		attr("fill", layout.LabelColor),
		`font-weight="500"`,
	)
	canvas.Gend()
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
