// Package layout positions a mind map as a horizontal tidy tree and derives
// the drawing geometry shared by the SVG and raster renderers.
package layout

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"infinitism/internal/domain/models/mindmap"
)

const (
	// NodeSpacing is the transverse distance between neighbouring siblings.
	NodeSpacing = 40.0
	// LevelSpacing is the distance between consecutive depths.
	LevelSpacing = 200.0
	// BaseWidth is the diagram width before the root column is added.
	BaseWidth = 1200.0

	BoxHeight     = 30.0
	BoxRadius     = 8.0
	BoxGap        = 10.0
	LabelInset    = 15.0
	CharWidth     = 8.0
	LabelPadding  = 24.0
	FontSize      = 14.0
	FontFamily    = "Inter, sans-serif"
	LabelColor    = "white"
	LinkColor     = "#475569"
	LinkOpacity   = 0.6
	LinkWidth     = 1.5
	RootFill      = "#1e293b"
	NodeFill      = "#334155"
	RootStroke    = "#38bdf8"
	NodeStroke    = "#64748b"
	BoxStrokeSize = 1.0
)

// RootID identifies the synthetic root node built from the title.
const RootID = "root"

// Anchor is the horizontal text alignment of a label.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

// Node is one positioned tree node. X is transverse (drawn vertically) and
// Y grows with depth (drawn horizontally).
type Node struct {
	ID          string
	Label       string
	Color       string
	Description string
	Depth       int
	X           float64
	Y           float64
	Parent      *Node
	Box         Box

	children []*Node
}

// HasChildren reports whether the node is drawn as an internal node.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Children returns the node's children in label order.
func (n *Node) Children() []*Node {
	return n.children
}

// Box is the rounded label rectangle, relative to the node's junction point.
type Box struct {
	X, Y          float64
	Width, Height float64
	Radius        float64
	Fill          string
	Stroke        string
	TextX         float64
	Anchor        Anchor
}

// Link connects a parent junction to a child junction.
type Link struct {
	Source *Node
	Target *Node
}

// Path renders the link as a horizontal cubic Bézier in screen coordinates.
func (l Link) Path() string {
	sx, sy := l.Source.Y, l.Source.X
	tx, ty := l.Target.Y, l.Target.X
	mx := (sx + tx) / 2
	return fmt.Sprintf("M%s,%sC%s,%s,%s,%s,%s,%s",
		num(sx), num(sy), num(mx), num(sy), num(mx), num(ty), num(tx), num(ty))
}

// ViewBox is the visible diagram area in layout coordinates.
type ViewBox struct {
	MinX, MinY    float64
	Width, Height float64
}

// Layout is a fully positioned mind map.
type Layout struct {
	Title   string
	Root    *Node
	Nodes   []*Node // breadth-first, root first
	Links   []Link  // one per non-root node, in Nodes order
	X0, X1  float64
	Width   float64
	Height  float64
	ViewBox ViewBox
}

// Compute lays out the mind map. The builder's stored X/Y are ignored.
func Compute(data mindmap.Data) *Layout {
	root := &Node{ID: RootID, Label: data.Title}
	for _, main := range data.Nodes {
		m := &Node{
			ID:          main.ID,
			Label:       main.Text,
			Color:       main.Color,
			Description: main.Description,
			Depth:       1,
			Parent:      root,
		}
		for _, sub := range main.Children {
			m.children = append(m.children, &Node{
				ID:          sub.ID,
				Label:       sub.Text,
				Color:       sub.Color,
				Description: sub.Description,
				Depth:       2,
				Parent:      m,
			})
		}
		root.children = append(root.children, m)
	}

	sortByLabel(root)
	tidy(root)

	l := &Layout{Title: data.Title, Root: root}
	l.X0, l.X1 = math.Inf(1), math.Inf(-1)

	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		n.X *= NodeSpacing
		n.Y = float64(n.Depth) * LevelSpacing
		n.Box = boxFor(n)

		l.X0 = math.Min(l.X0, n.X)
		l.X1 = math.Max(l.X1, n.X)
		l.Nodes = append(l.Nodes, n)
		if n.Parent != nil {
			l.Links = append(l.Links, Link{Source: n.Parent, Target: n})
		}
		queue = append(queue, n.children...)
	}

	l.Width = BaseWidth + LevelSpacing
	l.Height = l.X1 - l.X0 + 2*NodeSpacing
	l.ViewBox = ViewBox{
		MinX:   -LevelSpacing,
		MinY:   l.X0 - NodeSpacing,
		Width:  l.Width,
		Height: l.Height,
	}
	return l
}

// Find returns the node with the given id, or nil.
func (l *Layout) Find(id string) *Node {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func sortByLabel(n *Node) {
	sort.SliceStable(n.children, func(i, j int) bool {
		return n.children[i].Label < n.children[j].Label
	})
	for _, c := range n.children {
		sortByLabel(c)
	}
}

// BoxWidth is the rectangle width for a label.
func BoxWidth(label string) float64 {
	return float64(utf8.RuneCountInString(label))*CharWidth + LabelPadding
}

func boxFor(n *Node) Box {
	b := Box{
		Width:  BoxWidth(n.Label),
		Height: BoxHeight,
		Y:      -BoxHeight / 2,
		Radius: BoxRadius,
		Fill:   n.Color,
		Stroke: NodeStroke,
	}

	if b.Fill == "" {
		b.Fill = NodeFill
		if n.Depth == 0 {
			b.Fill = RootFill
		}
	}
	if n.Depth == 0 {
		b.Stroke = RootStroke
	}

	if n.HasChildren() {
		b.X = -b.Width - BoxGap
		b.TextX = -LabelInset
		b.Anchor = AnchorEnd
	} else {
		b.X = BoxGap
		b.TextX = LabelInset
		b.Anchor = AnchorStart
	}
	return b
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
