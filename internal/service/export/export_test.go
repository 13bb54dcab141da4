package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/services"
)

type stubMindmaps struct {
	services.MindmapService
	m *mindmap.Mindmap
}

func (s *stubMindmaps) Get(_ context.Context, id, _ string) (*mindmap.Mindmap, error) {
	if s.m == nil || s.m.ID != id {
		return nil, &domain.NotFoundError{Message: "mind map not found: " + id}
	}
	return s.m, nil
}

func sampleData() mindmap.Data {
	return mindmap.Data{
		Title: "Cell Biology",
		Nodes: []mindmap.Node{
			{ID: "main-0", Text: "Membrane", Color: "#3B82F6", Children: []mindmap.Node{
				{ID: "sub-0-0", Text: "Lipids"},
				{ID: "sub-0-1", Text: "Proteins"},
			}},
			{ID: "main-1", Text: "Nucleus", Color: "#10B981", Children: []mindmap.Node{
				{ID: "sub-1-0", Text: "DNA"},
			}},
		},
	}
}

func TestOutline(t *testing.T) {
	got := Outline(sampleData(), true)
	want := strings.Join([]string{
		"Cell Biology",
		"├── Membrane [main-0]",
		"│   ├── Lipids [sub-0-0]",
		"│   └── Proteins [sub-0-1]",
		"└── Nucleus [main-1]",
		"    └── DNA [sub-1-0]",
	}, "\n")
	if got != want {
		t.Errorf("Outline() =\n%s\nwant\n%s", got, want)
	}

	if plain := Outline(mindmap.Data{Title: "Only"}, true); plain != "Only" {
		t.Errorf("title-only outline = %q", plain)
	}
	if strings.Contains(Outline(sampleData(), false), "[") {
		t.Error("ids shown without showIDs")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Cell Biology", want: "Cell_Biology_mindmap.pdf"},
		{title: "a  b\t\nc", want: "a_b_c_mindmap.pdf"},
		{title: " padded ", want: "_padded__mindmap.pdf"},
		{title: "", want: "_mindmap.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFitToPage(t *testing.T) {
	tests := []struct {
		name         string
		iw, ih       int
		wantW, wantH float64
	}{
		{name: "wide", iw: 2970, ih: 1000, wantW: 297, wantH: 100},
		{name: "tall", iw: 1000, ih: 2100, wantW: 100, wantH: 210},
		{name: "exact ratio", iw: 594, ih: 420, wantW: 297, wantH: 210},
		{name: "empty", iw: 0, ih: 10, wantW: 0, wantH: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitToPage(PageWidth, PageHeight, tt.iw, tt.ih)
			if !near(w, tt.wantW) || !near(h, tt.wantH) {
				t.Errorf("FitToPage = %v x %v, want %v x %v", w, h, tt.wantW, tt.wantH)
			}
			if w > PageWidth+1e-9 || h > PageHeight+1e-9 {
				t.Errorf("image exceeds page: %v x %v", w, h)
			}
		})
	}
}

func TestFitToPageKnownDiagram(t *testing.T) {
	const iw, ih = 1600, 900

	// A4 landscape in millimetres and at 96 dpi
	pages := []struct {
		name   string
		pw, ph float64
	}{
		{name: "millimetres", pw: PageWidth, ph: PageHeight},
		{name: "pixels", pw: 297 / 25.4 * 96, ph: 210 / 25.4 * 96},
	}

	for _, p := range pages {
		t.Run(p.name, func(t *testing.T) {
			scale := min(p.pw/iw, p.ph/ih)
			w, h := FitToPage(p.pw, p.ph, iw, ih)
			if !near(w, iw*scale) || !near(h, ih*scale) {
				t.Errorf("FitToPage = %v x %v, want scale %v", w, h, scale)
			}
			if w > p.pw+1e-9 || h > p.ph+1e-9 {
				t.Errorf("image %v x %v exceeds page %v x %v", w, h, p.pw, p.ph)
			}
			if !near(w, p.pw) {
				t.Errorf("a 16:9 diagram should fill the page width, got %v", w)
			}
		})
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestWritePDF(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for x := 0; x < 30; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.NRGBA{R: 13, G: 17, B: 23, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, img); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); n != 1 {
		t.Errorf("page count = %d, want 1", n)
	}
}

func TestExport(t *testing.T) {
	m := &mindmap.Mindmap{ID: "m1", UserID: "u", Data: sampleData()}
	e := NewExporter(&stubMindmaps{m: m}, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		format   Format
		filename string
		ctype    string
		prefix   string
	}{
		{format: FormatPDF, filename: "Cell_Biology_mindmap.pdf", ctype: "application/pdf", prefix: "%PDF-"},
		{format: FormatPNG, filename: "Cell_Biology_mindmap.png", ctype: "image/png", prefix: "\x89PNG"},
		{format: FormatSVG, filename: "Cell_Biology_mindmap.svg", ctype: "image/svg+xml", prefix: "<?xml"},
		{format: FormatOutline, filename: "Cell_Biology_mindmap.txt", ctype: "text/plain; charset=utf-8", prefix: "Cell Biology\n├── Membrane"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			a, err := e.Export(context.Background(), "m1", "u", tt.format)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if a.Filename != tt.filename || a.ContentType != tt.ctype {
				t.Errorf("artifact = %q %q", a.Filename, a.ContentType)
			}
			if !bytes.HasPrefix(a.Data, []byte(tt.prefix)) {
				t.Errorf("data starts with %q", a.Data[:min(len(a.Data), 16)])
			}
		})
	}
}

func TestExportMissing(t *testing.T) {
	e := NewExporter(&stubMindmaps{}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a, err := e.ExportPDF(context.Background(), "gone", "u")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if a != nil {
		t.Error("artefact produced for missing mind map")
	}

	if _, err := NewExporter(&stubMindmaps{m: &mindmap.Mindmap{ID: "x"}}, 0, slog.Default()).
		Export(context.Background(), "x", "u", Format("gif")); err == nil {
		t.Error("expected error for unknown format")
	}
}
