package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
)

// A4 landscape, millimetres.
const (
	PageWidth  = 297.0
	PageHeight = 210.0
)

const diagramImage = "mindmap"

// FitToPage scales an image of iw×ih pixels to fit a pw×ph page while keeping
// its aspect ratio. The result never exceeds the page.
func FitToPage(pw, ph float64, iw, ih int) (w, h float64) {
	if iw <= 0 || ih <= 0 {
		return 0, 0
	}
	scale := min(pw/float64(iw), ph/float64(ih))
	return float64(iw) * scale, float64(ih) * scale
}

// WritePDF writes a single landscape A4 page holding img at the top-left
// origin, scaled to fit.
func WritePDF(w io.Writer, img image.Image) error {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return fmt.Errorf("failed to encode diagram: %w", err)
	}

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(diagramImage, opts, &encoded)

	pw, ph := doc.GetPageSize()
	bounds := img.Bounds()
	iw, ih := FitToPage(pw, ph, bounds.Dx(), bounds.Dy())
	doc.ImageOptions(diagramImage, 0, 0, iw, ih, false, opts, 0, "")

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Filename derives the download name from the mind map title: whitespace
// runs become "_" and "_mindmap.pdf" is appended.
func Filename(title string) string {
	return underscoreSpaces(title) + "_mindmap.pdf"
}

func underscoreSpaces(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
