// Package export produces downloadable artefacts (PDF, PNG, SVG, outline)
// from stored mind maps.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"infinitism/internal/domain/services"
	"infinitism/internal/service/layout"
	"infinitism/internal/service/render"
)

// Format names an export artefact type.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatOutline Format = "outline"
)

// Artifact is a rendered export ready to be written to a client or file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders stored mind maps.
type Exporter struct {
	mindmaps services.MindmapService
	raster   render.RasterOptions
	logger   *slog.Logger
}

// NewExporter creates an exporter. A zero pixel ratio uses the default density.
func NewExporter(mindmaps services.MindmapService, pixelRatio float64, logger *slog.Logger) *Exporter {
	raster := render.DefaultRasterOptions()
	if pixelRatio > 0 {
		raster.PixelRatio = pixelRatio
	}
	return &Exporter{
		mindmaps: mindmaps,
		raster:   raster,
		logger:   logger,
	}
}

// Export renders the mind map in the requested format. A missing mind map
// yields domain.ErrNotFound and no artefact.
func (e *Exporter) Export(ctx context.Context, id, userID string, format Format) (*Artifact, error) {
	m, err := e.mindmaps.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	l := layout.Compute(m.Data)
	base := strings.TrimSuffix(Filename(m.Data.Title), ".pdf")

	var buf bytes.Buffer
	artifact := &Artifact{}

	switch format {
	case FormatPDF:
		img, err := render.Rasterize(l, e.raster)
		if err != nil {
			return nil, err
		}
		if err := WritePDF(&buf, img); err != nil {
			return nil, err
		}
		artifact.Filename = Filename(m.Data.Title)
		artifact.ContentType = "application/pdf"

	case FormatPNG:
		if err := render.PNG(&buf, l, e.raster); err != nil {
			return nil, err
		}
		artifact.Filename = base + ".png"
		artifact.ContentType = "image/png"

	case FormatSVG:
		if err := render.SVG(&buf, l); err != nil {
			return nil, err
		}
		artifact.Filename = base + ".svg"
		artifact.ContentType = "image/svg+xml"

	case FormatOutline:
		buf.WriteString(Outline(m.Data, false))
		buf.WriteString("\n")
		artifact.Filename = base + ".txt"
		artifact.ContentType = "text/plain; charset=utf-8"

	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	artifact.Data = buf.Bytes()

	e.logger.Info("mind map exported",
		"id", id,
		"format", format,
		"bytes", len(artifact.Data),
	)
	return artifact, nil
}

// ExportPDF renders the single-page PDF download.
func (e *Exporter) ExportPDF(ctx context.Context, id, userID string) (*Artifact, error) {
	return e.Export(ctx, id, userID, FormatPDF)
}
