// Command mindmap generates a mind map from a file or text and writes the
// requested exports. With -interactive it opens a viewer session on stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"infinitism/internal/app"
	"infinitism/internal/config"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/services"
	"infinitism/internal/service/export"
	"infinitism/internal/service/source"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type options struct {
	in          string
	text        string
	model       string
	pdf         string
	svg         string
	png         string
	outline     bool
	showIDs     bool
	interactive bool
	verbose     bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.in, "in", "", "input file (PDF, DOCX or TXT)")
	flag.StringVar(&o.text, "text", "", "input text (used when -in is empty)")
	flag.StringVar(&o.model, "model", "", "model override, e.g. claude-haiku-4-5")
	flag.StringVar(&o.pdf, "pdf", "", "write the PDF export to this path")
	flag.StringVar(&o.svg, "svg", "", "write the SVG drawing to this path")
	flag.StringVar(&o.png, "png", "", "write the PNG drawing to this path")
	flag.BoolVar(&o.outline, "outline", false, "print the outline")
	flag.BoolVar(&o.showIDs, "ids", false, "show node ids in the outline")
	flag.BoolVar(&o.interactive, "interactive", false, "open an interactive viewer session")
	flag.BoolVar(&o.verbose, "v", false, "log at debug level to stderr")
	flag.Parse()
	return o
}

func main() {
	_ = godotenv.Load()
	opts := parseFlags()

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.in == "" && opts.text == "" {
		fmt.Fprintf(os.Stderr, "%s❌ provide -in <file> or -text <text>%s\n", colorRed, colorReset)
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s❌ Failed to initialize: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer a.Close()

	m, err := generate(ctx, a, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s❌ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	if err := writeExports(ctx, a.Exporter, m.ID, opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s❌ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	if opts.outline {
		fmt.Println(export.Outline(m.Data, opts.showIDs))
	}

	if opts.interactive {
		repl, err := newREPL(ctx, a, m.ID, bufio.NewScanner(os.Stdin), os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s❌ %v%s\n", colorRed, err, colorReset)
			os.Exit(1)
		}
		repl.run()
	}
}

func printStatus(status mindmap.ProcessingStatus, detail string) {
	color := colorBlue
	switch status {
	case mindmap.StatusSuccess:
		color = colorGreen
	case mindmap.StatusError:
		color = colorRed
	}
	fmt.Printf("%sstatus: %s%s %s\n", color, status, colorReset, detail)
}

// generate reads the input and runs one generation, reporting progress.
func generate(ctx context.Context, a *app.App, opts options) (*mindmap.Mindmap, error) {
	printStatus(mindmap.StatusIdle, "")

	text := opts.text
	if opts.in != "" {
		data, err := os.ReadFile(opts.in)
		if err != nil {
			printStatus(mindmap.StatusError, err.Error())
			return nil, err
		}
		src, err := a.Sources.Extract(ctx, source.UploadedFile{
			Filename:    filepath.Base(opts.in),
			ContentType: mime.TypeByExtension(filepath.Ext(opts.in)),
			Data:        data,
		})
		if err != nil {
			printStatus(mindmap.StatusError, err.Error())
			return nil, err
		}
		fmt.Printf("%s✓ %s: %d words (%s)%s\n", colorGreen, src.Filename, src.WordCount, src.MIMEType, colorReset)
		text = src.Text
	}

	printStatus(mindmap.StatusProcessing, "")
	started := time.Now()
	m, err := a.Mindmaps.Generate(ctx, &services.GenerateRequest{
		UserID: config.LocalUserID,
		Text:   text,
		Model:  opts.model,
	})
	if err != nil {
		printStatus(mindmap.StatusError, err.Error())
		return nil, err
	}

	stats := m.Data.Stats()
	printStatus(mindmap.StatusSuccess, fmt.Sprintf("%q: %d nodes, depth %d (%s, %s)",
		m.Data.Title, stats.NodeCount, stats.Depth, m.Generation.Source, time.Since(started).Round(time.Millisecond)))
	if m.Generation.FallbackReason != "" {
		fmt.Printf("%s⚠ keyword fallback: %s%s\n", colorYellow, m.Generation.FallbackReason, colorReset)
	}
	return m, nil
}

func writeExports(ctx context.Context, exporter *export.Exporter, id string, opts options) error {
	targets := []struct {
		path   string
		format export.Format
	}{
		{opts.pdf, export.FormatPDF},
		{opts.svg, export.FormatSVG},
		{opts.png, export.FormatPNG},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		if err := exportTo(ctx, exporter, id, t.format, t.path); err != nil {
			return err
		}
		fmt.Printf("%s✓ wrote %s%s\n", colorGreen, t.path, colorReset)
	}
	return nil
}

func exportTo(ctx context.Context, exporter *export.Exporter, id string, format export.Format, path string) error {
	artifact, err := exporter.Export(ctx, id, config.LocalUserID, format)
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	if path == "" {
		path = artifact.Filename
	}
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
